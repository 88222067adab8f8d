package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"brewpos/internal/apierror"
	"brewpos/internal/dto"
	"brewpos/internal/middleware"
	"brewpos/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// OrdersCSV godoc
// @Summary      Export orders as CSV
// @Description  UTF-8 CSV with BOM, one row per order. Optional date, status and channel filters.
// @Tags         reports
// @Produce      text/csv
// @Param        from    query string false "inclusive start date YYYY-MM-DD"
// @Param        to      query string false "inclusive end date YYYY-MM-DD"
// @Param        status  query string false "active | voided | all" default(all)
// @Param        channel query string false "instore | delivery"
// @Success      200 {string} string "CSV body"
// @Failure      400 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/reports/orders.csv [get]
func (h *ReportHandler) OrdersCSV(c *gin.Context) {
	var filter dto.OrderReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid filter parameters"))
		return
	}

	fileName := fmt.Sprintf("orders_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)

	if _, err := h.reports.WriteOrdersCSV(c.Request.Context(), middleware.OrgID(c), &filter, c.Writer); err != nil {
		// headers may already be out; attach for logging regardless
		fail(c, err)
		return
	}
}
