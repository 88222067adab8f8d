package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brewpos/internal/middleware"
	"brewpos/internal/service"
)

type ReceiptHandler struct {
	receipts *service.ReceiptService
}

func NewReceiptHandler(receipts *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// ByOrder godoc
// @Summary      Receipt for an order
// @Tags         receipts
// @Produce      json
// @Param        order_id path string true "order id"
// @Success      200 {object} model.Receipt
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/receipts/{order_id} [get]
func (h *ReceiptHandler) ByOrder(c *gin.Context) {
	rec, err := h.receipts.ByOrder(c.Request.Context(), middleware.OrgID(c), c.Param("order_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Download godoc
// @Summary      Download the receipt PDF
// @Tags         receipts
// @Produce      application/pdf
// @Param        order_id path string true "order id"
// @Success      200 {file} file
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/receipts/{order_id}/pdf [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	rec, err := h.receipts.ByOrder(c.Request.Context(), middleware.OrgID(c), c.Param("order_id"))
	if err != nil {
		fail(c, err)
		return
	}
	if rec.PDFPath == nil || rec.Status != "issued" {
		c.JSON(http.StatusConflict, gin.H{"detail": "receipt not issued yet", "status": rec.Status})
		return
	}
	c.FileAttachment(*rec.PDFPath, "receipt_"+rec.OrderID+".pdf")
}
