package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brewpos/internal/apierror"
	"brewpos/internal/dto"
	"brewpos/internal/middleware"
	"brewpos/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Checkout godoc
// @Summary      Create an order
// @Description  Validates every cart line against stock and commits all-or-nothing.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body dto.CheckoutRequest true "cart"
// @Success      201 {object} dto.OrderResponse
// @Failure      400 {object} apierror.APIError
// @Failure      409 {object} map[string]interface{} "insufficient stock with per-line shortfalls"
// @Security     BearerAuth
// @Router       /v1/orders [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	order, err := h.orders.Checkout(c.Request.Context(), middleware.OrgID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        from    query string false "inclusive lower date bound (YYYY-MM-DD)"
// @Param        to      query string false "inclusive upper date bound (YYYY-MM-DD)"
// @Param        status  query string false "active | voided | all"
// @Param        channel query string false "instore | delivery"
// @Success      200 {object} dto.OrderListResponse
// @Failure      400 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter dto.OrderReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, &apierror.ValidationError{Field: "query", Detail: "malformed filter parameters"})
		return
	}
	orders, err := h.orders.List(c.Request.Context(), middleware.OrgID(c), &filter)
	if err != nil {
		fail(c, err)
		return
	}
	resp := dto.OrderListResponse{Orders: make([]dto.OrderResponse, 0, len(orders)), Total: len(orders)}
	for i := range orders {
		resp.Orders = append(resp.Orders, dto.ToOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get one order
// @Tags         orders
// @Produce      json
// @Param        id path string true "order id"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), middleware.OrgID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// Void godoc
// @Summary      Void an order
// @Description  Marks the order voided and restocks its lines unless restock=false. Voiding twice is a no-op.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "order id"
// @Param        request body dto.VoidRequest false "void options"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/orders/{id} [delete]
func (h *OrderHandler) Void(c *gin.Context) {
	var req dto.VoidRequest
	if c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}
	order, err := h.orders.Void(c.Request.Context(), middleware.OrgID(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// Restore godoc
// @Summary      Restore a voided order
// @Description  Re-validates stock and re-applies the order's deductions.
// @Tags         orders
// @Produce      json
// @Param        id path string true "order id"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /v1/orders/{id}/restore [post]
func (h *OrderHandler) Restore(c *gin.Context) {
	order, err := h.orders.Restore(c.Request.Context(), middleware.OrgID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}
