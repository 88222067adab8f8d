package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brewpos/internal/dto"
	"brewpos/internal/middleware"
	"brewpos/internal/service"
)

type InventoryHandler struct {
	inventory *service.InventoryService
}

func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// Get godoc
// @Summary      Current inventory
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.InventoryResponse
// @Security     BearerAuth
// @Router       /v1/inventory [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	inv, err := h.inventory.Get(c.Request.Context(), middleware.OrgID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInventoryResponse(inv))
}

// Replace godoc
// @Summary      Replace the whole inventory
// @Description  Swaps all three sections at once. Duplicates and negative stock are normalized away.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.InventoryResponse true "new inventory"
// @Success      200 {object} dto.InventoryResponse
// @Security     BearerAuth
// @Router       /v1/inventory [put]
func (h *InventoryHandler) Replace(c *gin.Context) {
	var req dto.InventoryResponse
	if !bindAndValidate(c, &req) {
		return
	}
	inv, err := h.inventory.Replace(c.Request.Context(), middleware.OrgID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInventoryResponse(inv))
}

// UpsertProduct godoc
// @Summary      Add or update a product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.UpsertProductRequest true "product"
// @Success      200 {object} model.Product
// @Failure      400 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/inventory/products [put]
func (h *InventoryHandler) UpsertProduct(c *gin.Context) {
	var req dto.UpsertProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	prod, err := h.inventory.UpsertProduct(c.Request.Context(), middleware.OrgID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prod)
}

// RemoveProduct godoc
// @Summary      Delete a product
// @Tags         inventory
// @Param        id path string true "product id"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/inventory/products/{id} [delete]
func (h *InventoryHandler) RemoveProduct(c *gin.Context) {
	if err := h.inventory.RemoveProduct(c.Request.Context(), middleware.OrgID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock godoc
// @Summary      Manual stock adjustment
// @Description  Applies a signed kilogram delta to one product and records the movement.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.AdjustStockRequest true "adjustment"
// @Success      200 {object} model.Product
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/inventory/stock [patch]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	prod, err := h.inventory.AdjustStock(c.Request.Context(), middleware.OrgID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prod)
}

// Movements godoc
// @Summary      Stock movement audit trail
// @Tags         inventory
// @Produce      json
// @Param        page  query int false "page (1-based)"
// @Param        limit query int false "page size"
// @Success      200 {object} dto.StockMovementListResponse
// @Security     BearerAuth
// @Router       /v1/inventory/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	movements, total, err := h.inventory.Movements(c.Request.Context(), middleware.OrgID(c), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StockMovementListResponse{
		Movements: movements,
		Total:     total,
		Page:      page,
		PageSize:  limit,
	})
}
