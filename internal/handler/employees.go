package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brewpos/internal/apierror"
	"brewpos/internal/dto"
	"brewpos/internal/service"
)

type EmployeeHandler struct {
	auth *service.AuthService
}

func NewEmployeeHandler(auth *service.AuthService) *EmployeeHandler {
	return &EmployeeHandler{auth: auth}
}

// Create godoc
// @Summary      Create an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateEmployeeRequest true "employee"
// @Success      201 {object} dto.EmployeeResponse
// @Failure      400 {object} apierror.ValidationFields
// @Security     BearerAuth
// @Router       /v1/employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	emp, err := h.auth.CreateEmployee(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToEmployeeResponse(emp))
}

// List godoc
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Param        include_inactive query bool false "include deactivated accounts"
// @Success      200 {array} dto.EmployeeResponse
// @Security     BearerAuth
// @Router       /v1/employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	employees, err := h.auth.ListEmployees(c.Request.Context(), includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	resp := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		resp = append(resp, dto.ToEmployeeResponse(&employees[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get one employee
// @Tags         employees
// @Produce      json
// @Param        id path string true "employee id"
// @Success      200 {object} dto.EmployeeResponse
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	emp, err := h.auth.GetEmployee(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeResponse(emp))
}

// Update godoc
// @Summary      Update an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id path string true "employee id"
// @Param        request body dto.UpdateEmployeeRequest true "fields to change"
// @Success      200 {object} dto.EmployeeResponse
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/employees/{id} [patch]
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateEmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	emp, err := h.auth.UpdateEmployee(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeResponse(emp))
}

// Deactivate godoc
// @Summary      Deactivate an employee
// @Tags         employees
// @Param        id path string true "employee id"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/employees/{id} [delete]
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.auth.DeactivateEmployee(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivate godoc
// @Summary      Reactivate a deactivated employee
// @Tags         employees
// @Param        id path string true "employee id"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Security     BearerAuth
// @Router       /v1/employees/{id}/reactivate [post]
func (h *EmployeeHandler) Reactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.auth.ReactivateEmployee(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("malformed id"))
		return uuid.Nil, false
	}
	return id, true
}
