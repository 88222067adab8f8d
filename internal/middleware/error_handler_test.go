package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"brewpos/internal/apierror"
)

func perform(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(err)
		c.Abort()
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"auth", &apierror.AuthError{}, http.StatusUnauthorized},
		{"org", &apierror.OrgResolutionError{EmployeeID: "e1"}, http.StatusForbidden},
		{"validation", &apierror.ValidationError{Field: "section", Detail: "unknown"}, http.StatusBadRequest},
		{"not found", &apierror.NotFoundError{Kind: "order", ID: "o1"}, http.StatusNotFound},
		{"stock", &apierror.InsufficientStockError{Shortfalls: []apierror.StockShortfall{
			{ProductID: "p1", Name: "Latte", Required: decimal.NewFromInt(1), Available: decimal.Zero},
		}}, http.StatusConflict},
		{"persistence", &apierror.PersistenceError{Op: "save", Err: errors.New("down")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(t, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestErrorHandlerHidesInternalDetails(t *testing.T) {
	w := perform(t, errors.New("password=hunter2 leaked"))
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestErrorHandlerStockShortfallBody(t *testing.T) {
	w := perform(t, &apierror.InsufficientStockError{Shortfalls: []apierror.StockShortfall{
		{ProductID: "p1", Name: "House Blend", Required: decimal.RequireFromString("0.5"), Available: decimal.RequireFromString("0.25")},
	}})
	assert.Contains(t, w.Body.String(), "shortfalls")
	assert.Contains(t, w.Body.String(), "House Blend")
}
