package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"brewpos/internal/config"
	"brewpos/internal/handler"
	"brewpos/internal/middleware"
	"brewpos/internal/service"
)

// Handlers groups everything the router wires.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Orders    *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Reports   *handler.ReportHandler
	Receipts  *handler.ReceiptHandler
	Employees *handler.EmployeeHandler
}

// New assembles the gin engine: middleware chain, public routes, then the
// authenticated + org-scoped API. Role gates: cashiers sell, supervisors
// manage stock and exports, admins manage accounts.
func New(cfg *config.Config, h *Handlers, auth *service.AuthService, orgScope *middleware.OrgScope) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(300, time.Minute))

	r.GET("/health", h.Health.Check)
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")

	authGroup := v1.Group("/auth")
	authGroup.Use(middleware.LoginRateLimiter())
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	api := v1.Group("")
	api.Use(middleware.JWTAuth(auth))

	scoped := api.Group("")
	scoped.Use(orgScope.Resolve())
	{
		inv := scoped.Group("/inventory")
		{
			inv.GET("", h.Inventory.Get)
			inv.GET("/movements", middleware.RequireRole("supervisor"), h.Inventory.Movements)
			inv.PUT("", middleware.RequireRole("supervisor"), h.Inventory.Replace)
			inv.PUT("/products", middleware.RequireRole("supervisor"), h.Inventory.UpsertProduct)
			inv.DELETE("/products/:id", middleware.RequireRole("supervisor"), h.Inventory.RemoveProduct)
			inv.PATCH("/stock", middleware.RequireRole("supervisor"), h.Inventory.AdjustStock)
		}

		orders := scoped.Group("/orders")
		{
			orders.POST("", h.Orders.Checkout)
			orders.GET("", h.Orders.List)
			orders.GET("/:id", h.Orders.Get)
			orders.DELETE("/:id", middleware.RequireRole("supervisor"), h.Orders.Void)
			orders.POST("/:id/restore", middleware.RequireRole(), h.Orders.Restore)
		}

		reports := scoped.Group("/reports")
		reports.Use(middleware.RequireRole("supervisor"))
		{
			reports.GET("/orders.csv", h.Reports.OrdersCSV)
		}

		receipts := scoped.Group("/receipts")
		{
			receipts.GET("/:order_id", h.Receipts.ByOrder)
			receipts.GET("/:order_id/pdf", h.Receipts.Download)
		}
	}

	employees := api.Group("/employees")
	employees.Use(middleware.RequireRole())
	{
		employees.POST("", h.Employees.Create)
		employees.GET("", h.Employees.List)
		employees.GET("/:id", h.Employees.Get)
		employees.PATCH("/:id", h.Employees.Update)
		employees.DELETE("/:id", h.Employees.Deactivate)
		employees.POST("/:id/reactivate", h.Employees.Reactivate)
	}

	return r
}
