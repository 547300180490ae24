package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/controller"
	"github.com/hugohenrick/arte-ideas/pkg/tenant"
)

// Controllers groups every handler mounted by Register
type Controllers struct {
	Health  *controller.HealthController
	Orders  *controller.OrderController
	Reports *controller.ReportController
	Clients *controller.ClientController
	Product *controller.ProductController
	Tenants *controller.TenantController
}

// Register mounts the API under api. Tenant-owned resources are reachable
// both directly (tenant from the token or the X-Tenant-ID header) and under
// /tenants/:tenantID.
func Register(api *gin.RouterGroup, ctrl Controllers) {
	api.GET("/health", ctrl.Health.Check)

	RegisterTenantRoutes(api, ctrl.Tenants)
	registerScoped(api, ctrl)
	registerScoped(api.Group("/tenants/:"+tenant.PathParam), ctrl)
}

func registerScoped(r *gin.RouterGroup, ctrl Controllers) {
	RegisterOrderRoutes(r, ctrl.Orders, ctrl.Reports)
	RegisterClientRoutes(r, ctrl.Clients)
	RegisterProductRoutes(r, ctrl.Product)
}

// RegisterOrderRoutes mounts the order and report endpoints
func RegisterOrderRoutes(r *gin.RouterGroup, orders *controller.OrderController, reports *controller.ReportController) {
	group := r.Group("/orders")
	{
		group.POST("", orders.Create)
		group.GET("", orders.List)
		group.GET("/:id", orders.Get)
		group.PATCH("/:id", orders.Update)
		group.DELETE("/:id", orders.Delete)

		group.POST("/:id/items", orders.AddItem)
		group.PATCH("/:id/items/:itemId", orders.UpdateItem)
		group.DELETE("/:id/items/:itemId", orders.RemoveItem)

		group.GET("/:id/payments", orders.ListPayments)
		group.POST("/:id/payments", orders.RegisterPayment)
		group.PUT("/:id/payments/:paymentId", orders.UpdatePayment)

		group.POST("/:id/transitions", orders.Transition)
		group.GET("/:id/history", orders.History)
	}

	rep := group.Group("/reports")
	{
		rep.GET("/summary", reports.Summary)
		rep.GET("/totals", reports.Totals)
		rep.GET("/overdue", reports.Overdue)
		rep.GET("/upcoming", reports.Upcoming)
		rep.GET("/by-status", reports.ByStatus)
		rep.GET("/monthly", reports.Monthly)
	}
}

// RegisterClientRoutes mounts the client endpoints
func RegisterClientRoutes(r *gin.RouterGroup, clients *controller.ClientController) {
	group := r.Group("/clients")
	{
		group.POST("", clients.Create)
		group.GET("", clients.List)
		group.GET("/:id", clients.Get)
		group.PATCH("/:id", clients.Update)
	}
}

// RegisterProductRoutes mounts the stock table endpoints
func RegisterProductRoutes(r *gin.RouterGroup, products *controller.ProductController) {
	group := r.Group("/products")
	{
		group.POST("", products.Create)
		group.GET("", products.List)
		group.GET("/:id", products.Get)
		group.POST("/:id/stock", products.AdjustStock)
		group.GET("/:id/movements", products.Movements)
	}
}

// RegisterTenantRoutes mounts the tenant administration endpoints
func RegisterTenantRoutes(r *gin.RouterGroup, tenants *controller.TenantController) {
	group := r.Group("/tenants")
	{
		group.POST("", tenants.Create)
		group.GET("", tenants.List)
		group.GET("/:"+tenant.PathParam, tenants.Get)
		group.PATCH("/:"+tenant.PathParam+"/status", tenants.SetStatus)
	}
}
