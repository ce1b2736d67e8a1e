package routes

import (
	"github.com/otoor/marketplace-backend/controllers"
	"github.com/otoor/marketplace-backend/middleware"
	"github.com/otoor/marketplace-backend/models"

	"github.com/gin-gonic/gin"
)

// Controllers bundles everything Register needs.
type Controllers struct {
	Orders        *controllers.OrderController
	Coupons       *controllers.CouponController
	Payments      *controllers.PaymentController
	Shipping      *controllers.ShippingController
	Warehouses    *controllers.WarehouseController
	Notifications *controllers.NotificationController
}

// Register sets up all routes.
func Register(r *gin.Engine, c Controllers, jwtSecret string) {
	auth := middleware.AuthMiddleware(jwtSecret)

	orders := r.Group("/orders")
	orders.Use(auth)
	orders.POST("", c.Orders.CreateOrder)
	orders.GET("/mine", c.Orders.ListMine)
	orders.GET("/seller", middleware.RequireRole(models.RoleSeller, models.RoleAdmin), c.Orders.ListForSeller)
	orders.GET("", middleware.RequireRole(models.RoleAdmin), c.Orders.ListAll)
	orders.GET("/:id", c.Orders.GetOrder)
	orders.PATCH("/:id/status", c.Orders.UpdateStatus)
	orders.POST("/:id/confirm-delivery", c.Orders.ConfirmDelivery)
	orders.GET("/:id/label", c.Orders.GetLabel)
	orders.GET("/:id/tracking", c.Orders.GetTracking)

	coupons := r.Group("/coupons")
	coupons.Use(auth)
	coupons.POST("/validate", c.Coupons.ValidateCoupons)
	coupons.POST("", middleware.RequireRole(models.RoleSeller, models.RoleAdmin), c.Coupons.CreateCoupon)
	coupons.GET("", middleware.RequireRole(models.RoleSeller, models.RoleAdmin), c.Coupons.ListCoupons)
	coupons.DELETE("/:code", middleware.RequireRole(models.RoleSeller, models.RoleAdmin), c.Coupons.DeactivateCoupon)

	payments := r.Group("/payments")
	payments.POST("/methods", auth, c.Payments.ListMethods)
	payments.POST("/confirm", auth, c.Payments.Confirm)
	// Callback is hit by the payment gateway, not by users.
	payments.GET("/callback", c.Payments.Callback)

	shipping := r.Group("/shipping")
	shipping.Use(auth)
	shipping.GET("/partners", c.Shipping.QuotePartners)

	warehouses := r.Group("/warehouses")
	warehouses.Use(auth, middleware.RequireRole(models.RoleSeller, models.RoleAdmin))
	warehouses.POST("", c.Warehouses.Register)
	warehouses.GET("", c.Warehouses.List)
	warehouses.PATCH("/:id/default", c.Warehouses.SetDefault)

	notifications := r.Group("/notifications")
	notifications.Use(auth)
	notifications.GET("", c.Notifications.List)
	notifications.PATCH("/:id/read", c.Notifications.MarkRead)
}
