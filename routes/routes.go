package routes

import (
	"context"
	"net/http"
	"time"

	"hotel-platform/controllers"
	"hotel-platform/middleware"
	"hotel-platform/policy"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Controllers struct {
	Auth     *controllers.AuthController
	Bookings *controllers.BookingController
	Payments *controllers.PaymentController
	Branches *controllers.BranchController
	Rooms    *controllers.RoomController
	Menu     *controllers.MenuItemController
	Food     *controllers.FoodOrderController
	Service  *controllers.ServiceRequestController
}

type Options struct {
	JWTSecret   []byte
	CORSOrigins []string
	Logger      *logrus.Logger
	AuthLimiter *middleware.RateLimiter
	// HealthCheck reports store reachability for /health. Optional.
	HealthCheck func(ctx context.Context) error
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(ctl Controllers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(middleware.Logger(opts.Logger))
	}
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		if opts.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := opts.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authn := middleware.Authenticate(opts.JWTSecret)
	guarded := func(caps ...policy.Capability) []gin.HandlerFunc {
		return []gin.HandlerFunc{authn, middleware.Require(caps...)}
	}
	with := func(chain []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, chain...), h)
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		if opts.AuthLimiter != nil {
			auth.Use(opts.AuthLimiter.Handler())
		}
		{
			auth.POST("/register", middleware.OptionalAuth(opts.JWTSecret), ctl.Auth.Register)
			auth.POST("/login", ctl.Auth.Login)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", authn, ctl.Bookings.Create)
			bookings.GET("", with(guarded(policy.ViewAllBookings), ctl.Bookings.List)...)
			bookings.GET("/my", authn, ctl.Bookings.Mine)
			bookings.GET("/my-active", authn, ctl.Bookings.MyActive)
			bookings.GET("/export", with(guarded(policy.ExportBookings), ctl.Bookings.Export)...)
			bookings.GET("/:id", authn, ctl.Bookings.Get)
			bookings.PATCH("/:id/status", with(guarded(policy.UpdateBookingStatus), ctl.Bookings.UpdateStatus)...)
			bookings.PATCH("/:id/cancel", authn, ctl.Bookings.Cancel)
		}

		branches := api.Group("/branches")
		{
			branches.GET("", ctl.Branches.List)
			branches.GET("/:id", ctl.Branches.Get)
			branches.POST("", with(guarded(policy.ManageBranches), ctl.Branches.Create)...)
			branches.PUT("/:id", with(guarded(policy.ManageBranches), ctl.Branches.Update)...)
			branches.DELETE("/:id", with(guarded(policy.ManageBranches), ctl.Branches.Delete)...)
		}

		rooms := api.Group("/rooms")
		{
			rooms.POST("", with(guarded(policy.CreateRooms), ctl.Rooms.Create)...)
			rooms.GET("", authn, ctl.Rooms.List)
			rooms.GET("/available", authn, ctl.Rooms.Available)
			rooms.GET("/types/:branchId", authn, ctl.Rooms.Types)
			rooms.GET("/branch/:branchId", with(guarded(policy.ViewBranchRooms), ctl.Rooms.ByBranch)...)
			rooms.GET("/branch/:branchId/all", authn, ctl.Rooms.AllByBranch)
			rooms.GET("/:id", authn, ctl.Rooms.Get)
			rooms.PUT("/:id", with(guarded(policy.EditRooms), ctl.Rooms.Update)...)
			rooms.DELETE("/:id", with(guarded(policy.DeleteRooms), ctl.Rooms.Delete)...)
		}

		menu := api.Group("/menuItems")
		{
			menu.GET("", ctl.Menu.List)
			menu.GET("/:id", ctl.Menu.Get)
			menu.POST("", with(guarded(policy.ManageMenu), ctl.Menu.Create)...)
			menu.PUT("/:id", with(guarded(policy.ManageMenu), ctl.Menu.Update)...)
			menu.DELETE("/:id", with(guarded(policy.ManageMenu), ctl.Menu.Delete)...)
		}

		food := api.Group("/food")
		{
			food.POST("", authn, ctl.Food.Create)
			food.GET("", with(guarded(policy.ViewAllOrders), ctl.Food.List)...)
			food.GET("/:id", authn, ctl.Food.Get)
			food.PUT("/:id", with(guarded(policy.UpdateOrderStatus), ctl.Food.UpdateStatus)...)
			food.PUT("/:id/status", with(guarded(policy.UpdateOrderStatus), ctl.Food.UpdateStatus)...)
			food.DELETE("/:id", with(guarded(policy.DeleteOrders), ctl.Food.Delete)...)
		}

		service := api.Group("/service")
		{
			service.POST("", authn, ctl.Service.Create)
			service.GET("/my", authn, ctl.Service.Mine)
			service.GET("", with(guarded(policy.ViewAllRequests), ctl.Service.List)...)
			service.PATCH("/:id/status", with(guarded(policy.UpdateRequests), ctl.Service.UpdateStatus)...)
		}

		payments := api.Group("/payments")
		{
			payments.POST("", with(guarded(policy.MakePayments), ctl.Payments.Create)...)
			payments.GET("/user", authn, ctl.Payments.Mine)
			payments.GET("/:bookingId", authn, ctl.Payments.GetByBooking)
		}
	}

	return r
}
