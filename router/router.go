package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/controllers"
	"github.com/huyphamdev/laundry-pos/middlewares"
	"github.com/huyphamdev/laundry-pos/models"
)

func SetupRouter(db *gorm.DB, attemptStore middlewares.AttemptStore, loginLimit int64, loginWindow time.Duration) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	storeCtrl := controllers.NewStoreController(db)
	productCtrl := controllers.NewProductController(db)
	customerCtrl := controllers.NewCustomerController(db)
	promotionCtrl := controllers.NewPromotionController(db)
	orderCtrl := controllers.NewOrderController(db)
	attendanceCtrl := controllers.NewAttendanceController(db)
	reportCtrl := controllers.NewReportController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/auth/login",
		middlewares.LoginLimiter(attemptStore, loginLimit, loginWindow),
		userCtrl.Login)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/", middlewares.AuthMiddleware())

	auth.GET("/auth/profile", userCtrl.GetProfile)

	// Accounts: root manages admins, admins manage employers
	users := auth.Group("/users", middlewares.RequireRoles(models.RoleRoot, models.RoleAdmin))
	{
		users.POST("", userCtrl.CreateUser)
		users.GET("", userCtrl.GetAllUsers)
		users.DELETE("/:user_id", userCtrl.DeactivateUser)
	}

	stores := auth.Group("/stores")
	{
		stores.GET("", storeCtrl.GetAllStores)
		stores.POST("", middlewares.RequireRoles(models.RoleAdmin), storeCtrl.CreateStore)
		stores.PATCH("/:store_id", middlewares.RequireRoles(models.RoleAdmin), storeCtrl.UpdateStore)
	}

	products := auth.Group("/products", middlewares.RequireRoles(models.RoleAdmin, models.RoleEmployer))
	{
		products.GET("", productCtrl.GetAllProducts)
		products.POST("", productCtrl.CreateProduct)
		products.PATCH("/:product_id", productCtrl.UpdateProduct)
		products.DELETE("/:product_id", productCtrl.DeleteProduct)
	}

	customers := auth.Group("/customers", middlewares.RequireRoles(models.RoleAdmin, models.RoleEmployer))
	{
		customers.GET("", customerCtrl.GetAllCustomers)
		customers.GET("/:customer_id", customerCtrl.GetCustomerByID)
		customers.PATCH("/:customer_id", customerCtrl.UpdateCustomer)
	}

	promotions := auth.Group("/promotions", middlewares.RequireRoles(models.RoleAdmin, models.RoleEmployer))
	{
		promotions.GET("", promotionCtrl.GetAllPromotions)
		promotions.POST("", middlewares.RequireRoles(models.RoleAdmin), promotionCtrl.CreatePromotion)
		promotions.PATCH("/:promotion_id", middlewares.RequireRoles(models.RoleAdmin), promotionCtrl.UpdatePromotion)
		promotions.POST("/applicable", promotionCtrl.GetApplicablePromotions)
	}

	orders := auth.Group("/orders", middlewares.RequireRoles(models.RoleAdmin, models.RoleEmployer))
	{
		orders.GET("", orderCtrl.GetAllOrders)
		orders.GET("/:order_id", orderCtrl.GetOrderByID)
		orders.POST("", orderCtrl.CreateOrder)
		orders.PATCH("/:order_id", orderCtrl.UpdateOrder)
		orders.POST("/:order_id/status", orderCtrl.UpdateOrderStatus)
		orders.PATCH("/:order_id/debt", orderCtrl.MarkDebt)
		orders.PATCH("/:order_id/debt/paid", orderCtrl.MarkDebtPaid)
		orders.DELETE("/:order_id", middlewares.RequireRoles(models.RoleAdmin), orderCtrl.DeleteOrder)
	}

	attendance := auth.Group("/attendance", middlewares.RequireRoles(models.RoleAdmin, models.RoleEmployer))
	{
		attendance.POST("/check-in", attendanceCtrl.CheckIn)
		attendance.POST("/check-out", attendanceCtrl.CheckOut)
		attendance.GET("", attendanceCtrl.GetAllAttendance)
	}

	reports := auth.Group("/reports", middlewares.RequireRoles(models.RoleAdmin, models.RoleEmployer))
	{
		reports.GET("/revenue", reportCtrl.GetRevenueSummary)
		reports.GET("/revenue/daily", reportCtrl.GetRevenueDaily)
		reports.GET("/payroll", reportCtrl.GetPayroll)
	}

	return r
}
