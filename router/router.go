package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kebab-storefront/config"
	"github.com/yeremiapane/kebab-storefront/controllers"
	"github.com/yeremiapane/kebab-storefront/feed"
	"github.com/yeremiapane/kebab-storefront/middlewares"
	"github.com/yeremiapane/kebab-storefront/services"
	"gorm.io/gorm"
)

// Options carries everything the HTTP surface needs. Wompi and Hub are
// built from Config when nil; a nil Guard disables delivery de-duplication.
type Options struct {
	DB     *gorm.DB
	Config *config.Config
	Wompi  *services.WompiService
	Guard  services.DeliveryGuard
	Hub    *feed.Hub

	// GlobalRate requests per GlobalWindow per client IP; zero picks defaults.
	GlobalRate   int
	GlobalWindow time.Duration
}

func cors(methods string) gin.HandlerFunc {
	return middlewares.CORSMiddlewares(methods+", OPTIONS", middlewares.DefaultAllowedHeaders)
}

// preflight registers the OPTIONS route that answers browsers before the
// admin gate runs.
func preflight(r *gin.Engine, path, methods string) gin.HandlerFunc {
	h := cors(methods)
	r.OPTIONS(path, h)
	return h
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()

	if opts.GlobalRate == 0 {
		opts.GlobalRate = 300
	}
	if opts.GlobalWindow == 0 {
		opts.GlobalWindow = time.Minute
	}
	if opts.Wompi == nil {
		opts.Wompi = services.NewWompiService(opts.Config.Wompi)
	}
	if opts.Hub == nil {
		opts.Hub = feed.NewHub()
	}

	r.Use(middlewares.LoggerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.NewRateLimiter(opts.GlobalRate, opts.GlobalWindow).RateLimit())

	secret := opts.Config.JWTSecret
	admin := middlewares.AdminAuthMiddleware(secret)

	// checkout, signing and login get their own per-IP buckets
	checkoutLimit := middlewares.NewIPRateLimiter(2*time.Second, 10).Middleware()
	signatureLimit := middlewares.NewIPRateLimiter(time.Second, 20).Middleware()
	loginLimit := middlewares.NewIPRateLimiter(10*time.Second, 5).Middleware()

	reconciler := services.NewReconciler(opts.DB, opts.Wompi, opts.Guard)
	orderCtrl := controllers.NewOrderController(reconciler.Orders, reconciler, opts.Wompi, opts.Hub)
	paymentCtrl := controllers.NewPaymentController(opts.Wompi, reconciler, opts.Hub)
	menuCtrl := controllers.NewMenuController(opts.DB)
	categoryCtrl := controllers.NewMenuCategoryController(opts.DB)
	slideCtrl := controllers.NewHeroSlideController(opts.DB)
	userCtrl := controllers.NewUserController(services.NewUserService(opts.DB), secret, opts.Config.TokenTTL)
	feedCtrl := controllers.NewFeedController(opts.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", cors("GET"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	menu := preflight(r, "/menu", "GET")
	r.GET("/menu", menu, menuCtrl.GetMenu)

	items := preflight(r, "/menu/items", "GET")
	r.GET("/menu/items", items, menuCtrl.GetAllMenuItems)

	item := preflight(r, "/menu/items/:item_id", "GET")
	r.GET("/menu/items/:item_id", item, menuCtrl.GetMenuItemByID)

	categories := preflight(r, "/categories", "GET")
	r.GET("/categories", categories, categoryCtrl.GetAllCategories)

	slides := preflight(r, "/hero-slides", "GET")
	r.GET("/hero-slides", slides, slideCtrl.GetAllHeroSlides)

	slide := preflight(r, "/hero-slides/:slide_id", "GET")
	r.GET("/hero-slides/:slide_id", slide, slideCtrl.GetHeroSlideByID)

	orders := preflight(r, "/orders", "GET, POST")
	r.POST("/orders", orders, checkoutLimit, orderCtrl.CreateOrder)
	r.GET("/orders", orders, orderCtrl.GetOrderStatus)

	byTx := preflight(r, "/orders/transaction/:transaction_id", "GET")
	r.GET("/orders/transaction/:transaction_id", byTx, orderCtrl.GetOrderByTransaction)

	sig := preflight(r, "/payment-signature", "POST")
	r.POST("/payment-signature", sig, signatureLimit, paymentCtrl.CreateSignature)

	webhook := preflight(r, "/webhook", "POST")
	r.POST("/webhook", webhook, paymentCtrl.HandleWebhook)

	login := preflight(r, "/login", "POST")
	r.POST("/login", login, loginLimit, userCtrl.Login)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	order := preflight(r, "/orders/:order_id", "PATCH")
	r.PATCH("/orders/:order_id", order, admin, orderCtrl.UpdateFulfillmentStatus)

	listOrders := preflight(r, "/admin/orders", "GET")
	r.GET("/admin/orders", listOrders, admin, orderCtrl.ListOrders)

	r.GET("/admin/orders/feed", middlewares.WebSocketAuthMiddleware(secret), feedCtrl.OrderFeed)

	claim := preflight(r, "/admin/claim", "POST")
	r.POST("/admin/claim", claim, admin, userCtrl.SetAdminClaim)

	adminItems := preflight(r, "/admin/menu/items", "POST")
	r.POST("/admin/menu/items", adminItems, admin, menuCtrl.CreateMenuItem)

	adminItem := preflight(r, "/admin/menu/items/:item_id", "PUT, DELETE")
	r.PUT("/admin/menu/items/:item_id", adminItem, admin, menuCtrl.UpdateMenuItem)
	r.DELETE("/admin/menu/items/:item_id", adminItem, admin, menuCtrl.DeleteMenuItem)

	menuOrder := preflight(r, "/admin/menu/order", "POST")
	r.POST("/admin/menu/order", menuOrder, admin, menuCtrl.ReorderMenuItems)

	adminCategories := preflight(r, "/admin/categories", "POST")
	r.POST("/admin/categories", adminCategories, admin, categoryCtrl.CreateCategory)

	adminCategory := preflight(r, "/admin/categories/:cat_id", "PUT, DELETE")
	r.PUT("/admin/categories/:cat_id", adminCategory, admin, categoryCtrl.UpdateCategory)
	r.DELETE("/admin/categories/:cat_id", adminCategory, admin, categoryCtrl.DeleteCategory)

	categoryOrder := preflight(r, "/admin/categories/order", "POST")
	r.POST("/admin/categories/order", categoryOrder, admin, categoryCtrl.ReorderCategories)

	adminSlides := preflight(r, "/admin/hero-slides", "POST")
	r.POST("/admin/hero-slides", adminSlides, admin, slideCtrl.CreateHeroSlide)

	adminSlide := preflight(r, "/admin/hero-slides/:slide_id", "PUT, DELETE")
	r.PUT("/admin/hero-slides/:slide_id", adminSlide, admin, slideCtrl.UpdateHeroSlide)
	r.DELETE("/admin/hero-slides/:slide_id", adminSlide, admin, slideCtrl.DeleteHeroSlide)

	return r
}
