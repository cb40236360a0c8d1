package routes

import (
	"net/http"
	"time"

	"github.com/JJublanc/tidimondo-sub001/config"
	"github.com/JJublanc/tidimondo-sub001/controllers"
	"github.com/JJublanc/tidimondo-sub001/middlewares"
	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries every service the HTTP layer talks to. Push may be nil.
type Deps struct {
	Config        *config.Config
	Users         *services.UserService
	Entitlements  *services.EntitlementService
	Stays         *services.StayService
	Participants  *services.ParticipantService
	Meals         *services.MealService
	Recipes       *services.RecipeService
	Ingredients   *services.IngredientService
	Utensils      *services.UtensilService
	ShoppingLists *services.ShoppingListService
	Billing       *services.BillingService
	Blog          *services.BlogService
	Contact       *services.ContactService
	Alerts        *services.AlertService
	Admin         *services.AdminService
	Push          *services.PushService
	Realtime      *services.RealtimeHub
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	stayCtrl := controllers.NewStayController(d.Stays, d.Participants)
	mealCtrl := controllers.NewMealController(d.Meals)
	listCtrl := controllers.NewShoppingListController(d.ShoppingLists)
	recipeCtrl := controllers.NewRecipeController(d.Recipes)
	ingCtrl := controllers.NewIngredientController(d.Ingredients)
	utensilCtrl := controllers.NewUtensilController(d.Utensils)
	billingCtrl := controllers.NewBillingController(d.Billing, d.Entitlements)
	blogCtrl := controllers.NewBlogController(d.Blog)
	contactCtrl := controllers.NewContactController(d.Contact)
	adminCtrl := controllers.NewAdminController(d.Admin)
	userCtrl := controllers.NewUserController(d.Users)
	notifCtrl := controllers.NewNotificationController(d.Alerts, d.Users)
	deviceCtrl := controllers.NewDeviceController(d.Push)
	rtCtrl := controllers.NewRealtimeController(d.Realtime, d.Config.AllowedOrigins)

	api := r.Group("/api")

	// Public routes
	api.GET("/blog", blogCtrl.Published)
	api.GET("/blog/:slug", blogCtrl.BySlug)
	api.POST("/contact", contactCtrl.Submit)
	api.POST("/billing/webhook", billingCtrl.Webhook)

	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware([]byte(d.Config.JWTSecret), d.Config.JWTIssuer, d.Users))
	{
		auth.GET("/me", userCtrl.Me)
		auth.PUT("/me", userCtrl.UpdateProfile)
		auth.GET("/me/entitlements", billingCtrl.Usage)

		auth.GET("/stays", stayCtrl.List)
		auth.POST("/stays", stayCtrl.Create)
		auth.GET("/stays/:id", stayCtrl.Get)
		auth.PUT("/stays/:id", stayCtrl.Update)
		auth.PATCH("/stays/:id/status", stayCtrl.SetStatus)
		auth.DELETE("/stays/:id", stayCtrl.Delete)

		auth.GET("/stays/:id/participants", stayCtrl.ListParticipants)
		auth.POST("/stays/:id/participants", stayCtrl.AddParticipant)
		auth.PUT("/stays/:id/participants/:participantId", stayCtrl.UpdateParticipant)
		auth.DELETE("/stays/:id/participants/:participantId", stayCtrl.DeleteParticipant)

		auth.GET("/stays/:id/meals", mealCtrl.List)
		auth.POST("/stays/:id/meals", mealCtrl.Create)
		auth.PUT("/stays/:id/meals/:mealId", mealCtrl.Update)
		auth.DELETE("/stays/:id/meals/:mealId", mealCtrl.Delete)

		auth.GET("/stays/:id/shopping-list", listCtrl.Get)
		auth.GET("/stays/:id/shopping-list/print", listCtrl.Print)
		auth.POST("/stays/:id/shopping-list/print", listCtrl.PrintWithOverrides)

		auth.GET("/recipes", recipeCtrl.List)
		auth.POST("/recipes", recipeCtrl.Create)
		auth.GET("/recipes/:id", recipeCtrl.Get)
		auth.PUT("/recipes/:id", recipeCtrl.Update)
		auth.DELETE("/recipes/:id", recipeCtrl.Delete)

		auth.GET("/ingredients", ingCtrl.List)
		auth.POST("/ingredients", ingCtrl.Create)
		auth.GET("/ingredients/:id", ingCtrl.Get)
		auth.PUT("/ingredients/:id", ingCtrl.Update)
		auth.DELETE("/ingredients/:id", ingCtrl.Delete)

		auth.GET("/utensils", utensilCtrl.List)
		auth.POST("/utensils", utensilCtrl.Create)
		auth.GET("/utensils/:id", utensilCtrl.Get)
		auth.PUT("/utensils/:id", utensilCtrl.Update)
		auth.DELETE("/utensils/:id", utensilCtrl.Delete)

		auth.GET("/billing/subscription", billingCtrl.Subscription)
		auth.POST("/billing/checkout", billingCtrl.Checkout)
		auth.POST("/billing/portal", billingCtrl.Portal)

		auth.GET("/me/posts", blogCtrl.Mine)
		auth.POST("/blog", blogCtrl.Create)
		auth.PUT("/blog/:id", blogCtrl.Update)
		auth.DELETE("/blog/:id", blogCtrl.Delete)

		auth.GET("/alerts", notifCtrl.List)
		auth.POST("/alerts/read-all", notifCtrl.MarkAllRead)
		auth.POST("/alerts/:id/read", notifCtrl.MarkRead)
		auth.POST("/user/notifications/toggle", notifCtrl.Toggle)
		auth.POST("/devices/register", deviceCtrl.Register)
		auth.GET("/ws/alerts", rtCtrl.AlertsWS)
	}

	admin := auth.Group("/admin")
	admin.Use(middlewares.AdminMiddleware())
	{
		admin.GET("/stats", adminCtrl.Stats)
		admin.GET("/users", adminCtrl.Users)
		admin.PUT("/users/:id/admin", adminCtrl.SetAdmin)
		admin.GET("/posts", blogCtrl.ByStatus)
		admin.POST("/posts/:id/moderate", blogCtrl.Moderate)
		admin.GET("/contact", contactCtrl.List)
		admin.PUT("/contact/:id/handled", contactCtrl.SetHandled)
	}

	return r
}
