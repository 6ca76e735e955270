package server

import (
	"net/http"

	"casebook/internal/activity"
	"casebook/internal/config"
	"casebook/internal/database"
	"casebook/internal/handlers"
	"casebook/internal/middleware"
	"casebook/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const sessionName = "casebook_session"

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Activity *activity.Logger
	Parties  handlers.PartySuggester
}

func NewRouter(d Deps) *gin.Engine {
	if !d.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Recovery снаружи журнала действий: журнал успевает записать панику до того, как она станет 500
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			log.Error().
				Interface("panic", recovered).
				Str("request_id", c.GetString(middleware.RequestIDKey)).
				Str("path", c.Request.URL.Path).
				Msg("handler panicked")
			c.AbortWithStatus(http.StatusInternalServerError)
		}),
		middleware.CORS(d.Config.CORSOrigins),
	)

	store := cookie.NewStore([]byte(d.Config.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   !d.Config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.InjectUser(d.DB))
	r.Use(d.Activity.Middleware())

	r.GET("/health", handlers.Health(d.DB))

	authH := handlers.NewAuthHandler(d.DB)
	auth := r.Group("/api/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/logout", authH.Logout)
	auth.GET("/me", authH.Me)

	// писать могут все, кроме наблюдателя
	write := middleware.RequireRole(models.RoleAdmin, models.RoleLawyer, models.RoleAccountant)

	payments := handlers.NewPaymentHandler(d.DB)
	cases := handlers.NewCaseHandler(d.DB)
	clients := handlers.NewClientHandler(d.DB)
	lookups := handlers.NewLookupHandler(d.DB)

	// v1: списки — массивом
	v1 := r.Group("/api/v1", middleware.RequireAuth())
	v1.GET("/payments", payments.List)
	v1.GET("/payments/export", payments.Export)
	v1.GET("/cases", cases.List)
	v1.GET("/clients", clients.List)

	v1.GET("/income-types", lookups.ListIncomeTypes)
	v1.POST("/income-types", write, lookups.CreateIncomeType)
	v1.GET("/deal-types", lookups.ListDealTypes)
	v1.POST("/deal-types", write, lookups.CreateDealType)
	v1.GET("/payment-sources", lookups.ListPaymentSources)
	v1.POST("/payment-sources", write, lookups.CreatePaymentSource)
	v1.GET("/payment-statuses", lookups.ListPaymentStatuses)
	v1.POST("/payment-statuses", write, lookups.CreatePaymentStatus)

	// v2: списки — страницей
	v2 := r.Group("/api/v2", middleware.RequireAuth())
	v2.GET("/payments", payments.ListPaged)
	v2.GET("/cases", cases.ListPaged)
	v2.GET("/clients", clients.ListPaged)

	for _, g := range []*gin.RouterGroup{v1, v2} {
		g.GET("/payments/:id", payments.Get)
		g.POST("/payments", write, payments.Create)
		g.PUT("/payments/:id", write, payments.Update)
		g.DELETE("/payments/:id", write, payments.Delete)

		g.GET("/cases/:id", cases.Get)
		g.POST("/cases", write, cases.Create)
		g.PUT("/cases/:id", write, cases.Update)
		g.DELETE("/cases/:id", write, cases.Delete)

		g.GET("/clients/:id", clients.Get)
		g.POST("/clients", write, clients.Create)
		g.PUT("/clients/:id", write, clients.Update)
		g.DELETE("/clients/:id", write, clients.Delete)
	}

	activityH := handlers.NewActivityHandler(database.NewActivityStore(d.DB), d.Activity)
	logs := r.Group("/api/activity-logs", middleware.RequireAuth())
	logs.GET("", middleware.RequireRole(models.RoleAdmin), activityH.List)
	logs.POST("", activityH.Create)

	suggestions := handlers.NewSuggestionHandler(d.Parties)
	sg := r.Group("/api/suggestions", middleware.RequireAuth())
	sg.GET("/party", suggestions.Party)
	sg.GET("/party/by-inn/:inn", suggestions.PartyByINN)

	return r
}
