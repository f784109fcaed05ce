package routes

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/controllers"
	"github.com/vnkhanh/survey-hub/logger"
	"github.com/vnkhanh/survey-hub/middleware"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/observability"
	"github.com/vnkhanh/survey-hub/repository"
	"github.com/vnkhanh/survey-hub/services"
	"github.com/vnkhanh/survey-hub/storage"
	"github.com/vnkhanh/survey-hub/utils"
)

const limiterTTL = 5 * time.Minute

// Options overrides collaborators that NewApp would otherwise build from
// the config. Zero values mean "use the default".
type Options struct {
	Store          storage.Store
	ExportRunner   func(func())
	GoogleVerifier services.GoogleVerifier
	Tracing        bool
}

// App is the wired HTTP application.
type App struct {
	Router  *gin.Engine
	Metrics *observability.Metrics

	limiters []*middleware.IPRateLimiter
}

// Close stops background goroutines owned by the app.
func (a *App) Close() {
	for _, l := range a.limiters {
		l.Stop()
	}
}

var registerOnce sync.Once

func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("questiontype", func(fl validator.FieldLevel) bool {
				_, ok := models.ParseQuestionType(fl.Field().String())
				return ok
			})
		}
	})
}

func NewApp(cfg config.Config, db *gorm.DB, opts Options) (*App, error) {
	registerValidators()

	store := opts.Store
	if store == nil {
		if cfg.SupabaseEnabled() {
			store = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		} else {
			local, err := storage.NewLocalStore(cfg.ExportDir)
			if err != nil {
				return nil, err
			}
			store = local
		}
	}

	metrics := observability.NewMetrics()
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	users := repository.NewUserRepository(db)
	surveyRepo := repository.NewSurveyRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	jobRepo := repository.NewExportJobRepository(db)

	authSvc := services.NewAuthService(users, tokens, cfg.GoogleClientID)
	if opts.GoogleVerifier != nil {
		authSvc.WithGoogleVerifier(opts.GoogleVerifier)
	}
	surveySvc := services.NewSurveyService(surveyRepo)
	recorder := services.NewResponseRecorder(surveySvc, responseRepo, cfg.StrictAnswers, metrics)
	resultsSvc := services.NewResultsService(surveySvc, responseRepo)
	statsSvc := services.NewStatsService(surveySvc)
	exportSvc := services.NewExportService(resultsSvc, jobRepo, store)
	if opts.ExportRunner != nil {
		exportSvc.WithRunner(opts.ExportRunner)
	}

	app := &App{Metrics: metrics}
	submitLimiter := middleware.NewIPRateLimiter(cfg.SubmitRatePerMin, cfg.SubmitRatePerMin, limiterTTL)
	loginLimiter := middleware.NewIPRateLimiter(cfg.LoginRatePerMin, cfg.LoginRatePerMin, limiterTTL)
	createLimiter := middleware.NewIPRateLimiter(cfg.CreateRatePerMin, cfg.CreateRatePerMin, limiterTTL)
	app.limiters = append(app.limiters, submitLimiter, loginLimiter, createLimiter)

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		app.Close()
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), logger.GinLogger())
	if opts.Tracing {
		r.Use(observability.TracingMiddleware())
	}
	r.Use(metrics.Middleware())
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:4200"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderSessionID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authMW := middleware.AuthJWT(tokens, users)
	ownerMW := middleware.RequireSurveyOwner(surveySvc)

	ac := controllers.NewAuthController(authSvc)
	sc := controllers.NewSurveyController(surveySvc, resultsSvc)
	pc := controllers.NewPublicController(surveySvc, recorder)
	uc := controllers.NewUserController(statsSvc)
	ec := controllers.NewExportController(exportSvc)
	hc := controllers.NewHealthController(db)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Survey server is running")
	})
	r.GET("/ping", controllers.Ping)
	r.GET("/health", hc.Health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimitByIP(loginLimiter), ac.Register)
			auth.POST("/login", middleware.RateLimitByIP(loginLimiter), ac.Login)
			auth.POST("/google/login", middleware.RateLimitByIP(loginLimiter), ac.GoogleLogin)
			auth.GET("/me", authMW, ac.Me)
		}

		surveys := api.Group("/surveys")
		{
			surveys.POST("", authMW, middleware.RateLimitByIP(createLimiter), sc.Create)
			surveys.GET("", authMW, sc.List)

			owned := surveys.Group("/:id", authMW, ownerMW)
			{
				owned.GET("", sc.Get)
				owned.PATCH("", sc.Update)
				owned.DELETE("", sc.Delete)
				owned.GET("/results", sc.Results)
				owned.GET("/results/export", ec.Download)
				owned.POST("/exports", ec.Create)
			}

			public := surveys.Group("/public", middleware.Respondent())
			{
				public.GET("/:publicId", pc.Get)
				public.POST("/:publicId/responses", middleware.RateLimitByIP(submitLimiter), pc.Submit)
				public.GET("/:publicId/check-duplicate", pc.CheckDuplicate)
			}
		}

		api.GET("/exports/:jobId", authMW, ec.Get)
		api.GET("/users/stats", authMW, uc.Stats)
	}

	app.Router = r
	return app, nil
}
