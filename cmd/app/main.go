package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"tripdaddy/cmd/fx/config_fx"
	"tripdaddy/cmd/fx/controllers_fx"
	"tripdaddy/cmd/fx/db_fx"
	"tripdaddy/cmd/fx/itinerary_fx"
	"tripdaddy/cmd/fx/mail_fx"
	"tripdaddy/cmd/fx/memcache_fx"
	"tripdaddy/cmd/fx/payment_service_fx"
	"tripdaddy/cmd/fx/prompt_fx"
	"tripdaddy/internal/api/controllers"
	"tripdaddy/pkg/config"
	"tripdaddy/pkg/middleware"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		prompt_fx.Module,
		mail_fx.Module,
		itinerary_fx.Module,
		payment_service_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	plannerController *controllers.PlannerController,
	itineraryController *controllers.ItineraryController,
	paymentController *controllers.PaymentController) *gin.Engine {

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(middleware.CORSMiddleware(cfg.ClientURL, cfg.IsProduction()))

	limiter := middleware.NewRateLimiter(cfg.Limits.PerMinute, cfg.Limits.Burst)
	stop := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go limiter.Run(stop)
			return nil
		},
		OnStop: func(context.Context) error {
			close(stop)
			return nil
		},
	})

	RegisterRoutes(r, limiter.Limit(log.Named("ratelimit")), plannerController, itineraryController, paymentController)

	return r
}

// RegisterRoutes mounts the API. Routes that call the model go through
// aiLimit.
func RegisterRoutes(r *gin.Engine,
	aiLimit gin.HandlerFunc,
	plannerController *controllers.PlannerController,
	itineraryController *controllers.ItineraryController,
	paymentController *controllers.PaymentController) {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/validate", aiLimit, plannerController.ValidateDestination)
	api.POST("/questions", aiLimit, plannerController.Questions)
	api.POST("/generate", aiLimit, plannerController.Generate)
	api.POST("/regenerate", aiLimit, itineraryController.Regenerate)

	api.POST("/save-email", itineraryController.SaveEmail)
	api.GET("/itinerary/:id", itineraryController.GetItinerary)
	api.GET("/itinerary/:id/pdf", itineraryController.ExportPDF)
	api.POST("/itinerary/:id/remove-activity", itineraryController.RemoveActivity)

	api.POST("/create-checkout-session", paymentController.CreateCheckoutSession)
	api.POST("/verify-payment", aiLimit, paymentController.VerifyPayment)
	api.POST("/stripe/webhook", paymentController.StripeWebhook)
}
