// Package server exposes the HTTP surface: CRUD for series, customers,
// offerings and bookings, plus the manual scheduler trigger. Everything
// here is thin glue over the domain services.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	bookingdomain "github.com/smallbiznis/bookflow/internal/booking/domain"
	catalogservice "github.com/smallbiznis/bookflow/internal/catalog/service"
	"github.com/smallbiznis/bookflow/internal/config"
	customerdomain "github.com/smallbiznis/bookflow/internal/customer/domain"
	"github.com/smallbiznis/bookflow/internal/scheduler"
	seriesdomain "github.com/smallbiznis/bookflow/internal/series/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Config      config.Config
	SeriesSvc   seriesdomain.Service
	BookingSvc  bookingdomain.Service
	CustomerSvc customerdomain.Service
	CatalogSvc  *catalogservice.Service
	Scheduler   *scheduler.Scheduler
}

type Server struct {
	log         *zap.Logger
	seriesSvc   seriesdomain.Service
	bookingSvc  bookingdomain.Service
	customerSvc customerdomain.Service
	catalogSvc  *catalogservice.Service
	scheduler   *scheduler.Scheduler
}

func New(p Params) *Server {
	return &Server{
		log:         p.Log.Named("server"),
		seriesSvc:   p.SeriesSvc,
		bookingSvc:  p.BookingSvc,
		customerSvc: p.CustomerSvc,
		catalogSvc:  p.CatalogSvc,
		scheduler:   p.Scheduler,
	}
}

func registerGin(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(AccessLogMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.GET("/series", s.ListSeries)
	api.POST("/series", s.CreateSeries)
	api.GET("/series/:id", s.GetSeries)
	api.POST("/series/:id/pause", s.PauseSeries)
	api.POST("/series/:id/resume", s.ResumeSeries)
	api.POST("/series/:id/cancel", s.CancelSeries)

	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomer)

	api.GET("/offerings", s.ListOfferings)
	api.POST("/offerings", s.CreateOffering)
	api.GET("/offerings/:id", s.GetOffering)

	api.GET("/bookings", s.ListBookings)
	api.GET("/bookings/:id", s.GetBooking)

	// Reports only that a run was triggered; outcomes land in logs and rows.
	api.POST("/scheduler/run", s.TriggerSchedulerRun)
}

func registerHTTPServer(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine, s *Server) {
	s.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// Module wires the HTTP server.
var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(New),
	fx.Invoke(registerHTTPServer),
)
