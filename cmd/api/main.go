package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recipebox/internal/api"
	"recipebox/internal/config"
	"recipebox/internal/logger"
	"recipebox/internal/portion"
	"recipebox/internal/recipe"
	"recipebox/internal/scraper"
)

// pinger reports whether a dependency is reachable.
type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Development: cfg.Log.Development})
	defer log.Sync()

	if cfg.Database.URL == "" {
		log.Fatal("database.url is required (set RECIPEBOX_DATABASE_URL)")
	}
	dbStore, err := recipe.NewPostgresStore(cfg.Database.URL)
	if err != nil {
		log.Fatal("error creating postgres store", zap.Error(err))
	}
	defer dbStore.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ingester := scraper.New(cfg.ScraperOptions(), log, scraper.NewMetrics(reg))
	handler := api.NewHandler(ingester, dbStore, portion.NewScaler(cfg.Formatter()), cfg.Server.RequestTimeout, log)

	r := newRouter(handler, cfg, reg, dbStore)

	log.Info("starting server", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newRouter(handler *api.Handler, cfg *config.Config, reg *prometheus.Registry, db pinger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", api.UserHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handler.Register(r)
	return r
}
