package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/counter"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/api"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/config"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/logging"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/sink"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/stats"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/store"
	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/internal/video"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	configPath = flag.String("config", "", "Path to YAML configuration file. Empty means ./config.yaml or ./config/config.yaml when present")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logger: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("Vehicle counter stopped")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessionID := uuid.NewString()
	startedAt := time.Now()
	logger.WithField("session_id", sessionID).Info("Starting capture session")

	sinks := sink.Multi{sink.NewLogSink(logger, cfg.Report.Category)}

	var db *gorm.DB
	var repo store.CountRepository
	if cfg.Database.DSN != "" {
		var err error
		db, err = store.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer store.Close(db)
		if err := store.Migrate(db); err != nil {
			return err
		}
		repo = store.NewCountRepository(db)
		storeSink := sink.NewStoreSink(repo, sessionID, cfg.Report.Category, 64, logger)
		defer storeSink.Close()
		sinks = append(sinks, storeSink)
		logger.Info("Persistence enabled")
	}
	if cfg.Report.URL != "" {
		reporter := sink.NewHTTPReporter(cfg.Report.URL, cfg.Report.Category, cfg.Report.Timeout, logger)
		defer reporter.Wait()
		sinks = append(sinks, reporter)
		logger.WithField("url", cfg.Report.URL).Info("Reporting enabled")
	}

	engine, err := counter.NewEngine(cfg.Engine(), nil, sinks)
	if err != nil {
		return err
	}

	source, err := video.OpenSource(cfg.Video.Source)
	if err != nil {
		return err
	}
	defer source.Close()
	detector, err := video.NewCascadeDetector(cfg.Video.Cascade, cfg.Video.ScaleFactor, cfg.Video.MinNeighbors, cfg.Video.MinSizeFraction)
	if err != nil {
		return err
	}
	defer detector.Close()

	fps := cfg.Video.FPS
	if fps <= 0 {
		fps = source.FPS()
	}
	renderer := video.NewRenderer(cfg.Video.Output, fps)
	defer renderer.Close()

	publisher := stats.NewPublisher(sessionID, startedAt)

	if cfg.HTTP.Addr != "" {
		var health func() error
		if db != nil {
			health = func() error { return store.HealthCheck(db) }
		}
		gin.SetMode(cfg.HTTP.Mode)
		server := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: api.NewRouter(api.NewHandler(publisher, repo, health, logger)),
		}
		go func() {
			logger.WithField("addr", cfg.HTTP.Addr).Info("Status API listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("Status API failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("Status API shutdown")
			}
		}()
	}

	engineCfg := engine.Config()
	logger.WithFields(logrus.Fields{
		"session_id":          sessionID,
		"source":              source.Name(),
		"line_fraction":       engineCfg.LineFraction,
		"proximity_window":    engineCfg.ProximityWindow,
		"direction_threshold": engineCfg.DirectionThreshold,
		"max_idle":            engineCfg.MaxIdle.String(),
	}).Info("Counting session ready")

	pipeline := video.NewPipeline(source, detector, engine, renderer, publisher, cfg.Video.FPS, logger)
	if err := pipeline.Run(ctx); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"count":      engine.Count(),
		"duration":   time.Since(startedAt).String(),
	}).Info("Capture session finished")
	return nil
}
