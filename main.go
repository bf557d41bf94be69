package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logitrack-api/config"
	"logitrack-api/drafts"
	"logitrack-api/events"
	"logitrack-api/exports"
	"logitrack-api/inquiries"
	"logitrack-api/routes"
	"logitrack-api/shipments"
	"logitrack-api/socket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		panic("load config: " + err.Error())
	}

	log, err := config.NewLogger(cfg.Server.Mode)
	if err != nil {
		panic("init logger: " + err.Error())
	}

	if code := finish(log, run(cfg, log)); code != 0 {
		os.Exit(code)
	}
}

// finish logs why the server stopped, flushes the logger and returns the exit code
func finish(log *zap.Logger, err error) int {
	if err != nil {
		log.Error("server stopped", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		return 1
	}
	return 0
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := config.InitDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	if err := config.SeedAdmin(db, cfg.Admin, log); err != nil {
		return err
	}

	if cfg.Drafts.Dir != "" {
		if err := os.MkdirAll(cfg.Drafts.Dir, 0o755); err != nil {
			return err
		}
	}
	draftStore, err := drafts.Open(cfg.Drafts.Dir, cfg.Drafts.Lifetime())
	if err != nil {
		return err
	}
	defer draftStore.Close()

	// Shipment events go to the live tracking hub and, when configured, kafka
	hub := socket.NewHub(log)
	defer hub.CloseAll()
	publishers := events.Multi{hub}
	if cfg.Kafka.Broker != "" {
		producer := events.NewKafkaProducer(cfg.Kafka.Broker, cfg.Kafka.Topic, log)
		defer producer.Close()
		publishers = append(publishers, producer)
		log.Info("publishing shipment events to kafka",
			zap.String("broker", cfg.Kafka.Broker), zap.String("topic", cfg.Kafka.Topic))
	}

	// Contact notifications
	var notifier events.Notifier = events.LogNotifier{Log: log}
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitNotifier(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		notifier = rabbit
	}

	inquirySvc := &inquiries.Service{
		DB:         db,
		Notifier:   notifier,
		AdminEmail: cfg.Admin.Email,
		Log:        log,
	}
	if cfg.Mongo.URI != "" {
		archive, err := inquiries.NewMongoArchive(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			return err
		}
		defer archive.Close(context.Background())
		inquirySvc.Archive = archive
	}

	var archiver exports.Archiver
	if cfg.S3.Bucket != "" {
		s3a, err := exports.NewS3Archiver(ctx, cfg.S3)
		if err != nil {
			return err
		}
		archiver = s3a
	}

	r := routes.NewRouter(routes.Deps{
		DB:          db,
		Log:         log,
		Shipments:   shipments.NewService(db, publishers, log),
		Drafts:      draftStore,
		Hub:         hub,
		Inquiries:   inquirySvc,
		Archiver:    archiver,
		CORSOrigins: cfg.Server.Origins(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server running", zap.String("addr", "http://localhost:"+cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
