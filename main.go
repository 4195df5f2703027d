package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"example.com/socialfeed/cmd/server"
	appkafka "example.com/socialfeed/internal/broker"
	config "example.com/socialfeed/internal/init"
	"example.com/socialfeed/internal/media"
	"example.com/socialfeed/internal/store"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize application configuration
	cfg := config.Init()
	gin.SetMode(cfg.GinMode)

	// Setup OS signal handling for graceful shutdown (SIGINT, SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the database and apply migrations
	st, err := store.New(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer st.Close()

	if cfg.Mode == "migrate" {
		log.Println("Migrations applied, exiting")
		return
	}
	if cfg.Mode != "server" {
		log.Fatalf("unknown mode: %s", cfg.Mode)
	}

	// Activity events are optional
	publisher := appkafka.NewPublisher(nil)
	if cfg.KafkaBroker != "" {
		kafkaWriter, err := appkafka.NewKafkaWriter(ctx, appkafka.KafkaConfig{
			Brokers:      []string{cfg.KafkaBroker},
			Topic:        cfg.KafkaTopic,
			Partition:    cfg.KafkaPartition,
			WriteTimeout: cfg.KafkaWriteTO,
		})
		if err != nil {
			log.Fatalf("Kafka writer init failed: %v", err)
		}
		defer kafkaWriter.Close()
		publisher = appkafka.NewPublisher(kafkaWriter)
	}

	// Media storage backend
	opts := server.Options{Store: st, Events: publisher}
	switch cfg.MediaBackend {
	case "disk":
		disk, err := media.NewDiskStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Upload dir init failed: %v", err)
		}
		opts.Media = disk
		opts.UploadDir = disk.Dir()
	case "gcs":
		bucket, err := media.NewBucketStore(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatalf("Bucket init failed: %v", err)
		}
		opts.Media = bucket
	default:
		log.Fatalf("unknown media backend: %s", cfg.MediaBackend)
	}

	server.Run(ctx, server.New(cfg, opts), cfg.ServerAddr, cfg.TLSCertFile, cfg.TLSKeyFile)

	log.Println("Shutdown completed")
}
