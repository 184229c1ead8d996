package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"resume-studio/internal/bootstrap"
	"resume-studio/internal/crawler"
	"resume-studio/internal/queue"
	"resume-studio/internal/shared/config"
	"resume-studio/internal/shared/storage/db"
	"resume-studio/internal/shared/telemetry"
)

const defaultTickSeconds = 60

func main() {
	cfg := config.Load()
	if cfg.QueueBackend == "none" {
		log.Fatal("QUEUE_BACKEND must be amqp or sqs for a standalone crawler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, bootstrap.ForProcess(db.ProfileCrawler))
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	tick := time.Duration(envInt("CRAWLER_TICK_SECONDS", defaultTickSeconds)) * time.Second
	log.Printf("crawler started queue=%s tick=%s", cfg.QueueBackend, tick)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		app.CrawlerService.Schedule(ctx, tick)
	}()
	go func() {
		defer wg.Done()
		if err := app.Consumer.Consume(ctx, handler(app.CrawlerService)); err != nil {
			log.Printf("consumer stopped: %v", err)
			stop()
		}
	}()
	wg.Wait()
	log.Printf("crawler stopped")
}

func handler(svc *crawler.Service) queue.HandlerFunc {
	return func(ctx context.Context, msg queue.CrawlMessage) error {
		fields := map[string]any{"taskId": msg.TaskID, "requestId": msg.RequestID}
		telemetry.Info("crawler.message.received", fields)
		if err := svc.Handle(ctx, msg); err != nil {
			fields["error"] = err.Error()
			telemetry.Error("crawler.message.failed", fields)
			return err
		}
		return nil
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}
