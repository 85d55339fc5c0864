package main

import (
	"context"
	"log"

	"ai-annotation-be/internal/bootstrap"
	"ai-annotation-be/internal/config"
	"ai-annotation-be/internal/server"
	"ai-annotation-be/internal/tracer"
	"ai-annotation-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting generation worker...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background worker error: %v", err)
		}
	}()
	if container.NotificationService != nil {
		container.NotificationService.Start()
	}
	defer container.PollerService.StopAll()

	// 5. Initialize and Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
