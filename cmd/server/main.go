package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/staff-be/internal/auth"
	"github.com/hongminglow/staff-be/internal/config"
	"github.com/hongminglow/staff-be/internal/server"
	"github.com/hongminglow/staff-be/internal/service"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, err := server.OpenStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer store.Close()

	if err := service.Bootstrap(ctx, store, auth.NewBcryptHasher(cfg.BcryptCost), cfg.Seed); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	srv := server.New(cfg, store)

	go func() {
		log.Printf("staff backend listening on %s", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	log.Println("server stopped")
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
