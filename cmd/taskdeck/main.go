package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdeck/internal/server"
	"taskdeck/repository/db"
	inmemory "taskdeck/repository/inmemory"
)

func main() {
	log.Println("starting taskdeck...")

	cfg := server.ReadConfig()
	if cfg.TokenSecret == "" {
		log.Fatal("[ERROR] TOKEN_SECRET must be set")
	}

	var userRepo server.Repository
	var taskRepo server.TaskRepository

	if err := db.Migration(cfg.DBStr, cfg.MigratePath); err != nil {
		log.Println("[WARN] failed to apply migrations:", err)
	} else {
		log.Println("[SUCCESS] migrations applied")
	}

	dbStorage, err := db.NewStorage(context.Background(), cfg.DBStr)
	if err != nil {
		log.Println("[WARN] database unavailable, falling back to in-memory storage:", err)
		inmem := inmemory.NewStorage()
		userRepo = inmem
		taskRepo = inmem
	} else {
		userRepo = dbStorage
		taskRepo = dbStorage
		defer dbStorage.Close()
	}

	api := server.NewTaskAPI(userRepo, taskRepo, cfg)
	if api == nil {
		log.Fatal("[ERROR] failed to initialize API")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("listening on %s:%d", cfg.Addr, cfg.Port)
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Printf("[INFO] received signal %v, shutting down...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Printf("[ERROR] graceful shutdown failed: %v", err)
		} else {
			log.Println("[SUCCESS] graceful shutdown complete")
		}

	case err := <-serverErr:
		log.Printf("[ERROR] server error: %v", err)
	}

	log.Println("taskdeck stopped")
}
