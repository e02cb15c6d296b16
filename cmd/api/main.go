package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"rajarani-server/internal/server"
)

func gracefulShutdown(gameServer *server.Server, httpServer *http.Server, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutdown signal received, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := gameServer.Shutdown(ctx); err != nil {
		log.Errorf("error during server shutdown: %v", err)
	}

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("http server forced to shutdown: %v", err)
	}

	done <- true
}

func main() {
	gameServer, httpServer := server.NewServer()

	done := make(chan bool, 1)
	go gracefulShutdown(gameServer, httpServer, done)

	log.Infof("listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("http server error: %v", err)
	}

	<-done
	log.Info("graceful shutdown complete")
}
