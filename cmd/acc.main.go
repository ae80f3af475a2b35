package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account-service/internal/server"
)

func main() {
	srv := server.NewServer()
	defer srv.DB.Close()
	if srv.Cache != nil {
		defer srv.Cache.Close()
	}

	go func() {
		log.Printf("HTTP server running on %s", srv.Cfg.HTTPAddr)
		if err := srv.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.HTTP.Shutdown(ctx); err != nil {
		log.Printf("[WARN] shutdown: %v", err)
	}
	log.Println("server stopped")
}
