package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elnosh/gopix/pix/qrcode"
	"github.com/elnosh/gopix/server"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, the environment alone is enough
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}

	config, err := server.GetConfig()
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}
	config.Renderer = qrcode.NewBackend()

	pixServer, err := server.SetupServer(config)
	if err != nil {
		log.Fatalf("error setting up pix server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pixServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("error shutting down pix server: %v", err)
		}
	}()

	if err := pixServer.Start(); err != nil {
		log.Fatalf("error starting pix server: %v", err)
	}
	<-shutdownDone
}
