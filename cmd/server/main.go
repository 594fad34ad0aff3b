package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/kalakobana/kalakobana-backend/internal/server"
)

func main() {
	// A missing .env is fine; production configures through real env vars.
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] no .env file loaded: %v", err)
	}

	srv := server.NewServer()
	log.Printf("[main] listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("[main] server stopped: %v", err)
	}
}
