package main

import (
	"log"

	"github.com/joho/godotenv"

	corecmd "github.com/m3rciful/hotelbot/core/cmd"
	"github.com/m3rciful/hotelbot/internal/app"
)

func main() {
	// Missing .env is fine; config falls back to real environment.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config/config.yaml",
		LoadConfig:        app.Load,
		Bootstrap:         app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("hotelbot: %v", err)
	}
}
