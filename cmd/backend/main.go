package main

import (
	"log"

	"github.com/joho/godotenv"

	"wingman/internal/backend"
	"wingman/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Backend.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY must be set")
	}

	service := backend.NewOpenAIService(cfg.Backend)
	server := backend.NewServer(service, service)

	log.Printf("listening on %s", cfg.Backend.Addr)
	if err := server.Listen(cfg.Backend.Addr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
