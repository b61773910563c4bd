package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/openletters/carta/server"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CARTA_SERVER_DB")
	if dbPath == "" {
		dbPath = "carta-server.db"
	}

	srv, err := server.New(dbPath, os.Getenv("CARTA_JWT_SECRET"))
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("Carta letters server starting on :%s", port)
	if err := srv.Start(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
