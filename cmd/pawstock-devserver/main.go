package main

import (
	"log"
	"os"

	"github.com/pawhome/pawstock/devserver"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "pawstock-dev-secret"
	}

	srv := devserver.New(secret)

	log.Printf("PawStock dev API starting on :%s", port)
	if err := srv.Start(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
