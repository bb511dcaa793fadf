package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/admin"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/config"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	name := os.Getenv("OPERATOR_NAME")
	if name == "" {
		name = "admin"
		log.Printf("Using default operator name: %s", name)
	}

	token := os.Getenv("OPERATOR_TOKEN")
	if token == "" {
		token = "change-me-in-production"
		log.Printf("WARNING: Using default operator token. Set OPERATOR_TOKEN env var in production!")
	}

	if err := admin.CreateOperatorAccount(db, name, token); err != nil {
		log.Fatalf("Failed to create operator account: %v", err)
	}

	log.Printf("Operator account created/updated successfully")
	log.Printf("  Name: %s", name)
	log.Println("\nYou can now login at POST /api/v1/admin/login with:")
	log.Printf("  {\"name\": %q, \"token\": %q}", name, token)
}
