package main

import (
	"log"

	"edurank/internal/config"
	"edurank/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer database.Close(db)

	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed successfully")
}
