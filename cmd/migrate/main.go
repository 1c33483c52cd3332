package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"analytics-assistant-be/pkg/clusterindex"
	"analytics-assistant-be/pkg/database"
)

// migrate creates the pgvector extension and the two cluster-centroid
// tables EI loads at startup. It is a one-off operator tool, run before
// the offline clustering job populates the tables and before cmd/rest
// starts serving traffic against them.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("info: no .env file found, using process environment")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("error: DATABASE_URL is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatalf("error: failed to connect to database: %v", err)
	}

	log.Println("step 1: enabling pgvector extension")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Fatalf("error: failed to create vector extension: %v", err)
	}

	log.Println("step 2: migrating cluster_level1 and cluster_level2")
	if err := db.AutoMigrate(&clusterindex.Level1Cluster{}, &clusterindex.Level2Cluster{}); err != nil {
		log.Fatalf("error: automigrate failed: %v", err)
	}

	log.Println("migration complete")
}
