// Populates the policy page store from a folder tree of PDF documents.
// One row is inserted per page so judgments can cite exact page numbers.
// Run after cmd/create-schema; re-running clears and rebuilds the store.
package main

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"readily-backend/config"
	"readily-backend/models"
	"readily-backend/pdftext"
	"readily-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	log.Println("✓ Postgres connection established")

	repo := repository.NewPolicyPageRepository(pool)

	// Walk the policy folder tree and collect PDFs
	log.Printf("Searching for PDFs in %q...", cfg.PolicyDir)
	var pdfPaths []string
	err = filepath.WalkDir(cfg.PolicyDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".pdf") {
			pdfPaths = append(pdfPaths, path)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan %q: %v", cfg.PolicyDir, err)
	}
	if len(pdfPaths) == 0 {
		log.Fatalf("No PDF files found in %q", cfg.PolicyDir)
	}
	log.Printf("Found %d PDF files", len(pdfPaths))

	// Extract per-page text from every document
	var rows []models.PolicyPage
	for _, path := range pdfPaths {
		filename := filepath.Base(path)
		log.Printf("📄 Processing: %s", filename)

		pages, err := pdftext.ExtractFile(path)
		if err != nil {
			log.Printf("❌ Error processing %s: %v", filename, err)
			continue
		}

		for _, page := range pages {
			rows = append(rows, models.PolicyPage{
				Filename:   filename,
				PageNumber: page.Number,
				Content:    page.Text,
			})
		}
	}

	if len(rows) == 0 {
		log.Fatal("No text extracted from any PDFs.")
	}

	// Clear old data, then insert the fresh page rows
	if err := repo.DeleteAll(ctx); err != nil {
		log.Fatalf("Failed to clear policy pages: %v", err)
	}
	log.Println("✓ Cleared old data")

	if err := repo.InsertPages(ctx, rows); err != nil {
		log.Fatalf("Failed to insert policy pages: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count policy pages: %v", err)
	}
	log.Printf("✓ Pages inserted: %d", count)
	log.Println("Database population complete.")
}
