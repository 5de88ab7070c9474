package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mumbaitrails/trails_core/internal/db"
	"github.com/mumbaitrails/trails_core/internal/importer"
	"github.com/mumbaitrails/trails_core/internal/store"
)

func main() {
	csvPath := flag.String("csv", "", "Path to POI seed CSV file")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: importer --csv <path>")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Printf("Importing POIs from %s...", *csvPath)

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer file.Close()

	rows, err := importer.ParseRows(file)
	if err != nil {
		log.Fatalf("Failed to parse CSV: %v", err)
	}
	log.Printf("Parsed %d rows", len(rows))

	ctx := context.Background()
	poiStore := store.NewPoiStore(pool)

	takenSlugs, err := poiStore.ListSlugs(ctx)
	if err != nil {
		log.Fatalf("Failed to load existing slugs: %v", err)
	}

	created := 0
	updated := 0
	failed := 0
	for i, row := range rows {
		// Rows whose base slug already exists update that POI in place
		// instead of creating a suffixed duplicate on re-import.
		baseSlug := importer.Slugify(row.Name)
		existingID, err := poiStore.FindIDBySlug(ctx, baseSlug)
		isUpdate := err == nil
		if isUpdate {
			delete(takenSlugs, baseSlug)
		}

		normalized, err := importer.NormalizeRow(row, takenSlugs)
		if err != nil {
			log.Printf("Warning: skipping row %d (%q): %v", i+1, row.Name, err)
			failed++
			continue
		}
		if isUpdate {
			normalized.Poi.ID = existingID
		}

		if err := poiStore.Upsert(ctx, &normalized.Poi, normalized.Category, normalized.Tags); err != nil {
			log.Printf("Warning: failed to import row %d (%q): %v", i+1, row.Name, err)
			failed++
			continue
		}
		if isUpdate {
			updated++
		} else {
			created++
		}
	}

	log.Printf("Import complete: %d created, %d updated, %d failed", created, updated, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
