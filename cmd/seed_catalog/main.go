package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"study_webapp/internal/domain"
	"study_webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// seed_catalog loads content groups from a JSON file:
//
//	[{"id": "algebra-1", "name": "Algebra I", "cost": 120,
//	  "policy": "whole_group", "sort_order": 1,
//	  "link_ids": ["alg1-intro", "alg1-linear"]}]
func main() {
	file := flag.String("file", "catalog.json", "catalog JSON file")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	b, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}

	var groups []domain.ContentGroup
	if err := json.Unmarshal(b, &groups); err != nil {
		log.Fatalf("parse %s: %v", *file, err)
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := repository.NewCatalogRepository(db)
	for _, g := range groups {
		if g.Policy != domain.UnlockWholeGroup && g.Policy != domain.UnlockPerItem {
			log.Fatalf("group %s: unknown policy %q", g.ID, g.Policy)
		}
		if err := repo.SeedGroup(context.Background(), g); err != nil {
			log.Fatalf("seed group %s: %v", g.ID, err)
		}
		log.Printf("seeded %s (%d links)", g.ID, len(g.LinkIDs))
	}
}
