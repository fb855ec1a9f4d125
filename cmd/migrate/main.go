package main

import (
	"context"
	"flag"
	"log"
	"time"

	"bilanpro/internal/app"
	"bilanpro/internal/config"
	"bilanpro/internal/database/migration"

	"github.com/joho/godotenv"
)

func main() {
	dir := flag.String("dir", "migrations", "migrations directory")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r := migration.Runner{Dir: *dir}
	if err := r.Run(ctx, c.DB.SQLDB()); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Printf("migrations applied")
}
