package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"catalog/internal/config"
	"catalog/internal/log"
	"catalog/internal/model"
	"catalog/internal/repository"
	"catalog/internal/storage/db"
)

type seedProduct struct {
	Title        string
	Description  string
	Image        string
	Category     model.Category
	Price        float64
	Availability bool
}

var seedProducts = []seedProduct{
	{"Sneakers", "Classic white canvas sneakers with rubber sole. Perfect for everyday casual wear.", "https://images.unsplash.com/photo-1549298916-b41d501d3772?w=400", model.CategoryShoes, 49.00, true},
	{"T-Shirt", "Comfortable cotton t-shirt in rust orange. Relaxed fit suitable for all occasions.", "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=400", model.CategoryClothing, 13.00, true},
	{"Headphones", "Premium over-ear wireless headphones with active noise cancellation and 30-hour battery life.", "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400", model.CategoryElectronics, 38.00, true},
	{"Smartphone", "Latest flagship smartphone with triple camera system and all-day battery life.", "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=400", model.CategoryElectronics, 699.00, true},
	{"Watch", "Minimalist analog watch with black leather strap and stainless steel case.", "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400", model.CategoryAccessories, 149.00, true},
	{"Bag", "Elegant leather crossbody bag in camel color. Perfect for daily essentials.", "https://images.unsplash.com/photo-1548036328-c9fa89d128fa?w=400", model.CategoryAccessories, 89.00, true},
	{"Jeans", "Classic blue denim jeans with comfortable stretch. Timeless style for any wardrobe.", "https://images.unsplash.com/photo-1542272604-787c3835535d?w=400", model.CategoryClothing, 59.00, true},
	{"Laptop", "Powerful laptop with 15.6\" display.", "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=400", model.CategoryElectronics, 999.00, true},
	{"Wireless Earbuds", "High-quality wireless earbuds with noise cancellation.", "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=400", model.CategoryElectronics, 99.99, true},
	{"Running Shoes", "Lightweight running shoes with responsive cushioning.", "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=400", model.CategoryShoes, 129.00, true},
	{"Sunglasses", "Stylish polarized sunglasses with UV protection.", "https://images.unsplash.com/photo-1572635196237-14b3f281503f?w=400", model.CategoryAccessories, 75.00, true},
	{"Winter Jacket", "Warm and stylish winter jacket with waterproof outer layer.", "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=400", model.CategoryClothing, 199.00, false},
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running seed application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	reset := flag.Bool("reset", false, "delete all existing products before seeding")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	productRepository := repository.NewProductRepository(dbClient)

	// The whole seed runs in one transaction so a failing insert leaves the
	// catalog untouched.
	if err := dbClient.WithTx(ctx, func(tx db.DB) error {
		repo := productRepository.WithDB(tx)

		if *reset {
			if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
				return fmt.Errorf("reset products: %w", err)
			}
		}

		for _, sp := range seedProducts {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("generate uuid v7: %w", err)
			}

			productSlug, err := repo.ResolveUniqueSlug(ctx, sp.Title, nil)
			if err != nil {
				return fmt.Errorf("resolve slug for %q: %w", sp.Title, err)
			}

			now := time.Now().UTC()
			if err := repo.Create(ctx, model.Product{
				ID:           id,
				Title:        sp.Title,
				Description:  sp.Description,
				Image:        sp.Image,
				Category:     sp.Category,
				Price:        sp.Price,
				Availability: sp.Availability,
				Slug:         productSlug,
				CreatedAt:    now,
				UpdatedAt:    now,
			}); err != nil {
				return fmt.Errorf("create %q: %w", sp.Title, err)
			}
		}

		return nil
	}); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	logger.InfoContext(ctx, "seeded products", slog.Int("count", len(seedProducts)))

	return nil
}
