package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
)

// SeedItem represents one item row to insert
type SeedItem struct {
	Name         string
	Description  string
	Category     string
	Supplier     string
	Quantity     int
	Price        decimal.Decimal
	ReorderLevel int
}

var defaultCategories = []string{
	"Electronics", "Furniture", "Office Supplies", "Tools", "Packaging",
}

var defaultSuppliers = []string{
	"Acme Wholesale", "Northline Distribution", "Pacific Trade Co",
}

var defaultUsers = []string{
	"admin", "warehouse", "auditor",
}

var sampleItems = []SeedItem{
	{"USB-C Cable 2m", "Braided charging cable", "Electronics", "Acme Wholesale", 120, decimal.NewFromFloat(7.99), 25},
	{"Wireless Mouse", "2.4GHz optical mouse", "Electronics", "Acme Wholesale", 60, decimal.NewFromFloat(18.50), 15},
	{"Standing Desk", "Height adjustable frame", "Furniture", "Northline Distribution", 12, decimal.NewFromFloat(349.00), 4},
	{"Office Chair", "Mesh back, lumbar support", "Furniture", "Northline Distribution", 20, decimal.NewFromFloat(189.99), 5},
	{"A4 Paper Ream", "500 sheets, 80gsm", "Office Supplies", "Pacific Trade Co", 400, decimal.NewFromFloat(4.25), 100},
	{"Ballpoint Pens", "Box of 50, blue ink", "Office Supplies", "Pacific Trade Co", 85, decimal.NewFromFloat(9.75), 20},
	{"Cordless Drill", "18V with two batteries", "Tools", "Acme Wholesale", 18, decimal.NewFromFloat(129.00), 6},
	{"Tape Gun", "Heavy duty dispenser", "Packaging", "Pacific Trade Co", 35, decimal.NewFromFloat(14.20), 10},
	{"Bubble Wrap Roll", "50m perforated roll", "Packaging", "Pacific Trade Co", 8, decimal.NewFromFloat(22.00), 10},
	{"Label Printer", "Thermal, USB", "Electronics", "Northline Distribution", 9, decimal.NewFromFloat(84.90), 3},
}

func main() {
	var (
		dataFile = flag.String("data", "./seed_items.xlsx", "Excel file with item rows")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Preview changes without modifying database")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "stocktrail"),
		getEnv("DB_PASSWORD", "stocktrail_dev_2025"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "stocktrail"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	var pool *pgxpool.Pool
	var err error

	if !*dryRun {
		pool, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
	}

	items := sampleItems
	if _, err := os.Stat(*dataFile); err == nil {
		loaded, err := loadItemsFromExcel(*dataFile, logger)
		if err != nil {
			logger.Error("failed to load item file", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if len(loaded) > 0 {
			items = loaded
		}
	} else {
		logger.Info("no data file found, using built-in sample items",
			slog.String("file", *dataFile))
	}

	if *dryRun {
		for _, item := range items {
			fmt.Printf("WOULD INSERT: %-24s qty=%-4d price=%s reorder=%d\n",
				item.Name, item.Quantity, item.Price.StringFixed(2), item.ReorderLevel)
		}
		fmt.Printf("\n[DRY RUN] %d items, no changes were made to the database\n", len(items))
		return
	}

	if err := seedReferences(ctx, pool, logger); err != nil {
		logger.Error("failed to seed reference tables", slog.String("error", err.Error()))
		os.Exit(1)
	}

	inserted, err := seedItems(ctx, pool, items, logger)
	if err != nil {
		logger.Error("failed to seed items", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seed operation completed",
		slog.Int("items_inserted", inserted),
		slog.Int("categories", len(defaultCategories)),
		slog.Int("suppliers", len(defaultSuppliers)))
}

// loadItemsFromExcel reads item rows from the first sheet. Expected columns:
// Name, Description, Category, Supplier, Quantity, Price, ReorderLevel.
func loadItemsFromExcel(path string, logger *slog.Logger) ([]SeedItem, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open item file: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in item file")
	}
	sheet := file.Sheets[0]

	var items []SeedItem
	rowIdx := 0
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		// Skip header
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}

		name := get(0)
		if name == "" {
			return nil
		}

		quantity, _ := strconv.Atoi(get(4))
		price, err := decimal.NewFromString(get(5))
		if err != nil {
			logger.Warn("skipping row with bad price",
				slog.String("name", name),
				slog.String("price", get(5)))
			return nil
		}
		reorderLevel, _ := strconv.Atoi(get(6))

		items = append(items, SeedItem{
			Name:         name,
			Description:  get(1),
			Category:     get(2),
			Supplier:     get(3),
			Quantity:     quantity,
			Price:        price,
			ReorderLevel: reorderLevel,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	logger.Info("loaded items from file", slog.Int("count", len(items)))
	return items, nil
}

// seedReferences inserts categories, suppliers and users idempotently.
func seedReferences(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	batch := &pgx.Batch{}

	for _, name := range defaultCategories {
		batch.Queue(`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	}
	for _, name := range defaultSuppliers {
		batch.Queue(`INSERT INTO suppliers (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	}
	for _, name := range defaultUsers {
		batch.Queue(`INSERT INTO users (username) VALUES ($1) ON CONFLICT (username) DO NOTHING`, name)
	}

	br := pool.SendBatch(ctx, batch)
	defer br.Close()

	total := len(defaultCategories) + len(defaultSuppliers) + len(defaultUsers)
	for i := 0; i < total; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert reference row: %w", err)
		}
	}

	logger.Info("seeded reference tables")
	return nil
}

// seedItems inserts items in one transaction, resolving category and supplier
// ids by name. Existing items with the same name are left alone.
func seedItems(ctx context.Context, pool *pgxpool.Pool, items []SeedItem, logger *slog.Logger) (int, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	batch := &pgx.Batch{}

	for _, item := range items {
		batch.Queue(`
			INSERT INTO items (
				name, description, category_id, supplier_id,
				quantity, initial_quantity, price, reorder_level,
				last_restocked, created_at, updated_at
			)
			SELECT $1, $2,
				(SELECT id FROM categories WHERE name = $3),
				(SELECT id FROM suppliers WHERE name = $4),
				$5, $5, $6, $7, $8, $8, $8
			WHERE NOT EXISTS (SELECT 1 FROM items WHERE name = $1)`,
			item.Name, item.Description, item.Category, item.Supplier,
			item.Quantity, item.Price, item.ReorderLevel, now,
		)
	}

	br := tx.SendBatch(ctx, batch)

	inserted := 0
	for range items {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, fmt.Errorf("failed to insert item: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Info("seeded items", slog.Int("count", inserted))
	return inserted, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
