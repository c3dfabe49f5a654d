// Command catalog-import bulk-loads gzipped JSON-lines product feeds into the
// catalog. Feeds from parts aggregators routinely repeat VINs across files,
// so a bloom filter plus an exact set deduplicates before insertion.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vintrade/parts-market/internal/domain/product"
	"github.com/vintrade/parts-market/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// feedRow is one JSON line in a product feed.
type feedRow struct {
	VIN          string `json:"vin"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	InitialStock int    `json:"initial_stock"`
}

// importRow is a validated, deduplicated row ready for CopyFrom.
type importRow struct {
	feedRow
	price decimal.Decimal
}

func main() {
	var (
		databaseURL string
		vendorID    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&vendorID, "vendor-id", "", "account ID that will own the imported products")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if vendorID == "" {
		slog.Error("vendor ID is required: set --vendor-id")
		os.Exit(1)
	}
	files := flag.Args()
	if len(files) == 0 {
		slog.Error("at least one feed file (.json.gz) is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, vendorID, files); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, databaseURL, vendorID string, files []string) error {
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Parse all feeds concurrently; dedupe across files as rows arrive.
	// The bloom filter rejects almost every duplicate cheaply, the exact set
	// catches its false positives.
	var (
		mu     sync.Mutex
		filter = bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		seen   = make(map[string]struct{})
		rows   []importRow
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		g.Go(func() error {
			return parseFeed(ctx, file, func(row importRow) {
				mu.Lock()
				defer mu.Unlock()
				if filter.TestString(row.VIN) {
					if _, dup := seen[row.VIN]; dup {
						return
					}
				}
				filter.AddString(row.VIN)
				seen[row.VIN] = struct{}{}
				rows = append(rows, row)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "parse feeds")
	}

	slog.Info("feeds parsed", slog.Int("unique_products", len(rows)))

	if err := copyProducts(ctx, pool, vendorID, rows); err != nil {
		return errors.Wrap(err, "copy products")
	}
	return nil
}

// parseFeed streams one gzipped JSON-lines file, passing every valid row to
// emit. Rows with malformed VINs or prices are logged and skipped.
func parseFeed(ctx context.Context, file string, emit func(importRow)) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrapf(err, "open %s", file)
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip %s", file)
	}
	defer gz.Close()

	var lineNo, skipped int
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	for scanner.Scan() {
		lineNo++
		if lineNo%progressEvery == 0 {
			slog.Info("parsing feed", slog.String("file", file), slog.Int("lines", lineNo))
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		var row feedRow
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			skipped++
			continue
		}

		row.VIN = product.NormalizeVIN(row.VIN)
		if !product.ValidVIN(row.VIN) || row.Name == "" || row.InitialStock < 0 {
			skipped++
			continue
		}
		price, err := decimal.NewFromString(row.Price)
		if err != nil || !price.IsPositive() {
			skipped++
			continue
		}

		emit(importRow{feedRow: row, price: price})
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", file)
	}

	if skipped > 0 {
		slog.Warn("skipped malformed feed rows", slog.String("file", file), slog.Int("count", skipped))
	}
	return nil
}

// copyProducts bulk-inserts rows via COPY into a temp table, then upserts
// into products so re-imports refresh rather than fail.
func copyProducts(ctx context.Context, pool *pgxpool.Pool, vendorID string, rows []importRow) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `CREATE TEMP TABLE import_products
		(LIKE products INCLUDING DEFAULTS) ON COMMIT DROP`)
	if err != nil {
		return errors.Wrap(err, "create temp table")
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"import_products"},
		[]string{"vin", "vendor_id", "name", "category", "description", "price", "initial_stock"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.VIN, vendorID, r.Name, r.Category, r.Description, r.price, r.InitialStock}, nil
		}),
	)
	if err != nil {
		return errors.Wrap(err, "copy rows")
	}

	ct, err := tx.Exec(ctx, `
		INSERT INTO products (vin, vendor_id, name, category, description, price, initial_stock)
		SELECT vin, vendor_id, name, category, description, price, initial_stock FROM import_products
		ON CONFLICT (vin) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			is_active = TRUE`)
	if err != nil {
		return errors.Wrap(err, "upsert products")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}

	slog.Info("products imported", slog.String("rows", fmt.Sprint(ct.RowsAffected())))
	return nil
}
