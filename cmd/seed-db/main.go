// Command seed-db applies migrations and loads demo accounts, sessions, and
// products for local development and integration testing.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vintrade/parts-market/internal/domain/account"
	"github.com/vintrade/parts-market/internal/repository"
)

// seedAccount describes one demo identity and its fixed session token.
type seedAccount struct {
	username string
	kind     account.Type
	token    string
}

type seedProduct struct {
	vin      string
	name     string
	category string
	price    string
	stock    int
}

var seedProducts = []seedProduct{
	{vin: "1HGCM82633A004352", name: "Honda Accord alternator", category: "electrical", price: "49.99", stock: 3},
	{vin: "2T1BURHE5JC014906", name: "Toyota Corolla brake caliper", category: "brakes", price: "89.50", stock: 12},
	{vin: "3VWFE21C04M000341", name: "VW Jetta radiator", category: "cooling", price: "129.00", stock: 5},
	{vin: "5YJSA1E26MF410322", name: "Model S door handle", category: "body", price: "210.75", stock: 2},
}

func main() {
	var (
		databaseURL string
		pepper      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&pepper, "session-pepper", "", "HMAC pepper for session token hashing (or PARTS_SESSION_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if pepper == "" {
		pepper = os.Getenv("PARTS_SESSION_PEPPER")
	}
	if pepper == "" {
		slog.Error("session pepper is required: set --session-pepper or PARTS_SESSION_PEPPER")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, pepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	accounts := []seedAccount{
		{username: "demo-buyer", kind: account.TypeBuyer, token: "demo-buyer-token"},
		{username: "demo-seller", kind: account.TypeSeller, token: "demo-seller-token"},
		{username: "demo-admin", kind: account.TypeAdmin, token: "demo-admin-token"},
	}

	ids, err := seedAccounts(ctx, pool, pepper, accounts)
	if err != nil {
		return errors.Wrap(err, "seed accounts")
	}

	if err := seedCatalog(ctx, pool, ids["demo-seller"]); err != nil {
		return errors.Wrap(err, "seed products")
	}

	return nil
}

func seedAccounts(ctx context.Context, pool *pgxpool.Pool, pepper string, accounts []seedAccount) (map[string]string, error) {
	ids := make(map[string]string, len(accounts))
	for _, a := range accounts {
		id := uuid.New().String()
		err := pool.QueryRow(ctx, `
			INSERT INTO accounts (id, username, account_type, is_verified)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (username) DO UPDATE SET account_type = EXCLUDED.account_type
			RETURNING id`,
			id, a.username, string(a.kind),
		).Scan(&id)
		if err != nil {
			return nil, errors.Wrapf(err, "insert account %s", a.username)
		}
		ids[a.username] = id

		mac := hmac.New(sha256.New, []byte(pepper))
		mac.Write([]byte(a.token))
		hash := hex.EncodeToString(mac.Sum(nil))

		_, err = pool.Exec(ctx, `
			INSERT INTO sessions (token_hash, account_id, expires_at)
			VALUES ($1, $2, now() + interval '30 days')
			ON CONFLICT (token_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
			hash, id,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "insert session for %s", a.username)
		}

		slog.Info("seeded account", slog.String("username", a.username), slog.String("type", string(a.kind)))
	}
	return ids, nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, vendorID string) error {
	for _, p := range seedProducts {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (vin, vendor_id, name, category, description, price, initial_stock, current_stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			ON CONFLICT (vin) DO UPDATE SET current_stock = EXCLUDED.current_stock, is_active = TRUE`,
			p.vin, vendorID, p.name, p.category, "Seed catalog part for "+p.name+".", p.price, p.stock,
		)
		if err != nil {
			return errors.Wrapf(err, "insert product %s", p.vin)
		}
	}

	slog.Info("seeded products", slog.Int("count", len(seedProducts)))
	return nil
}
