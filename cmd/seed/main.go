// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/auth"
	"refurbhq/internal/domain/purchase"
	"refurbhq/internal/domain/sales"
	"refurbhq/internal/infrastructure/storage/postgres"
	"refurbhq/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	adminRoleID, err := seedAdminRole(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin role", "error", err)
	}

	if err := seedAdminUser(ctx, pool, log, adminRoleID); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if err := seedVoucherSeries(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed voucher series", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedAdminRole creates the administrative role. Authorization rests on
// the is_super_role flag, so the role name is purely cosmetic.
func seedAdminRole(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	roleName := os.Getenv("ADMIN_ROLE_NAME")
	if roleName == "" {
		roleName = "admin"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM auth_roles WHERE name = $1`,
		roleName,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin role already exists", "name", roleName, "role_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check role exists: %w", err)
	}

	roleID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO auth_roles (id, name, description, is_super_role, created_at, updated_at)
		VALUES ($1, $2, 'Full administrative access', true, $3, $3)
	`, roleID, roleName, now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin role: %w", err)
	}

	// Super roles hold every grant implicitly; the explicit set is
	// provisioned anyway so the role lists like any other.
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO auth_role_permissions (id, role_id, grants, updated_at)
		VALUES ($1, $2, $3, $4)
	`, id.New(), roleID, auth.AllGrants(), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin permissions: %w", err)
	}

	log.Infow("admin role created", "name", roleName, "role_id", roleID)
	return roleID, nil
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger, roleID id.ID) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM auth_users WHERE username = $1`,
		adminUsername,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "username", adminUsername, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO auth_users (
			id, username, email, password_hash, full_name, phone,
			role_id, is_active, created_at, updated_at, version
		) VALUES ($1, $2, 'admin@refurbhq.local', $3, 'System Admin', '', $4, true, $5, $5, 1)
	`, userID, adminUsername, string(passwordHash), roleID, now)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "username", adminUsername, "user_id", userID)
	return nil
}

// seedVoucherSeries provisions the counters every document number is
// allocated from.
func seedVoucherSeries(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	series := []struct {
		name   string
		prefix string
	}{
		{sales.SeriesOrder, "ORD"},
		{sales.SeriesPayment, "PAY"},
		{sales.SeriesInvoice, "INV"},
		{purchase.SeriesPurchase, "PO"},
		{purchase.SeriesVendorPayment, "VPAY"},
	}

	now := time.Now().UTC()
	for _, s := range series {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO sys_voucher_series (
				id, name, prefix, start_from, current_number,
				version, created_at, updated_at
			) VALUES ($1, $2, $3, 1, 0, 1, $4, $4)
			ON CONFLICT (name) DO NOTHING
		`, id.New(), s.name, s.prefix, now)
		if err != nil {
			return fmt.Errorf("seed series %s: %w", s.name, err)
		}
	}

	log.Info("voucher series seeded")
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	now := time.Now().UTC()

	// 1. Product category
	categoryID := id.New()
	tag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_product_categories (id, name, version, created_at, updated_at)
		VALUES ($1, 'Refurbished Laptops', 1, $2, $2)
		ON CONFLICT (name) DO NOTHING
	`, categoryID, now)
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = pool.Pool.QueryRow(ctx,
			`SELECT id FROM cat_product_categories WHERE name = 'Refurbished Laptops'`,
		).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("fetch existing category: %w", err)
		}
	}

	// 2. Products
	products := []struct {
		name      string
		brand     string
		model     string
		salePrice string
	}{
		{"ThinkPad T480 14\" i5/16GB/512GB", "Lenovo", "T480", "28500"},
		{"Latitude 7490 14\" i7/16GB/256GB", "Dell", "7490", "31000"},
		{"EliteBook 840 G5 i5/8GB/256GB", "HP", "840 G5", "24500"},
	}
	for _, p := range products {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (
				id, name, category_id, product_type, unit, gst_percent,
				brand_name, model_name, purchase_price, sale_price,
				version, created_at, updated_at
			) VALUES ($1, $2, $3, 'REFURBISHED', 'Pieces', 18, $4, $5, 0, $6, 1, $7, $7)
		`, id.New(), p.name, categoryID, p.brand, p.model, p.salePrice, now)
		if err != nil {
			log.Warnw("failed to seed product", "name", p.name, "error", err)
		}
	}

	// 3. Components
	components := []struct {
		name  string
		price string
	}{
		{"8GB DDR4 SO-DIMM", "1200"},
		{"256GB NVMe SSD", "1800"},
		{"65W USB-C Charger", "650"},
		{"Laptop Battery 45Wh", "2100"},
	}
	for _, comp := range components {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_components (
				id, name, unit, purchase_price, stock_quantity,
				version, created_at, updated_at
			) VALUES ($1, $2, 'Pieces', $3, 0, 1, $4, $4)
		`, id.New(), comp.name, comp.price, now)
		if err != nil {
			log.Warnw("failed to seed component", "name", comp.name, "error", err)
		}
	}

	// 4. Demo customer and vendor
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO cat_customers (
			id, shop_name, shop_address, shop_city, shop_district,
			shop_pincode, shop_state, discount_percent, is_gst_registered,
			is_active, is_new, version, created_at, updated_at
		) VALUES ($1, 'Galaxy Computers', '12 MG Road', 'Bengaluru', 'Bengaluru Urban',
			'560001', 'Karnataka', 0, false, true, true, 1, $2, $2)
	`, id.New(), now)
	if err != nil {
		log.Warnw("failed to seed customer", "error", err)
	}

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO cat_vendors (
			id, name, version, created_at, updated_at
		) VALUES ($1, 'Prime Parts Traders', 1, $2, $2)
	`, id.New(), now)
	if err != nil {
		log.Warnw("failed to seed vendor", "error", err)
	}

	log.Info("demo data seeded successfully")
	return nil
}
