// Package dbtest opens in-memory SQLite databases carrying the retail POS
// schema so repository tests can run without Postgres.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seq atomic.Int64

// Schema mirrors pkg/migrate/migrations using SQLite types. Decimal columns
// are TEXT so values round-trip exactly through shopspring/decimal; the
// numeric(p,s) bounds of weighted rows are enforced with CHECKs instead.
var Schema = []string{
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL,
		branch_id TEXT,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		is_weighted BOOLEAN NOT NULL DEFAULT 0,
		price_per_unit TEXT,
		weight_unit TEXT,
		category TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE customers (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		loyalty_points INTEGER NOT NULL DEFAULT 0 CHECK (loyalty_points >= 0),
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE shopping_list_items (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		product_id TEXT,
		text TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		weight TEXT,
		calculated_price TEXT,
		completed BOOLEAN NOT NULL DEFAULT 0,
		is_click_and_collect BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		CHECK (product_id IS NOT NULL OR (weight IS NULL AND calculated_price IS NULL)),
		CHECK (calculated_price IS NULL OR (weight IS NOT NULL AND CAST(weight AS REAL) > 0)),
		CHECK (weight IS NULL OR (CAST(weight AS REAL) < 10000000 AND (instr(weight, '.') = 0 OR length(weight) - instr(weight, '.') <= 3))),
		CHECK (calculated_price IS NULL OR (CAST(calculated_price AS REAL) < 10000000000 AND (instr(calculated_price, '.') = 0 OR length(calculated_price) - instr(calculated_price, '.') <= 2)))
	)`,
	`CREATE TABLE vouchers (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL,
		branch_id TEXT,
		name TEXT NOT NULL,
		description TEXT,
		points_cost INTEGER NOT NULL CHECK (points_cost > 0),
		discount_type TEXT NOT NULL,
		discount_value TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE customer_vouchers (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		voucher_id TEXT NOT NULL,
		voucher_code TEXT NOT NULL UNIQUE,
		points_spent INTEGER NOT NULL,
		redeemed_at DATETIME NOT NULL,
		is_used BOOLEAN NOT NULL DEFAULT 0,
		used_at DATETIME
	)`,
	`CREATE TABLE promotions (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL,
		branch_id TEXT,
		name TEXT NOT NULL,
		description TEXT,
		discount_type TEXT NOT NULL,
		discount_value TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		applies_to TEXT NOT NULL DEFAULT 'all',
		max_discount_amount TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE promotion_products (
		promotion_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		PRIMARY KEY (promotion_id, product_id)
	)`,
	`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
	`CREATE TABLE outbox_dlq (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		error_reason TEXT NOT NULL,
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		failed_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL,
		customer_id TEXT,
		branch_id TEXT,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		link TEXT,
		read_at DATETIME,
		created_at DATETIME
	)`,
}

// Open returns a fresh in-memory database with Schema applied. Each call gets
// its own database. The pool is capped at one connection so concurrent
// transactions serialize instead of failing with SQLITE_LOCKED.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range Schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// Tx adapts a *gorm.DB to the WithTx runner services expect.
type Tx struct {
	DB *gorm.DB
}

func (t Tx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.DB.WithContext(ctx).Transaction(fn)
}
