// Package repository provides the SQLite-backed local cache store. It holds
// a bounded-staleness copy of the upstream category reference data and the
// recently viewed driver history shown on the dashboard.
package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/apexlaps/pitwall/pkg/iracing"
)

// categoriesCacheKey names the category refresh timestamp in cache_state.
const categoriesCacheKey = "categories"

// RecentDriver is one entry in the recently viewed driver history
type RecentDriver struct {
	CustID      int       `json:"custId"`
	DisplayName string    `json:"displayName"`
	ViewedAt    time.Time `json:"viewedAt"`
}

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// NewWithDB creates a Repository around an existing database handle. Used in
// tests that need to inject a mock connection.
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			category_id INTEGER PRIMARY KEY,
			label TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cache_state (
			name TEXT PRIMARY KEY,
			refreshed_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS recent_drivers (
			cust_id INTEGER PRIMARY KEY,
			display_name TEXT NOT NULL,
			viewed_at DATETIME NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// CachedCategories returns the cached category list and the time it was last
// refreshed. A zero time means the cache has never been filled.
func (r *Repository) CachedCategories(ctx context.Context) ([]iracing.Category, time.Time, error) {
	var refreshedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT refreshed_at FROM cache_state WHERE name = ?`, categoriesCacheKey,
	).Scan(&refreshedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id, label FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	categories := []iracing.Category{}
	for rows.Next() {
		var cat iracing.Category
		if err := rows.Scan(&cat.CategoryID, &cat.Label); err != nil {
			return nil, time.Time{}, err
		}
		categories = append(categories, cat)
	}
	return categories, refreshedAt, rows.Err()
}

// SaveCategories replaces the cached category list and stamps the refresh time
func (r *Repository) SaveCategories(ctx context.Context, categories []iracing.Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return err
	}
	for _, cat := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (category_id, label) VALUES (?, ?)`,
			cat.CategoryID, cat.Label,
		); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cache_state (name, refreshed_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET refreshed_at = excluded.refreshed_at`,
		categoriesCacheKey, time.Now().UTC(),
	); err != nil {
		return err
	}

	return tx.Commit()
}

// RecordDriverView upserts a driver into the recently viewed history
func (r *Repository) RecordDriverView(ctx context.Context, custID int, displayName string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recent_drivers (cust_id, display_name, viewed_at) VALUES (?, ?, ?)
		 ON CONFLICT(cust_id) DO UPDATE SET display_name = excluded.display_name, viewed_at = excluded.viewed_at`,
		custID, displayName, time.Now().UTC(),
	)
	return err
}

// RecentDrivers returns the most recently viewed drivers, newest first
func (r *Repository) RecentDrivers(ctx context.Context, limit int) ([]RecentDriver, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cust_id, display_name, viewed_at FROM recent_drivers
		 ORDER BY viewed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := []RecentDriver{}
	for rows.Next() {
		var d RecentDriver
		if err := rows.Scan(&d.CustID, &d.DisplayName, &d.ViewedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}
