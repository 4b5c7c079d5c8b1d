package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"boq_engine/internal/config"
)

// DB wraps the database connection and provides health checks
type DB struct {
	conn *sqlx.DB

	// Cache for hot catalog lookups
	catalogCache *LRUCache
}

const (
	catalogCacheSize = 2000
	catalogCacheTTL  = 15 * time.Minute
)

// NewDB connects to Postgres and configures the connection pool
func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	conn, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &DB{
		conn:         conn,
		catalogCache: NewLRUCache(catalogCacheSize, catalogCacheTTL),
	}, nil
}

// Close closes the database connection and clears caches
func (db *DB) Close() error {
	db.catalogCache.Clear()
	return db.conn.Close()
}

// Ping checks if the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Health returns the health status of the database
func (db *DB) Health(ctx context.Context) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := db.conn.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}
	return nil
}

// BeginTx starts a new transaction
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return db.conn.BeginTxx(ctx, opts)
}

// Conn returns the underlying sqlx connection
// Use this for custom queries not covered by repositories
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// GetCatalogCache returns the catalog lookup cache
func (db *DB) GetCatalogCache() *LRUCache {
	return db.catalogCache
}

// CleanupExpiredCacheEntries removes expired entries from all caches
// Should be called periodically (e.g., every minute)
func (db *DB) CleanupExpiredCacheEntries() int {
	return db.catalogCache.CleanupExpired()
}

// Repository factory methods

// NewCatalogRepository creates a new catalog repository
func (db *DB) NewCatalogRepository(batchSize int) *CatalogRepository {
	return NewCatalogRepository(db, batchSize)
}

// NewResourceRepository creates a new resource specification repository
func (db *DB) NewResourceRepository() *ResourceRepository {
	return NewResourceRepository(db)
}

// NewBoQRepository creates a new BoQ line item repository
func (db *DB) NewBoQRepository(batchSize int) *BoQRepository {
	return NewBoQRepository(db, batchSize)
}

// NewAdminUserRepository creates a new admin user repository
func (db *DB) NewAdminUserRepository() *AdminUserRepository {
	return NewAdminUserRepository(db)
}
