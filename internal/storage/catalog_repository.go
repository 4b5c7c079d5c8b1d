package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"boq_engine/internal/models"
)

const catalogColumns = `
	id, sku_id, description, category,
	machine_family, machine_type, vcpu_count, memory_gb,
	disk_type, gpu_type, commitment_term, network_tier, usage_type,
	price_per_unit, pricing_unit, currency, region,
	effective_date, is_active, tiered_rates, created_at`

// CatalogRepository handles catalog entry database operations with caching.
// Lookup results are cached in-process and the cache is flushed on any write,
// keeping the at-most-one-active-entry view consistent within a process.
type CatalogRepository struct {
	db        *DB
	cache     *LRUCache
	batchSize int
}

// NewCatalogRepository creates a new catalog repository. batchSize bounds the
// number of rows per insert statement.
func NewCatalogRepository(db *DB, batchSize int) *CatalogRepository {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &CatalogRepository{
		db:        db,
		cache:     db.GetCatalogCache(),
		batchSize: batchSize,
	}
}

// FindCompute returns active compute entries matching the machine type
// exactly or by family, in the given region or region-agnostic.
func (r *CatalogRepository) FindCompute(ctx context.Context, machineType, machineFamily, region string, usage models.UsageType) ([]*models.CatalogEntry, error) {
	cacheKey := fmt.Sprintf("compute:%s:%s:%s:%s", machineType, machineFamily, region, usage)
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.([]*models.CatalogEntry), nil
	}

	query := `
		SELECT ` + catalogColumns + `
		FROM catalog_entries
		WHERE is_active = true
		  AND category = 'compute'
		  AND usage_type = $1
		  AND (machine_type = $2 OR machine_family = $3)
		  AND (region = $4 OR region IS NULL)
		ORDER BY effective_date DESC
	`

	var entries []*models.CatalogEntry
	err := r.db.conn.SelectContext(ctx, &entries, query, usage, machineType, machineFamily, region)
	if err != nil {
		return nil, fmt.Errorf("failed to query compute entries: %w", err)
	}

	r.cache.Set(cacheKey, entries)
	return entries, nil
}

// FindStorage returns active storage entries for a disk type, in the given
// region or region-agnostic.
func (r *CatalogRepository) FindStorage(ctx context.Context, diskType, region string) ([]*models.CatalogEntry, error) {
	cacheKey := fmt.Sprintf("storage:%s:%s", diskType, region)
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.([]*models.CatalogEntry), nil
	}

	query := `
		SELECT ` + catalogColumns + `
		FROM catalog_entries
		WHERE is_active = true
		  AND category = 'storage'
		  AND disk_type = $1
		  AND (region = $2 OR region IS NULL)
		ORDER BY effective_date DESC
	`

	var entries []*models.CatalogEntry
	err := r.db.conn.SelectContext(ctx, &entries, query, diskType, region)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage entries: %w", err)
	}

	r.cache.Set(cacheKey, entries)
	return entries, nil
}

// FindGPU returns active GPU entries for a GPU type, in the given region or
// region-agnostic.
func (r *CatalogRepository) FindGPU(ctx context.Context, gpuType, region string, usage models.UsageType) ([]*models.CatalogEntry, error) {
	cacheKey := fmt.Sprintf("gpu:%s:%s:%s", gpuType, region, usage)
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.([]*models.CatalogEntry), nil
	}

	query := `
		SELECT ` + catalogColumns + `
		FROM catalog_entries
		WHERE is_active = true
		  AND category = 'gpu'
		  AND gpu_type = $1
		  AND usage_type = $2
		  AND (region = $3 OR region IS NULL)
		ORDER BY effective_date DESC
	`

	var entries []*models.CatalogEntry
	err := r.db.conn.SelectContext(ctx, &entries, query, gpuType, usage, region)
	if err != nil {
		return nil, fmt.Errorf("failed to query gpu entries: %w", err)
	}

	r.cache.Set(cacheKey, entries)
	return entries, nil
}

// CatalogFilter narrows a catalog listing.
type CatalogFilter struct {
	SKUID       string
	Category    models.Category
	Region      string
	MachineType string
	ActiveOnly  bool
	Limit       int
	Offset      int
}

// Query lists catalog entries matching the filter, newest effective date
// first.
func (r *CatalogRepository) Query(ctx context.Context, filter CatalogFilter) ([]*models.CatalogEntry, error) {
	var (
		conditions []string
		args       []interface{}
	)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.SKUID != "" {
		add("sku_id = $%d", filter.SKUID)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Region != "" {
		add("(region = $%d OR region IS NULL)", filter.Region)
	}
	if filter.MachineType != "" {
		add("machine_type = $%d", filter.MachineType)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	query := `SELECT ` + catalogColumns + ` FROM catalog_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY effective_date DESC, sku_id"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var entries []*models.CatalogEntry
	if err := r.db.conn.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query catalog entries: %w", err)
	}
	return entries, nil
}

// DeactivateBefore marks active entries with an effective date before the
// given one as inactive and returns how many rows changed.
func (r *CatalogRepository) DeactivateBefore(ctx context.Context, effectiveDate time.Time) (int64, error) {
	result, err := r.db.conn.ExecContext(ctx, `
		UPDATE catalog_entries
		SET is_active = false
		WHERE is_active = true AND effective_date < $1
	`, effectiveDate)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate catalog entries: %w", err)
	}

	r.cache.Clear()
	return result.RowsAffected()
}

// BulkInsert inserts entries in batches. Re-inserting the same (SKU, region,
// effective date) is a no-op, making a refresh cycle idempotent.
func (r *CatalogRepository) BulkInsert(ctx context.Context, entries []*models.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO catalog_entries (
			id, sku_id, description, category,
			machine_family, machine_type, vcpu_count, memory_gb,
			disk_type, gpu_type, commitment_term, network_tier, usage_type,
			price_per_unit, pricing_unit, currency, region,
			effective_date, is_active, tiered_rates
		) VALUES (
			:id, :sku_id, :description, :category,
			:machine_family, :machine_type, :vcpu_count, :memory_gb,
			:disk_type, :gpu_type, :commitment_term, :network_tier, :usage_type,
			:price_per_unit, :pricing_unit, :currency, :region,
			:effective_date, :is_active, :tiered_rates
		)
		ON CONFLICT (sku_id, coalesce(region, ''), effective_date) DO NOTHING
	`

	for start := 0; start < len(entries); start += r.batchSize {
		end := start + r.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if _, err := r.db.conn.NamedExecContext(ctx, query, entries[start:end]); err != nil {
			return fmt.Errorf("failed to insert catalog entries %d..%d: %w", start, end, err)
		}
	}

	r.cache.Clear()
	return nil
}

// PurgeInactiveBefore deletes inactive entries older than the cutoff and
// returns how many rows were removed.
func (r *CatalogRepository) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.conn.ExecContext(ctx, `
		DELETE FROM catalog_entries
		WHERE is_active = false AND effective_date < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge catalog entries: %w", err)
	}
	return result.RowsAffected()
}

// CountActive returns the number of active entries, grouped by category.
func (r *CatalogRepository) CountActive(ctx context.Context) (map[models.Category]int, error) {
	rows := []struct {
		Category models.Category `db:"category"`
		Count    int             `db:"count"`
	}{}

	err := r.db.conn.SelectContext(ctx, &rows, `
		SELECT category, count(*) AS count
		FROM catalog_entries
		WHERE is_active = true
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog entries: %w", err)
	}

	counts := make(map[models.Category]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}
