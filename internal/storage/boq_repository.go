package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"boq_engine/internal/models"
)

const boqColumns = `
	id, boq_id, resource_spec_id,
	project_id, resource_id, region, machine_type, pricing_model,
	compute_cost, storage_cost, gpu_cost, network_cost,
	compute_unit_price, storage_unit_price, gpu_unit_price, network_unit_price,
	compute_source,
	sustained_use_percent, sustained_use_amount,
	committed_use_percent, committed_use_amount,
	spot_percent, spot_amount,
	subtotal, total_discount, total_cost, created_at`

// BoQRepository handles BoQ line item database operations. Line items are
// append-only; a new run writes under a fresh boq_id and never touches prior
// rows.
type BoQRepository struct {
	db        *DB
	batchSize int
}

// NewBoQRepository creates a new BoQ repository. batchSize bounds the number
// of rows per insert statement.
func NewBoQRepository(db *DB, batchSize int) *BoQRepository {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &BoQRepository{db: db, batchSize: batchSize}
}

// InsertLineItems persists the line items of one run in batches. Any failure
// is returned as-is; the caller treats it as fatal to the run.
func (r *BoQRepository) InsertLineItems(ctx context.Context, items []*models.BoQLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO boq_line_items (
			id, boq_id, resource_spec_id,
			project_id, resource_id, region, machine_type, pricing_model,
			compute_cost, storage_cost, gpu_cost, network_cost,
			compute_unit_price, storage_unit_price, gpu_unit_price, network_unit_price,
			compute_source,
			sustained_use_percent, sustained_use_amount,
			committed_use_percent, committed_use_amount,
			spot_percent, spot_amount,
			subtotal, total_discount, total_cost, created_at
		) VALUES (
			:id, :boq_id, :resource_spec_id,
			:project_id, :resource_id, :region, :machine_type, :pricing_model,
			:compute_cost, :storage_cost, :gpu_cost, :network_cost,
			:compute_unit_price, :storage_unit_price, :gpu_unit_price, :network_unit_price,
			:compute_source,
			:sustained_use_percent, :sustained_use_amount,
			:committed_use_percent, :committed_use_amount,
			:spot_percent, :spot_amount,
			:subtotal, :total_discount, :total_cost, :created_at
		)
	`

	for start := 0; start < len(items); start += r.batchSize {
		end := start + r.batchSize
		if end > len(items) {
			end = len(items)
		}
		if _, err := r.db.conn.NamedExecContext(ctx, query, items[start:end]); err != nil {
			return fmt.Errorf("failed to insert line items %d..%d: %w", start, end, err)
		}
	}
	return nil
}

// GetByBoQID retrieves all line items of one run.
func (r *BoQRepository) GetByBoQID(ctx context.Context, boqID uuid.UUID) ([]*models.BoQLineItem, error) {
	var items []*models.BoQLineItem
	query := `SELECT ` + boqColumns + ` FROM boq_line_items WHERE boq_id = $1 ORDER BY project_id, resource_id`

	if err := r.db.conn.SelectContext(ctx, &items, query, boqID); err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrBoQNotFound
	}
	return items, nil
}

// ListByProject retrieves line items for a project across runs, newest first.
func (r *BoQRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]*models.BoQLineItem, error) {
	if limit <= 0 {
		limit = 100
	}

	var items []*models.BoQLineItem
	query := `SELECT ` + boqColumns + ` FROM boq_line_items WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2`

	if err := r.db.conn.SelectContext(ctx, &items, query, projectID, limit); err != nil {
		return nil, fmt.Errorf("failed to list line items by project: %w", err)
	}
	return items, nil
}

// ListByTimeRange retrieves line items created within [from, to), newest
// first.
func (r *BoQRepository) ListByTimeRange(ctx context.Context, from, to time.Time, limit int) ([]*models.BoQLineItem, error) {
	if limit <= 0 {
		limit = 1000
	}

	var items []*models.BoQLineItem
	query := `SELECT ` + boqColumns + ` FROM boq_line_items WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC LIMIT $3`

	if err := r.db.conn.SelectContext(ctx, &items, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("failed to list line items by time range: %w", err)
	}
	return items, nil
}
