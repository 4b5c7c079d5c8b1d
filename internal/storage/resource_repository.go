package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"boq_engine/internal/models"
)

const resourceColumns = `
	id, project_id, resource_id, machine_type, vcpu_count, memory_gb,
	disk_type, disk_size_gb, additional_disks, region,
	usage_duration_hours, usage_pattern, pricing_model,
	gpu_type, gpu_count, has_external_ip, created_at`

// ResourceRepository handles resource specification database operations
type ResourceRepository struct {
	db *DB
}

// NewResourceRepository creates a new resource specification repository
func NewResourceRepository(db *DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Query returns the specifications matching the filter. An empty filter
// returns everything.
func (r *ResourceRepository) Query(ctx context.Context, filter models.ResourceFilter) ([]*models.ResourceSpecification, error) {
	var (
		conditions []string
		args       []interface{}
	)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if len(filter.ProjectIDs) > 0 {
		add("project_id = ANY($%d)", pq.Array(filter.ProjectIDs))
	}
	if len(filter.ResourceIDs) > 0 {
		add("resource_id = ANY($%d)", pq.Array(filter.ResourceIDs))
	}
	if len(filter.Regions) > 0 {
		add("region = ANY($%d)", pq.Array(filter.Regions))
	}
	if len(filter.PricingModels) > 0 {
		pricingModels := make([]string, len(filter.PricingModels))
		for i, m := range filter.PricingModels {
			pricingModels[i] = string(m)
		}
		add("pricing_model = ANY($%d)", pq.Array(pricingModels))
	}

	query := `SELECT ` + resourceColumns + ` FROM resource_specifications`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY project_id, resource_id"

	var specs []*models.ResourceSpecification
	if err := r.db.conn.SelectContext(ctx, &specs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query resource specifications: %w", err)
	}
	return specs, nil
}

// GetByID retrieves one specification
func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ResourceSpecification, error) {
	var spec models.ResourceSpecification
	query := `SELECT ` + resourceColumns + ` FROM resource_specifications WHERE id = $1`

	err := r.db.conn.GetContext(ctx, &spec, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrResourceSpecNotFound
		}
		return nil, fmt.Errorf("failed to get resource specification: %w", err)
	}
	return &spec, nil
}

// Upsert inserts a specification or replaces the existing one for the same
// (project, resource) pair.
func (r *ResourceRepository) Upsert(ctx context.Context, spec *models.ResourceSpecification) error {
	if spec.ID == uuid.Nil {
		spec.ID = uuid.New()
	}

	_, err := r.db.conn.NamedExecContext(ctx, `
		INSERT INTO resource_specifications (
			id, project_id, resource_id, machine_type, vcpu_count, memory_gb,
			disk_type, disk_size_gb, additional_disks, region,
			usage_duration_hours, usage_pattern, pricing_model,
			gpu_type, gpu_count, has_external_ip
		) VALUES (
			:id, :project_id, :resource_id, :machine_type, :vcpu_count, :memory_gb,
			:disk_type, :disk_size_gb, :additional_disks, :region,
			:usage_duration_hours, :usage_pattern, :pricing_model,
			:gpu_type, :gpu_count, :has_external_ip
		)
		ON CONFLICT (project_id, resource_id) DO UPDATE SET
			machine_type = EXCLUDED.machine_type,
			vcpu_count = EXCLUDED.vcpu_count,
			memory_gb = EXCLUDED.memory_gb,
			disk_type = EXCLUDED.disk_type,
			disk_size_gb = EXCLUDED.disk_size_gb,
			additional_disks = EXCLUDED.additional_disks,
			region = EXCLUDED.region,
			usage_duration_hours = EXCLUDED.usage_duration_hours,
			usage_pattern = EXCLUDED.usage_pattern,
			pricing_model = EXCLUDED.pricing_model,
			gpu_type = EXCLUDED.gpu_type,
			gpu_count = EXCLUDED.gpu_count,
			has_external_ip = EXCLUDED.has_external_ip
	`, spec)
	if err != nil {
		return fmt.Errorf("failed to upsert resource specification: %w", err)
	}
	return nil
}

// Delete removes one specification
func (r *ResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM resource_specifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource specification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrResourceSpecNotFound
	}
	return nil
}
