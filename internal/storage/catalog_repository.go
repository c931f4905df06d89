package storage

import (
	"context"

	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/libs/db"
)

// CatalogRepository reads services and the per-tenant booking policy.
type CatalogRepository struct {
	pool *db.Pool
}

func NewCatalogRepository(pool *db.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) Service(ctx context.Context, serviceID string) (model.Service, error) {
	var svc model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, tenant_id::text, name, is_active, duration_minutes
		FROM services
		WHERE id = $1
	`, serviceID).Scan(&svc.ID, &svc.TenantID, &svc.Name, &svc.IsActive, &svc.DurationMins)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *CatalogRepository) Policy(ctx context.Context, tenantID string) (model.TenantPolicy, error) {
	var p model.TenantPolicy
	err := r.pool.QueryRow(ctx, `
		SELECT slot_interval_minutes, min_advance_hours, max_advance_days, buffer_minutes
		FROM tenant_policies
		WHERE tenant_id = $1
	`, tenantID).Scan(&p.SlotIntervalMins, &p.MinAdvanceHours, &p.MaxAdvanceDays, &p.BufferMins)
	if err != nil {
		return model.TenantPolicy{}, err
	}
	return p, nil
}
