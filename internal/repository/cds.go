//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package repository

import (
	"context"

	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/filter"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
)

var cdsFilter = filter.New(domain.CollectionCDS,
	filter.Rule[domain.CDSFilter]{Field: "name", Op: filter.Prefix,
		Value: filter.Param(func(f domain.CDSFilter) *string { return f.Name })},
	filter.Rule[domain.CDSFilter]{Field: "sst_reg", Op: filter.Equal,
		Value: filter.Param(func(f domain.CDSFilter) *string { return f.SSTReg })},
	filter.Rule[domain.CDSFilter]{Field: "website", Op: filter.Contains,
		Value: filter.Param(func(f domain.CDSFilter) *string { return f.Website })},
)

// CDSRepository stores CDS records.
type CDSRepository struct {
	*Repository[domain.CDS]
}

// NewCDSRepository creates a CDSRepository backed by st.
func NewCDSRepository(st store.Store) *CDSRepository {
	return &CDSRepository{newRepository[domain.CDS](st, domain.CollectionCDS, "CDS", nil)}
}

// Filter returns CDS records matching f.
func (r *CDSRepository) Filter(ctx context.Context, f domain.CDSFilter) ([]domain.CDS, error) {
	return runFilter(ctx, r.Repository, cdsFilter, f, f.Limit)
}

// SearchByName returns CDS records whose name starts with prefix.
func (r *CDSRepository) SearchByName(ctx context.Context, prefix string, limit int) ([]domain.CDS, error) {
	return r.Filter(ctx, domain.CDSFilter{Name: &prefix, Limit: limit})
}
