package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/models/dtos"
)

// SearchFilter narrows every search tier. Empty fields do not filter.
type SearchFilter struct {
	POL             string
	POD             string
	PlaceOfDelivery string
	Mode            string
	SortBy          string
	Dir             string
	Limit           int
}

// SearchRepository queries shipment_search_v and input_sea with sqlx.
type SearchRepository struct {
	db *sqlx.DB
}

func NewSearchRepository(db *sqlx.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Exact matches any identifier column against one of values.
func (r *SearchRepository) Exact(ctx context.Context, values []string, f SearchFilter) ([]dtos.SearchRow, error) {
	args := []interface{}{values, values, values, values, values}
	return r.selectRows(ctx, constants.SearchExactWhere, args, f)
}

// Contains matches any identifier column case-insensitively by substring.
func (r *SearchRepository) Contains(ctx context.Context, q string, f SearchFilter) ([]dtos.SearchRow, error) {
	p := "%" + escapeLike(q) + "%"
	args := []interface{}{p, p, p, p, p}
	return r.selectRows(ctx, constants.SearchContainsWhere, args, f)
}

// ByIDs returns the view rows of the given shipments.
func (r *SearchRepository) ByIDs(ctx context.Context, ids []string, f SearchFilter) ([]dtos.SearchRow, error) {
	if len(ids) == 0 {
		return []dtos.SearchRow{}, nil
	}
	return r.selectRows(ctx, constants.SearchByIDsWhere, []interface{}{ids}, f)
}

// ContainerShipmentIDs resolves container numbers to their owning shipments,
// exact match first and substring second.
func (r *SearchRepository) ContainerShipmentIDs(ctx context.Context, q string, exactValues []string) ([]string, error) {
	query, args, err := sqlx.In(constants.ContainerExactQuery, exactValues)
	if err != nil {
		return nil, fmt.Errorf("failed to build container query: %w", err)
	}
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to search containers: %w", err)
	}
	if len(ids) > 0 {
		return ids, nil
	}

	p := "%" + escapeLike(q) + "%"
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(constants.ContainerContainsQuery), p); err != nil {
		return nil, fmt.Errorf("failed to search containers: %w", err)
	}
	return ids, nil
}

func (r *SearchRepository) selectRows(ctx context.Context, where string, args []interface{}, f SearchFilter) ([]dtos.SearchRow, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(constants.SearchSelectColumns)
	sb.WriteString(" FROM ")
	sb.WriteString(constants.ViewShipmentSearch)
	sb.WriteString(" WHERE ")
	sb.WriteString(where)

	for _, c := range []struct {
		col string
		val string
	}{
		{"pol_aol", f.POL},
		{"pod_aod", f.POD},
		{"place_of_delivery", f.PlaceOfDelivery},
		{"mode", f.Mode},
	} {
		if c.val == "" {
			continue
		}
		sb.WriteString(" AND " + c.col + " = ?")
		args = append(args, c.val)
	}

	sb.WriteString(orderClause(f.SortBy, f.Dir))

	limit := f.Limit
	if limit <= 0 || limit > constants.SearchResultLimit {
		limit = constants.SearchResultLimit
	}
	sb.WriteString(" LIMIT ?")
	args = append(args, limit)

	query, inArgs, err := sqlx.In(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	rows := []dtos.SearchRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), inArgs...); err != nil {
		return nil, fmt.Errorf("failed to search shipments: %w", err)
	}
	return rows, nil
}

// orderClause only ever emits whitelisted column names.
func orderClause(sortBy, dir string) string {
	col := "etd_date"
	if strings.EqualFold(sortBy, constants.SortByETA) {
		col = "eta_date"
	}
	if strings.EqualFold(dir, constants.SortAsc) {
		return " ORDER BY " + col + " ASC NULLS FIRST, shipment_id ASC"
	}
	return " ORDER BY " + col + " DESC NULLS LAST, shipment_id ASC"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
