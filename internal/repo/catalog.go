package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// CatalogRepo defines the read operations for the preset catalog.
// Prefix matching is case-insensitive on the display name; an empty prefix
// matches everything. Entries keep their preset order.
type CatalogRepo interface {
	// ListDestinations returns one page of preset destinations and the total
	// number of matches.
	ListDestinations(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Destination, int64, error)

	// ListActivities returns one page of activity categories and the total
	// number of matches.
	ListActivities(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Activity, int64, error)

	// GetActivity returns an activity category by slug.
	// Returns domain.ErrNotFound if the slug is unknown.
	GetActivity(ctx context.Context, slug string) (domain.Activity, error)
}

// pgCatalogRepo is the Postgres implementation of CatalogRepo.
// The tables are created and seeded by the migrations package.
type pgCatalogRepo struct {
	db db
}

// NewCatalogRepo constructs a CatalogRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCatalogRepo(db db) CatalogRepo {
	return &pgCatalogRepo{db: db}
}

func (r *pgCatalogRepo) ListDestinations(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Destination, int64, error) {
	rows, total, err := r.listPaged(ctx, "destinations", prefix, p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CatalogRepo.ListDestinations: %w", err)
	}
	out := make([]domain.Destination, len(rows))
	for i, row := range rows {
		out[i] = domain.Destination(row)
	}
	return out, total, nil
}

func (r *pgCatalogRepo) ListActivities(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Activity, int64, error) {
	rows, total, err := r.listPaged(ctx, "activities", prefix, p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CatalogRepo.ListActivities: %w", err)
	}
	out := make([]domain.Activity, len(rows))
	for i, row := range rows {
		out[i] = domain.Activity(row)
	}
	return out, total, nil
}

func (r *pgCatalogRepo) GetActivity(ctx context.Context, slug string) (domain.Activity, error) {
	const q = `SELECT slug, name FROM activities WHERE slug = @slug`

	row, err := scanEntry(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.CatalogRepo.GetActivity: %w", err)
	}
	return domain.Activity(row), nil
}

// catalogEntry is the row shape shared by both catalog tables.
type catalogEntry struct {
	Slug string
	Name string
}

// listPaged runs the count and page queries against table, which must be one
// of the fixed catalog table names (it is interpolated, not bound).
func (r *pgCatalogRepo) listPaged(ctx context.Context, table, prefix string, p domain.PaginationParams) ([]catalogEntry, int64, error) {
	args := pgx.NamedArgs{
		"pattern": likePrefix(prefix),
		"limit":   p.Limit,
		"offset":  p.Offset(),
	}

	var total int64
	countQ := `SELECT count(*) FROM ` + table + ` WHERE name ILIKE @pattern`
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	pageQ := `
		SELECT slug, name
		FROM ` + table + `
		WHERE name ILIKE @pattern
		ORDER BY position, slug
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, pageQ, args)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	entries := []catalogEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}
	return entries, total, nil
}

// scanEntry maps a single (slug, name) row.
func scanEntry(s scanner) (catalogEntry, error) {
	var e catalogEntry
	if err := s.Scan(&e.Slug, &e.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalogEntry{}, domain.ErrNotFound
		}
		return catalogEntry{}, err
	}
	return e, nil
}

// likePrefix escapes LIKE metacharacters in prefix and appends the wildcard.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
