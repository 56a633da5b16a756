package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"funmarket/internal/domain"
)

func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertListing(ctx context.Context, l domain.StoredListing) error {
	doc, err := json.Marshal(l.Listing)
	if err != nil {
		return fmt.Errorf("encode listing %s: %w", l.Listing.ID, err)
	}
	var lo, hi any
	if plo, phi, ok := l.Listing.Price.Bounds(); ok {
		lo, hi = plo, phi
	}
	_, err = r.db.ExecContext(ctx, upsertListingSQL,
		l.Listing.ID,
		string(l.Listing.Kind),
		l.Listing.Type,
		l.Listing.Name,
		l.Listing.Location.City,
		valInt(l.Listing.Capacity),
		lo,
		hi,
		l.Listing.CreatedAt.UTC(),
		string(doc),
		valJSON(l.RawJSON),
	)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, kind domain.Kind, id string, status int, reason string) error {
	if len(reason) > 512 {
		reason = reason[:512]
	}
	_, err := r.db.ExecContext(ctx, insertMissSQL, string(kind), id, status, reason)
	return err
}

func (r *Repo) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx, getListingSQL, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, err
	}
	var l domain.Listing
	if err := json.Unmarshal(doc, &l); err != nil {
		return domain.Listing{}, fmt.Errorf("decode listing %s: %w", id, err)
	}
	return l, nil
}

// FetchListings pushes the indexable facets into SQL. Rows with an unknown
// capacity or price are always returned, matching the in-process filter.
func (r *Repo) FetchListings(ctx context.Context, hints domain.FilterHints) ([]domain.Listing, error) {
	query, args := buildFetch(hints)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var l domain.Listing
		if err := json.Unmarshal(doc, &l); err != nil {
			return nil, fmt.Errorf("decode listing row: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func buildFetch(h domain.FilterHints) (string, []any) {
	var where []string
	var args []any

	if len(h.Kinds) > 0 {
		where = append(where, "kind IN ("+placeholders(len(h.Kinds))+")")
		for _, k := range h.Kinds {
			args = append(args, string(k))
		}
	}
	if len(h.Types) > 0 {
		where = append(where, "type IN ("+placeholders(len(h.Types))+")")
		for _, t := range h.Types {
			args = append(args, t)
		}
	}
	if h.Capacity.Min != nil {
		where = append(where, "(capacity IS NULL OR capacity >= ?)")
		args = append(args, *h.Capacity.Min)
	}
	if h.Capacity.Max != nil {
		where = append(where, "(capacity IS NULL OR capacity <= ?)")
		args = append(args, *h.Capacity.Max)
	}
	// overlap of [price_min, price_max] with the requested range
	if h.Price.Max != nil {
		where = append(where, "(price_min IS NULL OR price_min <= ?)")
		args = append(args, *h.Price.Max)
	}
	if h.Price.Min != nil {
		where = append(where, "(price_max IS NULL OR price_max >= ?)")
		args = append(args, *h.Price.Min)
	}

	q := fetchListingsPrefix
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q + fetchListingsOrder, args
}
