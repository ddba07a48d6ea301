package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/pvp-damage/internal/report"
)

// ErrReportNotFound is returned when a report lookup yields no results.
var ErrReportNotFound = errors.New("report not found")

// ErrReportExists is returned when saving a report whose id is already stored.
var ErrReportExists = errors.New("report already exists")

// DefaultListLimit caps List when the filter sets no limit.
const DefaultListLimit = 50

const reportColumns = `id, kind, attacker, defender, move, cap, stat, min_damage, max_damage,
	total, rank1, rank1_stat, damage_rank1, tiers, summary, created_at`

// ReportFilter narrows List. Empty fields match everything.
type ReportFilter struct {
	Kind report.Kind
	// Attacker and Defender match battler labels case-insensitively by substring.
	Attacker string
	Defender string
	Limit    int
}

// ReportRepository provides report persistence operations.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts r. CreatedAt is replaced by the stored timestamp.
//
// Precondition: r.ID is set (report.FromRanges assigns one).
// Postcondition: Returns nil, ErrReportExists on a duplicate id, or a wrapped error.
func (r *ReportRepository) Save(ctx context.Context, rep *report.Report) error {
	tiers := rep.Tiers
	if tiers == nil {
		tiers = []report.Tier{}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO reports
			(id, kind, attacker, defender, move, cap, stat, min_damage, max_damage,
			 total, rank1, rank1_stat, damage_rank1, tiers, summary)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at`,
		rep.ID, string(rep.Kind), rep.Attacker, rep.Defender, rep.Move, rep.CapLimit, rep.Stat,
		rep.MinDamage, rep.MaxDamage, rep.Total, rep.Rank1, rep.Rank1Stat, rep.DamageRank1,
		tiers, rep.Summary,
	).Scan(&rep.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrReportExists
		}
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}

// Get returns the report with the given id.
//
// Postcondition: Returns the report or ErrReportNotFound.
func (r *ReportRepository) Get(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	rep, err := scanReport(r.db.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("querying report: %w", err)
	}
	return rep, nil
}

// List returns matching reports, newest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *ReportRepository) List(ctx context.Context, f ReportFilter) ([]*report.Report, error) {
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.Attacker != "" {
		args = append(args, "%"+f.Attacker+"%")
		where = append(where, fmt.Sprintf("attacker ILIKE $%d", len(args)))
	}
	if f.Defender != "" {
		args = append(args, "%"+f.Defender+"%")
		where = append(where, fmt.Sprintf("defender ILIKE $%d", len(args)))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	args = append(args, limit)

	q := `SELECT ` + reportColumns + ` FROM reports`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d`, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var out []*report.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return out, nil
}

// Delete removes the report with the given id.
//
// Postcondition: Returns ErrReportNotFound if no row was deleted.
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func scanReport(row pgx.Row) (*report.Report, error) {
	var (
		rep  report.Report
		kind string
	)
	if err := row.Scan(
		&rep.ID, &kind, &rep.Attacker, &rep.Defender, &rep.Move, &rep.CapLimit, &rep.Stat,
		&rep.MinDamage, &rep.MaxDamage, &rep.Total, &rep.Rank1, &rep.Rank1Stat, &rep.DamageRank1,
		&rep.Tiers, &rep.Summary, &rep.CreatedAt,
	); err != nil {
		return nil, err
	}
	rep.Kind = report.Kind(kind)
	return &rep, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
