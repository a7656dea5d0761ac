package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/repository/ports"
)

const tripColumns = `id, user_account_id, status, document, created_at, updated_at`

type TripRepository struct {
	db *sqlx.DB
}

var _ ports.TripRepository = (*TripRepository)(nil)

func NewTripRepo(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, userID uuid.UUID, doc domain.Document) (*domain.TripRecord, error) {
	const query = `
        INSERT INTO generated_trip (user_account_id, status, document)
        VALUES ($1, 'pending', $2::jsonb)
        RETURNING ` + tripColumns
	var record domain.TripRecord
	if err := r.db.QueryRowxContext(ctx, query, userID, doc).StructScan(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *TripRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.TripRecord, error) {
	query := `SELECT ` + tripColumns + ` FROM generated_trip WHERE id = $1 AND user_account_id = $2`
	var record domain.TripRecord
	if err := r.db.GetContext(ctx, &record, query, id, userID); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *TripRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.TripFilter) ([]domain.TripRecord, error) {
	where, params := tripFilterClause(userID, filter)
	query := fmt.Sprintf(`
        SELECT %s FROM generated_trip
        WHERE %s
        ORDER BY created_at DESC, id DESC
        LIMIT $%d OFFSET $%d`, tripColumns, where, len(params)+1, len(params)+2)
	params = append(params, filter.Limit, filter.Offset)

	records := []domain.TripRecord{}
	if err := r.db.SelectContext(ctx, &records, query, params...); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *TripRepository) CountByUser(ctx context.Context, userID uuid.UUID, filter domain.TripFilter) (int, error) {
	where, params := tripFilterClause(userID, filter)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM generated_trip WHERE `+where, params...); err != nil {
		return 0, err
	}
	return total, nil
}

// Complete merges patch into the stored document with jsonb concatenation, so
// keys it does not mention keep their values.
func (r *TripRepository) Complete(ctx context.Context, userID, id uuid.UUID, status domain.TripStatus, patch domain.Document) (*domain.TripRecord, error) {
	const query = `
        UPDATE generated_trip
        SET status = $3,
            document = document || $4::jsonb,
            updated_at = NOW()
        WHERE id = $1 AND user_account_id = $2 AND status = 'pending'
        RETURNING ` + tripColumns
	var record domain.TripRecord
	if err := r.db.QueryRowxContext(ctx, query, id, userID, status, patch).StructScan(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *TripRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM generated_trip WHERE id = $1 AND user_account_id = $2`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func tripFilterClause(userID uuid.UUID, filter domain.TripFilter) (string, []any) {
	clauses := []string{"user_account_id = $1"}
	params := []any{userID}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		params = append(params, pq.StringArray(statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(params)))
	}
	return strings.Join(clauses, " AND "), params
}
