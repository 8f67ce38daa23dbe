package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/Veraticus/debt-manager/internal/model"
)

const limitColumns = `id, name, limit_amount, limit_type, start_date, end_date, alert_threshold, category, created_at, updated_at`

// CreateLimit inserts a new credit limit definition.
func (s *SQLiteStorage) CreateLimit(ctx context.Context, limit *model.CreditLimit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLimit(limit); err != nil {
		return err
	}
	return s.createLimitTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) createLimitTx(ctx context.Context, q queryable, limit *model.CreditLimit) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO credit_limits (id, name, limit_amount, limit_type, start_date, end_date, alert_threshold, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		limit.ID,
		limit.Name,
		limit.LimitAmount,
		string(limit.LimitType),
		limit.StartDate.UTC(),
		nullableEndDate(limit),
		limit.AlertThreshold,
		limit.Category,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("limit %s: %w", limit.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create limit: %w", err)
	}

	created, err := s.getLimitTx(ctx, q, limit.ID)
	if err != nil {
		return err
	}
	limit.CreatedAt = created.CreatedAt
	limit.UpdatedAt = created.UpdatedAt
	return nil
}

// GetLimit retrieves a credit limit by ID.
func (s *SQLiteStorage) GetLimit(ctx context.Context, id string) (*model.CreditLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getLimitTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getLimitTx(ctx context.Context, q queryable, id string) (*model.CreditLimit, error) {
	row := q.QueryRowContext(ctx, "SELECT "+limitColumns+" FROM credit_limits WHERE id = ?", id)
	limit, err := scanLimit(row, s.location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("limit %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &limit, nil
}

// GetLimits returns every credit limit ordered by name.
func (s *SQLiteStorage) GetLimits(ctx context.Context) ([]model.CreditLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getLimitsTx(ctx, s.db)
}

func (s *SQLiteStorage) getLimitsTx(ctx context.Context, q queryable) ([]model.CreditLimit, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+limitColumns+" FROM credit_limits ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query limits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var limits []model.CreditLimit
	for rows.Next() {
		limit, scanErr := scanLimit(rows, s.location)
		if scanErr != nil {
			return nil, scanErr
		}
		limits = append(limits, limit)
	}
	return limits, rows.Err()
}

// UpdateLimit replaces the definition of an existing credit limit.
func (s *SQLiteStorage) UpdateLimit(ctx context.Context, limit *model.CreditLimit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLimit(limit); err != nil {
		return err
	}
	return s.updateLimitTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) updateLimitTx(ctx context.Context, q queryable, limit *model.CreditLimit) error {
	result, err := q.ExecContext(ctx, `
		UPDATE credit_limits
		SET name = ?, limit_amount = ?, limit_type = ?, start_date = ?, end_date = ?,
		    alert_threshold = ?, category = ?
		WHERE id = ?
	`,
		limit.Name,
		limit.LimitAmount,
		string(limit.LimitType),
		limit.StartDate.UTC(),
		nullableEndDate(limit),
		limit.AlertThreshold,
		limit.Category,
		limit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update limit %s: %w", limit.ID, err)
	}
	return expectOneRow(result, "limit", limit.ID)
}

// DeleteLimit removes a credit limit definition.
func (s *SQLiteStorage) DeleteLimit(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteLimitTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteLimitTx(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM credit_limits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete limit %s: %w", id, err)
	}
	return expectOneRow(result, "limit", id)
}

// nullableEndDate stores the end date's calendar day, taken in its own
// location, as UTC midnight.
func nullableEndDate(limit *model.CreditLimit) sql.NullTime {
	if limit.EndDate == nil {
		return sql.NullTime{}
	}
	y, m, d := limit.EndDate.Date()
	return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func scanLimit(row rowScanner, loc *time.Location) (model.CreditLimit, error) {
	var limit model.CreditLimit
	var limitType string
	var endDate sql.NullTime
	err := row.Scan(
		&limit.ID,
		&limit.Name,
		&limit.LimitAmount,
		&limitType,
		&limit.StartDate,
		&endDate,
		&limit.AlertThreshold,
		&limit.Category,
		&limit.CreatedAt,
		&limit.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return limit, err
	}
	if err != nil {
		return limit, fmt.Errorf("failed to scan limit: %w", err)
	}
	limit.LimitType = model.LimitType(limitType)
	limit.StartDate = limit.StartDate.In(loc)
	if endDate.Valid {
		y, m, d := endDate.Time.UTC().Date()
		end := time.Date(y, m, d, 0, 0, 0, 0, loc)
		limit.EndDate = &end
	}
	return limit, nil
}

func expectOneRow(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, common.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
