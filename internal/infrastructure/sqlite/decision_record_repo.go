package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andreybell91/ignite/internal/domain"
)

// DecisionRecordRepo implements [domain.DecisionRecordRepository] backed
// by SQLite. Append order is kept by an autoincrement sequence column.
type DecisionRecordRepo struct {
	DB *sql.DB
}

func (r *DecisionRecordRepo) Append(ctx context.Context, rec domain.DecisionRecord) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO decision_records (id, service, decision, summary, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Service), string(rec.Decision), rec.Summary, formatTime(rec.RecordedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("decision record %q: %w", rec.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert decision record: %w", err)
	}
	return nil
}

func (r *DecisionRecordRepo) ListByService(ctx context.Context, name domain.ServiceName) ([]domain.DecisionRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, service, decision, summary, recorded_at
		 FROM decision_records WHERE service = ? ORDER BY seq`,
		string(name),
	)
	if err != nil {
		return nil, fmt.Errorf("list decision records: %w", err)
	}
	defer rows.Close()

	var records []domain.DecisionRecord
	for rows.Next() {
		rec, err := scanDecisionRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *DecisionRecordRepo) DeleteByService(ctx context.Context, name domain.ServiceName) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM decision_records WHERE service = ?`,
		string(name),
	)
	if err != nil {
		return fmt.Errorf("delete decision records: %w", err)
	}
	return nil
}

func scanDecisionRecord(s scanner) (domain.DecisionRecord, error) {
	var rec domain.DecisionRecord
	var service, decision, recordedAt string
	if err := s.Scan(&rec.ID, &service, &decision, &rec.Summary, &recordedAt); err != nil {
		return rec, fmt.Errorf("scan decision record: %w", err)
	}
	rec.Service = domain.ServiceName(service)
	rec.Decision = domain.DeployDecision(decision)
	t, err := parseTime(recordedAt)
	if err != nil {
		return rec, fmt.Errorf("parse recorded_at: %w", err)
	}
	rec.RecordedAt = t
	return rec, nil
}
