package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"goeda/domain/core"
	"goeda/domain/report"
	"goeda/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

// Connect opens a database handle and verifies it
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the reports table when it does not yet exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		dataset_name TEXT NOT NULL,
		row_count INT NOT NULL,
		column_count INT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure reports schema: %w", err)
	}
	return nil
}

// Save inserts a generated report into the history
func (r *reportRepository) Save(ctx context.Context, rep *report.Report) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	query := `INSERT INTO reports (
		id, dataset_name, row_count, column_count, payload, created_at
	) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		rep.ID.String(), rep.DatasetName, rep.Overview.Rows, rep.Overview.Columns,
		payload, rep.GeneratedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// GetByID retrieves a stored report run by its ID
func (r *reportRepository) GetByID(ctx context.Context, id core.ReportID) (*ports.ReportRun, error) {
	query := `SELECT id, dataset_name, row_count, column_count, payload, created_at
	FROM reports WHERE id = $1`

	var run ports.ReportRun
	var idStr string
	var payload []byte
	var createdAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr, &run.DatasetName, &run.Rows, &run.Columns, &payload, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("report not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	run.ID = core.ReportID(idStr)
	if createdAt.Valid {
		run.CreatedAt = core.NewTimestamp(createdAt.Time)
	}
	if len(payload) > 0 {
		var rep report.Report
		if err := json.Unmarshal(payload, &rep); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report payload: %w", err)
		}
		run.Report = &rep
	}

	return &run, nil
}

// List returns recent report runs without their payloads
func (r *reportRepository) List(ctx context.Context, limit, offset int) ([]ports.ReportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, dataset_name, row_count, column_count, created_at
	FROM reports ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var runs []ports.ReportRun
	for rows.Next() {
		var run ports.ReportRun
		var idStr string
		var createdAt sql.NullTime
		if err := rows.Scan(&idStr, &run.DatasetName, &run.Rows, &run.Columns, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		run.ID = core.ReportID(idStr)
		if createdAt.Valid {
			run.CreatedAt = core.NewTimestamp(createdAt.Time)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a stored report run
func (r *reportRepository) Delete(ctx context.Context, id core.ReportID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id.String()); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}
