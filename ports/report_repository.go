package ports

import (
	"context"

	"goeda/domain/core"
	"goeda/domain/report"
)

// ReportRun is a stored record of one report generation
type ReportRun struct {
	ID          core.ReportID  `json:"id"`
	DatasetName string         `json:"dataset_name"`
	Rows        int            `json:"rows"`
	Columns     int            `json:"columns"`
	CreatedAt   core.Timestamp `json:"created_at"`
	Report      *report.Report `json:"report,omitempty"`
}

// ReportRepository defines the interface for report history storage
type ReportRepository interface {
	Save(ctx context.Context, rep *report.Report) error
	GetByID(ctx context.Context, id core.ReportID) (*ReportRun, error)
	List(ctx context.Context, limit, offset int) ([]ReportRun, error)
	Delete(ctx context.Context, id core.ReportID) error
}
