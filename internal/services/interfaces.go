package services

import (
	"context"
	"encoding/json"

	"github.com/apexlaps/pitwall/pkg/iracing"
)

// ReportServicer defines the report aggregation operations used by handlers
type ReportServicer interface {
	BuildReport(ctx context.Context, custID, year, season int) (*AggregatedDriverReport, error)
}

// CategoryServicer defines the category resolver operations used by handlers
type CategoryServicer interface {
	List(ctx context.Context) ([]iracing.Category, error)
}

// SeasonServicer defines the season listing operations used by handlers
type SeasonServicer interface {
	ListSeasons(ctx context.Context, custID int) ([]SeasonRef, error)
}

// DriverServicer defines the driver lookup operations used by handlers
type DriverServicer interface {
	Search(ctx context.Context, term string) ([]iracing.Driver, error)
	SubsessionResult(ctx context.Context, subsessionID int) (json.RawMessage, error)
}

// Interface conformance checks
var (
	_ ReportServicer   = (*ReportService)(nil)
	_ CategoryServicer = (*CategoryService)(nil)
	_ SeasonServicer   = (*SeasonService)(nil)
	_ DriverServicer   = (*DriverService)(nil)
)
