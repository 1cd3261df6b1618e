package http

import (
	"context"

	"realtydash/internal/exporter"
	"realtydash/internal/services"
	"realtydash/pkg/contracts/domain"
)

// DataServiceInterface is what the data routes need from the data service.
// *services.DataService satisfies it.
type DataServiceInterface interface {
	FilteredDataset(ctx context.Context, sel domain.Selection) (*domain.Dataset, error)
	DatasetPage(ctx context.Context, sel domain.Selection, columns []string, limit, offset int) (*services.Page, error)
	Aggregate(ctx context.Context, p services.AggregateParams) (domain.AggregationResult, error)
	CrossTab(ctx context.Context, sel domain.Selection, row, col string) (domain.CrossTab, error)
	Dashboard(ctx context.Context, sel domain.Selection) (*domain.Dashboard, error)
	Workbook(ctx context.Context, sel domain.Selection) (exporter.WorkbookData, error)
	Summary(ctx context.Context) (*services.DatasetSummary, error)
}
