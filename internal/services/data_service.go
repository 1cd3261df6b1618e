package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"realtydash/internal/config"
	"realtydash/internal/dataprocessing"
	"realtydash/internal/exporter"
	"realtydash/internal/infrastructure"
	"realtydash/pkg/contracts/domain"
)

// DatasetSource hands out the cleaned dataset for a path.
// *dataprocessing.DatasetCache satisfies it.
type DatasetSource interface {
	Get(ctx context.Context, path string) (*dataprocessing.PipelineResult, error)
}

// AggregateParams is an aggregation over a filtered view. WhereColumn and
// WhereValue add an equality predicate on top of the selection.
type AggregateParams struct {
	Selection   domain.Selection
	Request     domain.AggregateRequest
	WhereColumn string
	WhereValue  string
}

// DatasetSummary is the exploratory report of a dataset
type DatasetSummary struct {
	Source      string                     `json:"source"`
	Rows        int                        `json:"rows"`
	Info        []domain.ColumnInfo        `json:"info"`
	Statistics  []domain.ColumnSummary     `json:"statistics"`
	Nulls       domain.AggregationResult   `json:"nulls"`
	Correlation domain.CorrelationMatrix   `json:"correlation"`
	Report      dataprocessing.CleanReport `json:"report"`
}

// DataService composes the cleaned dataset into filtered views,
// aggregations and dashboards
type DataService struct {
	source  DatasetSource
	path    string
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// NewDataService creates a data service reading path through source
func NewDataService(source DatasetSource, path string, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "data_service"))

	logger.Info("DataService initialized", slog.String("data_file", path))

	return &DataService{
		source:  source,
		path:    path,
		logger:  logger,
		tracer:  otel.Tracer(infrastructure.InstrumentationName),
		metrics: metrics,
	}
}

// LoadResult returns the cleaned dataset together with its clean report
func (s *DataService) LoadResult(ctx context.Context) (*dataprocessing.PipelineResult, error) {
	res, err := s.source.Get(ctx, s.path)
	if err != nil {
		logDataError(ctx, s.logger, "load", "failed to load dataset",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return nil, err
	}
	return res, nil
}

// CleanedDataset returns the full cleaned dataset
func (s *DataService) CleanedDataset(ctx context.Context) (*domain.Dataset, error) {
	res, err := s.LoadResult(ctx)
	if err != nil {
		return nil, err
	}
	return res.Dataset, nil
}

// FilteredDataset returns the records matching sel
func (s *DataService) FilteredDataset(ctx context.Context, sel domain.Selection) (*domain.Dataset, error) {
	ds, err := s.CleanedDataset(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.Filter(ds, sel)
}

// Aggregate groups the filtered view as described by p
func (s *DataService) Aggregate(ctx context.Context, p AggregateParams) (domain.AggregationResult, error) {
	ds, err := s.FilteredDataset(ctx, p.Selection)
	if err != nil {
		return domain.AggregationResult{}, err
	}
	if p.WhereColumn != "" {
		if ds, err = dataprocessing.Where(ds, p.WhereColumn, p.WhereValue); err != nil {
			return domain.AggregationResult{}, err
		}
	}
	return dataprocessing.Aggregate(ds, p.Request)
}

// CrossTab counts co-occurrences of two columns in the filtered view
func (s *DataService) CrossTab(ctx context.Context, sel domain.Selection, row, col string) (domain.CrossTab, error) {
	ds, err := s.FilteredDataset(ctx, sel)
	if err != nil {
		return domain.CrossTab{}, err
	}
	return dataprocessing.CrossTab(ds, row, col)
}

// Summary builds the exploratory report of the cleaned dataset
func (s *DataService) Summary(ctx context.Context) (*DatasetSummary, error) {
	res, err := s.LoadResult(ctx)
	if err != nil {
		return nil, err
	}
	stats := dataprocessing.Describe(res.Dataset)
	var numeric []string
	for _, c := range stats {
		if c.Numeric {
			numeric = append(numeric, c.Column)
		}
	}
	corr, err := dataprocessing.Correlation(res.Dataset, numeric)
	if err != nil {
		return nil, err
	}

	return &DatasetSummary{
		Source:      res.Source,
		Rows:        res.Dataset.Len(),
		Info:        dataprocessing.Info(res.Dataset),
		Statistics:  stats,
		Nulls:       dataprocessing.NullCounts(res.Dataset),
		Correlation: corr,
		Report:      res.Report,
	}, nil
}

// Dashboard composes metrics, charts, the pivot and the detail table for sel.
// Charts whose columns are absent from the sheet are left out.
func (s *DataService) Dashboard(ctx context.Context, sel domain.Selection) (*domain.Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.build")
	defer span.End()

	full, err := s.CleanedDataset(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	ds, err := dataprocessing.Filter(full, sel)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("dashboard.rows", ds.Len()))

	if sel == nil {
		sel = domain.Selection{}
	}
	dash := &domain.Dashboard{
		Title:     config.AppName,
		Selection: sel,
		Filters:   filterOptions(full),
		Metrics:   headlineMetrics(ds),
		Charts:    make([]domain.ChartConfig, 0, 6),
		Detail:    detailTable(ds),
	}

	for _, build := range chartBuilders {
		chart, ok, err := build(ds)
		if err != nil {
			return nil, fmt.Errorf("build chart: %w", err)
		}
		if ok {
			dash.Charts = append(dash.Charts, chart)
		}
	}

	if ds.HasColumn(config.ColPiso) && ds.HasColumn(config.ColTipo) {
		pivot, err := dataprocessing.CrossTab(ds, config.ColPiso, config.ColTipo)
		if err != nil {
			return nil, err
		}
		dash.Pivot = &pivot
	}

	if s.metrics != nil {
		s.metrics.DashboardBuildsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("filtered", !sel.IsEmpty())))
	}
	s.logger.DebugContext(ctx, "dashboard built",
		slog.Int("rows", ds.Len()),
		slog.Int("charts", len(dash.Charts)))

	return dash, nil
}

// Workbook returns the export content of the dashboard for sel
func (s *DataService) Workbook(ctx context.Context, sel domain.Selection) (exporter.WorkbookData, error) {
	dash, err := s.Dashboard(ctx, sel)
	if err != nil {
		return exporter.WorkbookData{}, err
	}
	return exporter.WorkbookData{
		Metrics: dash.Metrics,
		Detail:  dash.Detail,
		Pivot:   dash.Pivot,
	}, nil
}

func filterOptions(ds *domain.Dataset) []domain.FilterOption {
	options := make([]domain.FilterOption, 0, len(config.FilterColumns))
	for _, column := range config.FilterColumns {
		values, err := dataprocessing.DistinctValues(ds, column)
		if err != nil {
			continue
		}
		options = append(options, domain.FilterOption{Column: column, Label: column, Values: values})
	}
	return options
}

func headlineMetrics(ds *domain.Dataset) []domain.Metric {
	total := float64(ds.Len())
	metrics := []domain.Metric{
		{Key: "units_total", Label: "Total unidades", Value: total, Formatted: exporter.FormatThousands(total)},
	}

	if ds.HasColumn(config.ColEstado) {
		sold, _ := dataprocessing.Where(ds, config.ColEstado, config.StatusSold)
		n := float64(sold.Len())
		metrics = append(metrics, domain.Metric{
			Key: "units_sold", Label: "Unidades vendidas", Value: n, Formatted: exporter.FormatThousands(n),
		})
	}

	if values, ok := ds.Column(config.ColValorTotal); ok {
		var revenue float64
		for _, v := range values {
			if f, ok := v.Float(); ok {
				revenue += f
			}
		}
		metrics = append(metrics, domain.Metric{
			Key: "revenue", Label: "Ingresos estimados", Value: revenue, Formatted: exporter.FormatCurrency(revenue),
		})
	}
	return metrics
}

func detailTable(ds *domain.Dataset) *domain.TableData {
	view := ds.Project(config.DetailColumns)
	rows := make([][]string, view.Len())
	for i, rec := range view.Records() {
		rows[i] = exporter.RecordStrings(rec)
	}
	return &domain.TableData{
		Title:   "Detalle de unidades",
		Columns: view.Columns(),
		Rows:    rows,
		Total:   view.Len(),
	}
}

type chartBuilder func(ds *domain.Dataset) (domain.ChartConfig, bool, error)

var chartBuilders = []chartBuilder{
	unitsPerYearChart,
	monthlyTrendChart,
	revenueByChannelChart,
	subsidyChart,
	valueByTypeChart,
	advisorRankingChart,
}

func unitsPerYearChart(ds *domain.Dataset) (domain.ChartConfig, bool, error) {
	if !ds.HasColumn(config.ColAnio) {
		return domain.ChartConfig{}, false, nil
	}
	res, err := dataprocessing.CountBy(ds, config.ColAnio, domain.OrderSorted)
	if err != nil {
		return domain.ChartConfig{}, false, err
	}
	return barChart("units_per_year", "Unidades por año", "Ventas", config.ColAnio, "Unidades", res), true, nil
}

func monthlyTrendChart(ds *domain.Dataset) (domain.ChartConfig, bool, error) {
	if !ds.HasColumn(config.ColMesVenta) {
		return domain.ChartConfig{}, false, nil
	}
	res, err := dataprocessing.CountBy(ds, config.ColMesVenta, domain.OrderMonths)
	if err != nil {
		return domain.ChartConfig{}, false, err
	}
	chart := barChart("monthly_trend", "Tendencia mensual", "Ventas", config.ColMesVenta, "Unidades", res)
	chart.ChartType = "line"
	return chart, true, nil
}

func revenueByChannelChart(ds *domain.Dataset) (domain.ChartConfig, bool, error) {
	if !ds.HasColumn(config.ColMedio) || !ds.HasColumn(config.ColValorTotal) {
		return domain.ChartConfig{}, false, nil
	}
	res, err := dataprocessing.SumBy(ds, config.ColMedio, config.ColValorTotal, domain.OrderSorted)
	if err != nil {
		return domain.ChartConfig{}, false, err
	}
	return barChart("revenue_by_channel", "Ingresos por medio de publicidad", "Marketing", config.ColMedio, config.ColValorTotal, res), true, nil
}

func subsidyChart(ds *domain.Dataset) (domain.ChartConfig, bool, error) {
	if !ds.HasColumn(config.ColAplicaSubsidio) {
		return domain.ChartConfig{}, false, nil
	}
	res, err := dataprocessing.ValueCounts(ds, config.ColAplicaSubsidio, 0)
	if err != nil {
		return domain.ChartConfig{}, false, err
	}
	chart := barChart("subsidy_usage", "Uso de subsidio", "Clientes", config.ColAplicaSubsidio, "Unidades", res)
	chart.ChartType = "pie"
	return chart, true, nil
}

func valueByTypeChart(ds *domain.Dataset) (domain.ChartConfig, bool, error) {
	if !ds.HasColumn(config.ColTipo) || !ds.HasColumn(config.ColValorTotal) {
		return domain.ChartConfig{}, false, nil
	}
	res, err := dataprocessing.BoxBy(ds, config.ColTipo, config.ColValorTotal, domain.OrderSorted)
	if err != nil {
		return domain.ChartConfig{}, false, err
	}

	points := make([]domain.ChartPoint, 0, len(res.Groups))
	for _, g := range res.Groups {
		if g.Box == nil {
			continue
		}
		points = append(points, domain.ChartPoint{Label: g.Key, Value: g.Value, Box: g.Box})
	}
	return domain.ChartConfig{
		ID:        "value_by_type",
		ChartType: "box",
		Title:     "Valor por tipo de unidad",
		Section:   "Producto",
		XAxis:     config.ColTipo,
		YAxis:     config.ColValorTotal,
		Series:    []domain.ChartSeries{{Name: config.ColValorTotal, Data: points}},
	}, true, nil
}

func advisorRankingChart(ds *domain.Dataset) (domain.ChartConfig, bool, error) {
	for _, c := range []string{config.ColEstado, config.ColAsesor, config.ColValorTotal} {
		if !ds.HasColumn(c) {
			return domain.ChartConfig{}, false, nil
		}
	}
	res, err := dataprocessing.FilteredSumBy(ds, config.ColEstado, config.StatusSold,
		config.ColAsesor, config.ColValorTotal, domain.OrderValueDesc)
	if err != nil {
		return domain.ChartConfig{}, false, err
	}
	return barChart("advisor_ranking", "Ranking de asesores", "Equipo", config.ColAsesor, config.ColValorTotal, res), true, nil
}

func barChart(id, title, section, xAxis, yAxis string, res domain.AggregationResult) domain.ChartConfig {
	points := make([]domain.ChartPoint, len(res.Groups))
	for i, g := range res.Groups {
		points[i] = domain.ChartPoint{Label: g.Key, Value: g.Value}
	}
	return domain.ChartConfig{
		ID:        id,
		ChartType: "bar",
		Title:     title,
		Section:   section,
		XAxis:     xAxis,
		YAxis:     yAxis,
		Series:    []domain.ChartSeries{{Name: yAxis, Data: points}},
	}
}

// paginate returns the [start, end) window of n items and the effective
// limit. A zero limit selects the default page size.
func paginate(n, limit, offset int) (int, int, int) {
	if limit <= 0 {
		limit = config.DefaultPageLimit
	}
	if limit > config.MaxPageLimit {
		limit = config.MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end, limit
}

// Page is a window of dataset rows
type Page struct {
	Columns []string        `json:"columns"`
	Rows    []domain.Record `json:"rows"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// DatasetPage returns a window of the filtered view, optionally projected to columns
func (s *DataService) DatasetPage(ctx context.Context, sel domain.Selection, columns []string, limit, offset int) (*Page, error) {
	ds, err := s.FilteredDataset(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		for _, c := range columns {
			if !ds.HasColumn(c) {
				return nil, invalidInput(fmt.Sprintf("unknown column %q", c))
			}
		}
		ds = ds.Project(columns)
	}

	start, end, limit := paginate(ds.Len(), limit, offset)
	rows := append([]domain.Record{}, ds.Records()[start:end]...)
	return &Page{
		Columns: ds.Columns(),
		Rows:    rows,
		Total:   ds.Len(),
		Limit:   limit,
		Offset:  start,
	}, nil
}
