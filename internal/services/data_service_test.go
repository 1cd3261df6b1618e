package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtydash/internal/config"
	"realtydash/internal/dataprocessing"
	apperrors "realtydash/internal/errors"
	"realtydash/internal/infrastructure"
	"realtydash/internal/shared/testutil"
	"realtydash/pkg/contracts/domain"
)

func metricValue(t *testing.T, dash *domain.Dashboard, key string) domain.Metric {
	t.Helper()
	for _, m := range dash.Metrics {
		if m.Key == key {
			return m
		}
	}
	t.Fatalf("metric %q not found", key)
	return domain.Metric{}
}

func chartIDs(dash *domain.Dashboard) []string {
	ids := make([]string, len(dash.Charts))
	for i, c := range dash.Charts {
		ids[i] = c.ID
	}
	return ids
}

func TestDataService_Dashboard(t *testing.T) {
	svc, source := newSalesService(t)

	dash, err := svc.Dashboard(context.Background(), nil)
	require.NoError(t, err)
	source.AssertExpectations(t)

	assert.Equal(t, config.AppName, dash.Title)
	assert.NotNil(t, dash.Selection)

	assert.Equal(t, float64(6), metricValue(t, dash, "units_total").Value)
	assert.Equal(t, float64(4), metricValue(t, dash, "units_sold").Value)
	revenue := metricValue(t, dash, "revenue")
	assert.Equal(t, float64(925000000), revenue.Value)
	assert.Equal(t, "$925,000,000", revenue.Formatted)

	assert.Equal(t, []string{
		"units_per_year", "monthly_trend", "revenue_by_channel",
		"subsidy_usage", "value_by_type", "advisor_ranking",
	}, chartIDs(dash))

	require.Len(t, dash.Filters, 3)
	assert.Equal(t, config.ColEstado, dash.Filters[0].Column)
	assert.Equal(t, []string{"DISPONIBLE", "SEPARADO", "VENDIDO"}, dash.Filters[0].Values)

	require.NotNil(t, dash.Pivot)
	assert.Equal(t, [][]int{{1, 1, 0}, {1, 1, 0}, {1, 0, 1}}, dash.Pivot.Counts)

	require.NotNil(t, dash.Detail)
	assert.Equal(t, config.DetailColumns, dash.Detail.Columns)
	assert.Equal(t, 6, dash.Detail.Total)
	assert.Equal(t, []string{"101", "1", "A", "VENDIDO", "150000000", "Cliente Uno", "ANA"}, dash.Detail.Rows[0])
}

func TestDataService_DashboardCharts(t *testing.T) {
	svc, _ := newSalesService(t)

	dash, err := svc.Dashboard(context.Background(), nil)
	require.NoError(t, err)

	byID := make(map[string]domain.ChartConfig)
	for _, c := range dash.Charts {
		byID[c.ID] = c
	}

	trend := byID["monthly_trend"]
	assert.Equal(t, "line", trend.ChartType)
	labels := make([]string, 0)
	for _, p := range trend.Series[0].Data {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"ENERO", "FEBRERO", "MARZO", domain.MissingLabel}, labels)

	ranking := byID["advisor_ranking"].Series[0].Data
	require.Len(t, ranking, 2)
	assert.Equal(t, domain.ChartPoint{Label: "ANA", Value: 590000000}, ranking[0])

	assert.Equal(t, "pie", byID["subsidy_usage"].ChartType)
	assert.Len(t, byID["subsidy_usage"].Series[0].Data, 2)

	box := byID["value_by_type"].Series[0].Data
	require.Len(t, box, 3)
	require.NotNil(t, box[0].Box)
	assert.Equal(t, float64(152500000), box[0].Box.Median)
}

func TestDataService_DashboardFiltered(t *testing.T) {
	svc, _ := newSalesService(t)
	sel := domain.Selection{config.ColEstado: {config.StatusSold}}

	dash, err := svc.Dashboard(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, float64(4), metricValue(t, dash, "units_total").Value)
	assert.Equal(t, float64(4), metricValue(t, dash, "units_sold").Value)
	assert.Equal(t, float64(745000000), metricValue(t, dash, "revenue").Value)
	assert.Equal(t, sel, dash.Selection)

	// filter options always list the full dataset
	assert.Equal(t, []string{"DISPONIBLE", "SEPARADO", "VENDIDO"}, dash.Filters[0].Values)

	// headline revenue agrees with the aggregation of the same view
	agg, err := svc.Aggregate(context.Background(), AggregateParams{
		Selection: sel,
		Request:   domain.AggregateRequest{Kind: domain.AggregateSum, Key: config.ColTipo, Value: config.ColValorTotal},
	})
	require.NoError(t, err)
	assert.Equal(t, metricValue(t, dash, "revenue").Value, agg.Total())
}

func TestDataService_DashboardOptionalColumns(t *testing.T) {
	ds := domain.NewDataset(
		[]string{config.ColEstado, config.ColValorTotal},
		[]domain.Record{
			{domain.Text("VENDIDO"), domain.Number(100)},
			{domain.Text("DISPONIBLE"), domain.Null()},
		},
	)
	source := new(MockDatasetSource)
	source.On("Get", mock.Anything, "mini.txt").Return(&dataprocessing.PipelineResult{Dataset: ds}, nil)

	svc := NewDataService(source, "mini.txt", nil, infrastructure.NewNoopBusinessMetrics())
	dash, err := svc.Dashboard(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, dash.Charts)
	assert.Nil(t, dash.Pivot)
	assert.Equal(t, []string{config.ColEstado, config.ColValorTotal}, dash.Detail.Columns)
	require.Len(t, dash.Filters, 1)
	assert.Equal(t, float64(100), metricValue(t, dash, "revenue").Value)
}

func TestDataService_RevenueByChannelKeepsEveryChannel(t *testing.T) {
	const channels = 12
	records := make([]domain.Record, 0, channels)
	for i := 1; i <= channels; i++ {
		records = append(records, domain.Record{
			domain.Text(config.StatusSold),
			domain.Text(fmt.Sprintf("CANAL %02d", i)),
			domain.Number(float64(i * 100)),
		})
	}
	ds := domain.NewDataset([]string{config.ColEstado, config.ColMedio, config.ColValorTotal}, records)

	source := new(MockDatasetSource)
	source.On("Get", mock.Anything, "canales.txt").Return(&dataprocessing.PipelineResult{Dataset: ds}, nil)
	svc := NewDataService(source, "canales.txt", nil, infrastructure.NewNoopBusinessMetrics())

	dash, err := svc.Dashboard(context.Background(), nil)
	require.NoError(t, err)

	var chart *domain.ChartConfig
	for i := range dash.Charts {
		if dash.Charts[i].ID == "revenue_by_channel" {
			chart = &dash.Charts[i]
		}
	}
	require.NotNil(t, chart)

	points := chart.Series[0].Data
	require.Len(t, points, channels)
	assert.Equal(t, domain.ChartPoint{Label: "CANAL 01", Value: 100}, points[0])
	assert.Equal(t, domain.ChartPoint{Label: "CANAL 12", Value: 1200}, points[channels-1])

	var total float64
	for _, p := range points {
		total += p.Value
	}
	assert.Equal(t, metricValue(t, dash, "revenue").Value, total)
}

func TestDataService_LoadFailure(t *testing.T) {
	loadErr := apperrors.NewDataAccessError("cannot open data file", errors.New("no such file"))
	source := new(MockDatasetSource)
	source.On("Get", mock.Anything, "Base.txt").Return(nil, loadErr)

	logger, handler := testutil.NewTestLogger(t)
	svc := NewDataService(source, "Base.txt", logger, nil)

	_, err := svc.Dashboard(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataAccess))
	assert.True(t, handler.ContainsMessage("failed to load dataset"))
}

func TestDataService_Aggregate(t *testing.T) {
	svc, _ := newSalesService(t)

	tests := []struct {
		name    string
		params  AggregateParams
		want    map[string]float64
		wantErr apperrors.ErrorType
	}{
		{
			name:   "count per year",
			params: AggregateParams{Request: domain.AggregateRequest{Kind: domain.AggregateCount, Key: config.ColAnio}},
			want:   map[string]float64{"2023": 3, "2024": 3},
		},
		{
			name: "sold revenue per advisor",
			params: AggregateParams{
				Request:     domain.AggregateRequest{Kind: domain.AggregateSum, Key: config.ColAsesor, Value: config.ColValorTotal},
				WhereColumn: config.ColEstado,
				WhereValue:  config.StatusSold,
			},
			want: map[string]float64{"ANA": 590000000, "LUIS": 155000000},
		},
		{
			name: "selection applies first",
			params: AggregateParams{
				Selection: domain.Selection{config.ColTipo: {"B"}},
				Request:   domain.AggregateRequest{Kind: domain.AggregateCount, Key: config.ColEstado},
			},
			want: map[string]float64{"DISPONIBLE": 1, "VENDIDO": 1},
		},
		{
			name:    "unknown column",
			params:  AggregateParams{Request: domain.AggregateRequest{Kind: domain.AggregateCount, Key: "COLOR"}},
			wantErr: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Aggregate(context.Background(), tt.params)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Map())
		})
	}
}

func TestDataService_CrossTab(t *testing.T) {
	svc, _ := newSalesService(t)

	ct, err := svc.CrossTab(context.Background(), domain.Selection{config.ColEstado: {config.StatusSold}}, config.ColPiso, config.ColTipo)
	require.NoError(t, err)
	assert.Equal(t, 1, ct.Count("3", "C"))
	assert.Equal(t, 0, ct.Count("1", "B"))
}

func TestDataService_DatasetPage(t *testing.T) {
	svc, _ := newSalesService(t)
	ctx := context.Background()

	page, err := svc.DatasetPage(ctx, nil, []string{config.ColApto, config.ColTipo}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{config.ColApto, config.ColTipo}, page.Columns)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, domain.Number(102), page.Rows[0][0])

	past, err := svc.DatasetPage(ctx, nil, nil, 0, 50)
	require.NoError(t, err)
	assert.Empty(t, past.Rows)
	assert.Equal(t, config.DefaultPageLimit, past.Limit)

	_, err = svc.DatasetPage(ctx, nil, []string{"COLOR"}, 10, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestDataService_Summary(t *testing.T) {
	svc, _ := newSalesService(t)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Rows)
	assert.Equal(t, 1, summary.Report.RowsPruned)
	assert.Len(t, summary.Info, 14)
	assert.Len(t, summary.Statistics, 14)
	assert.Equal(t, float64(2), summary.Nulls.Map()[config.ColCuotaInicial])

	require.Contains(t, summary.Correlation.Columns, config.ColValorTotal)
	i := indexOf(summary.Correlation.Columns, config.ColValorTotal)
	require.NotNil(t, summary.Correlation.Values[i][i])
	assert.InDelta(t, 1.0, *summary.Correlation.Values[i][i], 1e-9)
}

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return -1
}

func TestDataService_Workbook(t *testing.T) {
	svc, _ := newSalesService(t)

	wb, err := svc.Workbook(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, wb.Metrics, 3)
	assert.NotNil(t, wb.Pivot)
	assert.Equal(t, 6, wb.Detail.Total)
}

func TestPaginate(t *testing.T) {
	start, end, limit := paginate(10, 0, 0)
	assert.Equal(t, []int{0, 10, config.DefaultPageLimit}, []int{start, end, limit})

	start, end, limit = paginate(10000, 9000, 0)
	assert.Equal(t, []int{0, config.MaxPageLimit, config.MaxPageLimit}, []int{start, end, limit})

	start, end, _ = paginate(5, 2, -3)
	assert.Equal(t, []int{0, 2}, []int{start, end})
}
