package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtydash/internal/config"
	"realtydash/internal/dataprocessing"
	"realtydash/internal/shared/testutil"
)

// MockDatasetSource is a mock for the DatasetSource interface
type MockDatasetSource struct {
	mock.Mock
}

func (m *MockDatasetSource) Get(ctx context.Context, path string) (*dataprocessing.PipelineResult, error) {
	args := m.Called(ctx, path)
	if res := args.Get(0); res != nil {
		return res.(*dataprocessing.PipelineResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// salesResult runs the pipeline over the sales fixture
func salesResult(t *testing.T) *dataprocessing.PipelineResult {
	t.Helper()
	p := dataprocessing.NewPipeline(dataprocessing.PipelineOptions{
		Load:  dataprocessing.DefaultLoadOptions(),
		Clean: dataprocessing.CleanOptions{CurrencyColumns: []string{config.ColValorTotal, config.ColCuotaInicial}},
	}, nil, nil, nil)

	res, err := p.Run(context.Background(), testutil.WriteSalesCSV(t))
	require.NoError(t, err)
	return res
}

// newSalesService returns a DataService backed by a mock serving the sales fixture
func newSalesService(t *testing.T) (*DataService, *MockDatasetSource) {
	t.Helper()
	source := new(MockDatasetSource)
	source.On("Get", mock.Anything, "Base.txt").Return(salesResult(t), nil)

	logger, _ := testutil.NewTestLogger(t)
	return NewDataService(source, "Base.txt", logger, nil), source
}
