// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the data pipeline so that the
// composition rules live in one place and can be tested without HTTP.
//
// # Available Services
//
//	- DataService: filtered views, aggregations, the EDA summary and the
//	  dashboard payload built from the cached, cleaned dataset
//	- HealthService: liveness, readiness (the dataset loads) and version
//
// # Common Service Pattern
//
// Services receive their dependencies through constructors:
//
//	cache := dataprocessing.NewPipelineCache(pipeline, config.CleaningVersion, logger, metrics)
//	data := services.NewDataService(cache, paths.DataFile, logger, metrics)
//	dash, err := data.Dashboard(ctx, domain.Selection{"ESTADO": {"VENDIDO"}})
//
// # Error Handling
//
// Errors from the pipeline keep their internal/errors type, so handlers can
// map data access failures to 503 and bad columns to 400.
//
// # Testing
//
// Services are tested by mocking the dataset source:
//
//	source := new(MockDatasetSource)
//	source.On("Get", mock.Anything, "Base.txt").Return(result, nil)
//	svc := NewDataService(source, "Base.txt", logger, nil)
package services
