// Package api contains the HTTP request and response contracts of the dashboard API.
package api

import (
	"realtydash/pkg/contracts/domain"
)

// PaginationRequest represents common pagination parameters
type PaginationRequest struct {
	Limit  int `json:"limit" form:"limit" validate:"min=0,max=5000"`
	Offset int `json:"offset" form:"offset" validate:"min=0"`
}

// DatasetRequest asks for filtered rows of the cleaned dataset
type DatasetRequest struct {
	PaginationRequest
	Selection domain.Selection `json:"selection"`
	Columns   []string         `json:"columns,omitempty"`
}

// AggregateQuery is the query string form of an aggregation request
type AggregateQuery struct {
	Kind  string `form:"kind" validate:"required,oneof=count sum mean box"`
	Key   string `form:"key" validate:"required,column"`
	Value string `form:"value" validate:"required_unless=Kind count"`
	Order string `form:"order" validate:"omitempty,oneof=sorted first_seen value_desc months"`

	// WhereColumn and WhereValue restrict rows before grouping
	WhereColumn string `form:"where_column" validate:"required_with=WhereValue"`
	WhereValue  string `form:"where_value" validate:"required_with=WhereColumn"`
}

// ToDomain converts the query into a domain request
func (q AggregateQuery) ToDomain() domain.AggregateRequest {
	return domain.AggregateRequest{
		Kind:  domain.AggregateKind(q.Kind),
		Key:   q.Key,
		Value: q.Value,
		Order: domain.GroupOrder(q.Order),
	}
}

// CrossTabQuery asks for a two-column co-occurrence matrix
type CrossTabQuery struct {
	Row       string `form:"row" validate:"required,column"`
	Col       string `form:"col" validate:"required,column,nefield=Row"`
	Transpose bool   `form:"transpose"`
}

// DashboardRequest is the JSON body of POST /api/data/dashboard and of WebSocket requests
type DashboardRequest struct {
	Selection domain.Selection `json:"selection"`
}
