package domain

// Dashboard is the render-ready payload of the interactive dashboard
type Dashboard struct {
	Title     string         `json:"title"`
	Selection Selection      `json:"selection"`
	Filters   []FilterOption `json:"filters"`
	Metrics   []Metric       `json:"metrics"`
	Charts    []ChartConfig  `json:"charts"`
	Pivot     *CrossTab      `json:"pivot,omitempty"`
	Detail    *TableData     `json:"detail"`
}

// FilterOption lists the selectable values of one categorical column
type FilterOption struct {
	Column string   `json:"column"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// Metric is a single headline number
type Metric struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

// ChartConfig defines how to render a chart
type ChartConfig struct {
	ID        string        `json:"id"`
	ChartType string        `json:"chartType"` // "bar", "line", "pie", "box"
	Title     string        `json:"title"`
	Section   string        `json:"section"`
	XAxis     string        `json:"xAxis,omitempty"`
	YAxis     string        `json:"yAxis,omitempty"`
	Series    []ChartSeries `json:"series"`
}

// ChartSeries represents a data series in a chart
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// ChartPoint represents a single data point. Box charts fill Box instead of Value.
type ChartPoint struct {
	Label string    `json:"label"`
	Value float64   `json:"value"`
	Box   *BoxStats `json:"box,omitempty"`
}

// TableData is a plain table for the detail view
type TableData struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}
