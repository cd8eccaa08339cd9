// Package report summarizes batch matching runs as terminal tables and HTML
// charts.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/astmatch/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/astmatch/pkg/alg/stats"
	"github.com/Sumatoshi-tech/astmatch/pkg/engine"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
)

// Case statuses.
const (
	StatusMatched  = "matched"
	StatusOK       = "ok"
	StatusMismatch = "mismatch"
)

const (
	chartHeight = "500px"
	xAxisRotate = 45
	barStack    = "mappings"
)

// Row is the summary of one case.
type Row struct {
	Name     string
	Status   string
	Facts    int
	Skipped  int
	Mappings int
	// Multi counts nodes mapped to more than one counterpart, on either side.
	Multi    int
	Unmapped int
	PerKind  map[model.Kind]int
	Duration time.Duration
}

// Summary holds one row per case plus column totals.
type Summary struct {
	Rows  []Row
	Total Row
}

// New creates an empty summary.
func New() *Summary {
	return &Summary{Total: Row{Name: "total", PerKind: make(map[model.Kind]int)}}
}

// Add appends the row for res under name.
func (s *Summary) Add(name, status string, res *engine.Result) {
	row := Row{
		Name:     name,
		Status:   status,
		Facts:    res.Facts,
		Skipped:  res.Skipped,
		Mappings: res.Mappings(),
		Multi:    res.Stats.MultiSrc + res.Stats.MultiDst,
		Unmapped: res.Stats.UnmappedSrc + res.Stats.UnmappedDst,
		PerKind:  res.PerKind,
		Duration: res.Duration,
	}

	s.Rows = append(s.Rows, row)

	s.Total.Facts += row.Facts
	s.Total.Skipped += row.Skipped
	s.Total.Mappings += row.Mappings
	s.Total.Multi += row.Multi
	s.Total.Unmapped += row.Unmapped
	s.Total.Duration += row.Duration

	mapx.MergeAdditive(s.Total.PerKind, row.PerKind)
}

// Latency returns the median and 95th percentile per-case match duration.
func (s *Summary) Latency() (p50, p95 time.Duration) {
	durations := make([]time.Duration, len(s.Rows))
	for i, row := range s.Rows {
		durations[i] = row.Duration
	}

	return stats.DurationPercentile(durations, stats.PercentileMedian),
		stats.DurationPercentile(durations, stats.PercentileP95)
}

// Mismatches counts rows with StatusMismatch.
func (s *Summary) Mismatches() int {
	var n int

	for _, row := range s.Rows {
		if row.Status == StatusMismatch {
			n++
		}
	}

	return n
}

// WriteTable renders the summary as a table.
func (s *Summary) WriteTable(w io.Writer) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	header := table.Row{"Case", "Status", "Facts", "Skipped"}
	for _, kind := range model.Kinds() {
		header = append(header, string(kind))
	}

	header = append(header, "Mappings", "Multi", "Unmapped", "Duration")
	tbl.AppendHeader(header)

	for _, row := range s.Rows {
		tbl.AppendRow(s.cells(row))
	}

	tbl.AppendFooter(s.cells(s.Total))

	numeric := make([]table.ColumnConfig, 0, len(header))
	for i := 3; i <= len(header); i++ {
		numeric = append(numeric, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}

	tbl.SetColumnConfigs(numeric)

	if len(s.Rows) > 0 {
		p50, p95 := s.Latency()
		tbl.SetCaption("%d cases, p50 %s, p95 %s", len(s.Rows), p50.Round(time.Microsecond), p95.Round(time.Microsecond))
	}

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

func (s *Summary) cells(row Row) table.Row {
	out := table.Row{row.Name, row.Status, humanize.Comma(int64(row.Facts)), humanize.Comma(int64(row.Skipped))}

	for _, kind := range model.Kinds() {
		out = append(out, humanize.Comma(int64(row.PerKind[kind])))
	}

	return append(out,
		humanize.Comma(int64(row.Mappings)),
		humanize.Comma(int64(row.Multi)),
		humanize.Comma(int64(row.Unmapped)),
		row.Duration.Round(time.Microsecond).String())
}

// WritePlot renders a stacked bar chart of mappings per case and fact kind
// as a standalone HTML page.
func (s *Summary) WritePlot(w io.Writer) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "astmatch", Width: "100%", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Mappings per case",
			Subtitle: humanize.Comma(int64(s.Total.Mappings)) + " mappings over " + humanize.Comma(int64(len(s.Rows))) + " cases",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"}}),
	)

	labels := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		labels[i] = row.Name
	}

	bar.SetXAxis(labels)

	for _, kind := range model.Kinds() {
		data := make([]opts.BarData, len(s.Rows))
		for i, row := range s.Rows {
			data[i] = opts.BarData{Value: row.PerKind[kind]}
		}

		bar.AddSeries(string(kind), data, charts.WithBarChartOpts(opts.BarChart{Stack: barStack}))
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}
