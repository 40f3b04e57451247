package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartKind names the chart families the admin dashboards use.
type ChartKind string

const (
	ChartLine     ChartKind = "line"
	ChartBar      ChartKind = "bar"
	ChartPie      ChartKind = "pie"
	ChartDoughnut ChartKind = "doughnut"
	ChartRadar    ChartKind = "radar"
)

// Point is a chart value; Missing points render as gaps.
type Point struct {
	Value   float64 `json:"value"`
	Missing bool    `json:"missing,omitempty"`
}

// PointOf wraps a value.
func PointOf(v float64) Point { return Point{Value: v} }

// GapPoint marks a missing value.
func GapPoint() Point { return Point{Missing: true} }

// ChartSeries is one legend entry.
type ChartSeries struct {
	Name       string  `json:"name"`
	Points     []Point `json:"points"`
	YAxisIndex int     `json:"y_axis_index,omitempty"`
	Dashed     bool    `json:"dashed,omitempty"`
}

// RadarIndicator is one radar axis.
type RadarIndicator struct {
	Name string  `json:"name"`
	Max  float64 `json:"max"`
}

// ChartSpec is the parsed form of a chart widget configuration.
type ChartSpec struct {
	Kind           ChartKind        `json:"kind"`
	Title          string           `json:"title"`
	Subtitle       string           `json:"subtitle,omitempty"`
	Labels         []string         `json:"labels,omitempty"`
	Series         []ChartSeries    `json:"series"`
	Indicators     []RadarIndicator `json:"indicators,omitempty"`
	YAxisName      string           `json:"y_axis_name,omitempty"`
	SecondaryYAxis string           `json:"secondary_y_axis,omitempty"`
	YMin           *float64         `json:"y_min,omitempty"`
	YMax           *float64         `json:"y_max,omitempty"`
	Theme          string           `json:"theme,omitempty"`
}

// ParseChartSpec reads a widget configuration map. Series entries are
// {name, data, y_axis_index?, dashed?}; nil data entries are gaps.
func ParseChartSpec(kind ChartKind, cfg map[string]any, now time.Time) (ChartSpec, error) {
	if cfg == nil {
		cfg = map[string]any{}
	}
	spec := ChartSpec{
		Kind:           ChartKind(strings.ToLower(stringOr(cfg["type"], string(kind)))),
		Title:          stringOr(cfg["title"], "Gráfico"),
		Subtitle:       stringOr(cfg["subtitle"], ""),
		Labels:         sliceOr(cfg["x_axis"], nil),
		YAxisName:      stringOr(cfg["y_axis_name"], ""),
		SecondaryYAxis: stringOr(cfg["secondary_y_axis"], ""),
		Theme:          strings.TrimSpace(stringOr(cfg["theme"], "")),
	}
	for _, item := range mapsOr(cfg["series"]) {
		points := pointsOr(item["data"])
		if len(points) == 0 {
			continue
		}
		spec.Series = append(spec.Series, ChartSeries{
			Name:       stringOr(item["name"], "Serie"),
			Points:     points,
			YAxisIndex: intOr(item["y_axis_index"], 0),
			Dashed:     boolOr(item["dashed"], false),
		})
	}
	if len(spec.Series) == 0 {
		return ChartSpec{}, fmt.Errorf("dashboard: chart %q series is required", spec.Title)
	}
	for _, item := range mapsOr(cfg["indicators"]) {
		spec.Indicators = append(spec.Indicators, RadarIndicator{
			Name: stringOr(item["name"], ""),
			Max:  floatOr(item["max"], 100),
		})
	}
	if days := intOr(cfg["rolling_days"], 0); days > 0 && len(spec.Labels) == 0 {
		spec.Labels = rollingDayLabels(now, days)
	}
	if len(spec.Labels) == 0 {
		spec.Labels = inferredAxisLabels(spec.Series)
	}
	if v, ok := cfg["y_min"]; ok {
		min := floatOr(v, 0)
		spec.YMin = &min
	}
	if v, ok := cfg["y_max"]; ok {
		max := floatOr(v, 0)
		spec.YMax = &max
	}
	return spec, nil
}

func rollingDayLabels(now time.Time, days int) []string {
	labels := make([]string, days)
	for i := 0; i < days; i++ {
		labels[i] = now.AddDate(0, 0, i-days+1).Format("02/01")
	}
	return labels
}

func inferredAxisLabels(series []ChartSeries) []string {
	longest := 0
	for _, s := range series {
		if len(s.Points) > longest {
			longest = len(s.Points)
		}
	}
	labels := make([]string, longest)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i+1)
	}
	return labels
}

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// EChartsProvider renders server-side chart HTML for a chart kind.
type EChartsProvider struct {
	kind          ChartKind
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
	now           func() time.Time
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache; nil disables caching.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.assetsHost = host
	}
}

// WithChartClock overrides the clock used for rolling date labels.
func WithChartClock(now func() time.Time) EChartsProviderOption {
	return func(p *EChartsProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewEChartsProvider builds a provider for a chart kind.
func NewEChartsProvider(kind ChartKind, options ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		kind:  ChartKind(strings.ToLower(string(kind))),
		cache: sharedChartCache,
		theme: types.ThemeWesteros,
		now:   time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Fetch converts widget configuration into go-echarts markup.
func (p *EChartsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	spec, err := ParseChartSpec(p.kind, meta.Instance.Configuration, p.now())
	if err != nil {
		return nil, err
	}
	return p.RenderSpec(meta, spec)
}

// RenderSpec renders a parsed spec, memoized by instance and spec hash.
func (p *EChartsProvider) RenderSpec(meta WidgetContext, spec ChartSpec) (WidgetData, error) {
	if spec.Theme == "" {
		spec.Theme = p.resolveTheme(meta.Viewer)
	}
	renderFn := func() (string, error) {
		return p.render(spec)
	}
	var (
		html string
		err  error
	)
	if p.cache != nil {
		key := fmt.Sprintf("%s:%s:%s:%s", meta.Instance.DefinitionID, meta.Instance.ID, spec.Kind, specHash(spec))
		html, err = p.cache.GetOrRender(key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"chart_html": html,
		"chart_type": string(spec.Kind),
		"chart_id":   ChartElementID(meta.Instance.ID),
		"title":      spec.Title,
		"subtitle":   spec.Subtitle,
		"theme":      spec.Theme,
	}, nil
}

func (p *EChartsProvider) render(spec ChartSpec) (string, error) {
	switch spec.Kind {
	case ChartBar:
		return p.renderBarChart(spec)
	case ChartLine:
		return p.renderLineChart(spec)
	case ChartPie, ChartDoughnut:
		return p.renderPieChart(spec)
	case ChartRadar:
		return p.renderRadarChart(spec)
	default:
		return "", fmt.Errorf("dashboard: unsupported chart type: %s", spec.Kind)
	}
}

func (p *EChartsProvider) renderBarChart(spec ChartSpec) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions(spec)...)
	bar.SetGlobalOptions(yAxisOptions(spec)...)
	bar.SetXAxis(spec.Labels)
	for _, s := range spec.Series {
		bar.AddSeries(s.Name, toBarData(s.Points))
	}
	return renderChart(bar)
}

func (p *EChartsProvider) renderLineChart(spec ChartSpec) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(p.globalChartOptions(spec)...)
	line.SetGlobalOptions(yAxisOptions(spec)...)
	if spec.SecondaryYAxis != "" {
		line.ExtendYAxis(opts.YAxis{Name: spec.SecondaryYAxis, Position: "right"})
	}
	line.SetXAxis(spec.Labels)
	for _, s := range spec.Series {
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), YAxisIndex: s.YAxisIndex}),
		}
		if s.Dashed {
			seriesOpts = append(seriesOpts, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
		}
		line.AddSeries(s.Name, toLineData(s.Points), seriesOpts...)
	}
	return renderChart(line)
}

func (p *EChartsProvider) renderPieChart(spec ChartSpec) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(p.globalChartOptions(spec)...)
	for _, s := range spec.Series {
		var seriesOpts []charts.SeriesOpts
		if spec.Kind == ChartDoughnut {
			seriesOpts = append(seriesOpts, charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}))
		}
		pie.AddSeries(s.Name, toPieData(spec.Labels, s.Points), seriesOpts...)
	}
	return renderChart(pie)
}

func (p *EChartsProvider) renderRadarChart(spec ChartSpec) (string, error) {
	indicators := make([]*opts.Indicator, 0, len(spec.Indicators))
	for _, ind := range spec.Indicators {
		indicators = append(indicators, &opts.Indicator{Name: ind.Name, Max: float32(ind.Max)})
	}
	if len(indicators) == 0 {
		for _, label := range spec.Labels {
			indicators = append(indicators, &opts.Indicator{Name: label, Max: 100})
		}
	}
	radar := charts.NewRadar()
	radar.SetGlobalOptions(p.globalChartOptions(spec)...)
	radar.SetGlobalOptions(charts.WithRadarComponentOpts(opts.RadarComponent{
		Indicator: indicators,
		Shape:     "polygon",
	}))
	for _, s := range spec.Series {
		values := make([]float32, len(s.Points))
		for i, point := range s.Points {
			values[i] = float32(point.Value)
		}
		radar.AddSeries(s.Name, []opts.RadarData{{Name: s.Name, Value: values}})
	}
	return renderChart(radar)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *EChartsProvider) globalChartOptions(spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  spec.Theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func yAxisOptions(spec ChartSpec) []charts.GlobalOpts {
	axis := opts.YAxis{Name: spec.YAxisName}
	if spec.YMin != nil {
		axis.Min = *spec.YMin
	}
	if spec.YMax != nil {
		axis.Max = *spec.YMax
	}
	return []charts.GlobalOpts{charts.WithYAxisOpts(axis)}
}

func (p *EChartsProvider) resolveTheme(viewer ViewerContext) string {
	if p.themeResolver != nil {
		if theme := p.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if p.theme != "" {
		return p.theme
	}
	return types.ThemeWesteros
}

// ChartElementID is the DOM id of a widget's chart container.
func ChartElementID(instanceID string) string {
	return instanceID + "-chart"
}

func toBarData(points []Point) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Value: pointValue(point)}
	}
	return data
}

func toLineData(points []Point) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Value: pointValue(point)}
	}
	return data
}

func toPieData(labels []string, points []Point) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := fmt.Sprintf("Sector %d", i+1)
		if i < len(labels) {
			name = labels[i]
		}
		data[i] = opts.PieData{Name: name, Value: pointValue(point)}
	}
	return data
}

// pointValue renders gaps as "-", which ECharts treats as no data.
func pointValue(point Point) any {
	if point.Missing {
		return "-"
	}
	return point.Value
}
