package dashboard

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"
)

// ReportFormat enumerates the export formats reports are generated in.
type ReportFormat string

const (
	FormatPDF   ReportFormat = "PDF"
	FormatExcel ReportFormat = "EXCEL"
	FormatJSON  ReportFormat = "JSON"
	FormatCSV   ReportFormat = "CSV"
	FormatHTML  ReportFormat = "HTML"
)

// ParseReportFormat normalizes a format label; unknown labels are kept uppercased.
func ParseReportFormat(value string) ReportFormat {
	return ReportFormat(strings.ToUpper(strings.TrimSpace(value)))
}

// Known reports whether the format is one of the supported enum values.
func (f ReportFormat) Known() bool {
	switch f {
	case FormatPDF, FormatExcel, FormatJSON, FormatCSV, FormatHTML:
		return true
	}
	return false
}

// Icon returns the preview icon for the format.
func (f ReportFormat) Icon() string {
	switch f {
	case FormatPDF:
		return "📄"
	case FormatExcel:
		return "📊"
	case FormatJSON:
		return "🔧"
	case FormatCSV:
		return "📋"
	case FormatHTML:
		return "🌐"
	default:
		return "📁"
	}
}

// ReportPreview is the report metadata shown in the preview panel.
type ReportPreview struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Format      ReportFormat `json:"format"`
	GeneratedAt time.Time    `json:"generated_at"`
	SizeLabel   string       `json:"size_label"`
	DataPreview string       `json:"data_preview,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// DateLabel renders the generation date as dd/mm/yyyy.
func (r ReportPreview) DateLabel() string {
	if r.GeneratedAt.IsZero() {
		return ""
	}
	return r.GeneratedAt.Format("02/01/2006")
}

// ReportSource fetches report metadata from the admin.
type ReportSource interface {
	FetchReport(ctx context.Context, id string) (ReportPreview, error)
}

// ReportAnalysis holds the quality scores shown in the analysis modal.
type ReportAnalysis struct {
	ReportID     string       `json:"report_id"`
	Type         string       `json:"type"`
	Format       ReportFormat `json:"format"`
	SizeLabel    string       `json:"size_label"`
	GeneratedAt  time.Time    `json:"generated_at"`
	Completeness int          `json:"completeness"`
	Accuracy     int          `json:"accuracy"`
	Consistency  int          `json:"consistency"`
	Quality      int          `json:"quality"`
}

// AnalyzeReport scores a report from its metadata: completeness in 80-100 by
// populated fields, accuracy 100 for supported formats (85 otherwise),
// consistency 100 when the generation date is set and not in the future
// (90 otherwise). Quality is the rounded mean.
func AnalyzeReport(r ReportPreview, now time.Time) ReportAnalysis {
	fields := []bool{
		r.Type != "",
		r.Format != "",
		!r.GeneratedAt.IsZero(),
		r.SizeLabel != "",
		r.DataPreview != "",
	}
	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	completeness := 80 + 20*filled/len(fields)
	accuracy := 85
	if r.Format.Known() {
		accuracy = 100
	}
	consistency := 90
	if !r.GeneratedAt.IsZero() && !r.GeneratedAt.After(now) {
		consistency = 100
	}
	quality := int(math.Round(float64(completeness+accuracy+consistency) / 3))
	return ReportAnalysis{
		ReportID:     r.ID,
		Type:         r.Type,
		Format:       r.Format,
		SizeLabel:    r.SizeLabel,
		GeneratedAt:  r.GeneratedAt,
		Completeness: completeness,
		Accuracy:     accuracy,
		Consistency:  consistency,
		Quality:      quality,
	}
}

// FormatUsage counts how often each format appears among cached previews.
type FormatUsage struct {
	Format ReportFormat `json:"format"`
	Icon   string       `json:"icon"`
	Count  int          `json:"count"`
}

// AnalyzeUsagePatterns ranks formats by frequency, most used first.
func AnalyzeUsagePatterns(entries []PreviewEntry) []FormatUsage {
	counts := map[ReportFormat]int{}
	for _, entry := range entries {
		if entry.Report.Format == "" {
			continue
		}
		counts[entry.Report.Format]++
	}
	usage := make([]FormatUsage, 0, len(counts))
	for format, count := range counts {
		usage = append(usage, FormatUsage{Format: format, Icon: format.Icon(), Count: count})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Count != usage[j].Count {
			return usage[i].Count > usage[j].Count
		}
		return usage[i].Format < usage[j].Format
	})
	return usage
}

// PreviewServiceOptions wires the preview service.
type PreviewServiceOptions struct {
	Source    ReportSource
	Cache     *PreviewCache
	Fragments *FragmentRenderer
	Telemetry Telemetry
	Now       func() time.Time
}

// PreviewService renders report previews through the preview cache.
type PreviewService struct {
	source    ReportSource
	cache     *PreviewCache
	fragments *FragmentRenderer
	telemetry Telemetry
	now       func() time.Time
}

// NewPreviewService builds a service with an unbounded cache when none is given.
func NewPreviewService(opts PreviewServiceOptions) *PreviewService {
	if opts.Cache == nil {
		opts.Cache = NewPreviewCache(PreviewCacheOptions{})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &PreviewService{
		source:    opts.Source,
		cache:     opts.Cache,
		fragments: opts.Fragments,
		telemetry: normalizeTelemetry(opts.Telemetry),
		now:       opts.Now,
	}
}

// Cache exposes the underlying preview cache.
func (s *PreviewService) Cache() *PreviewCache {
	return s.cache
}

// Preview returns preview markup for id, loading it on first use. On failure
// the returned markup is an inline error placeholder and nothing is cached.
func (s *PreviewService) Preview(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.fragments.PreviewError(previewLoadError), ErrReportIDRequired
	}
	entry, err := s.cache.GetOrLoad(ctx, id, s.load)
	if err != nil {
		s.telemetry.Record(ctx, EventPreviewError, map[string]any{
			"report_id": id,
			"error":     err.Error(),
		})
		var payloadErr *ReportPayloadError
		if errors.As(err, &payloadErr) {
			return s.fragments.PreviewError("Error: " + payloadErr.Message), err
		}
		return s.fragments.PreviewError(previewLoadError), err
	}
	return entry.Markup, nil
}

const previewLoadError = "Error al cargar vista previa"

func (s *PreviewService) load(ctx context.Context, id string) (PreviewEntry, error) {
	if s.source == nil {
		return PreviewEntry{}, errors.New("dashboard: report source not configured")
	}
	report, err := s.source.FetchReport(ctx, id)
	if err != nil {
		return PreviewEntry{}, err
	}
	if report.Error != "" {
		return PreviewEntry{}, &ReportPayloadError{ReportID: id, Message: report.Error}
	}
	if report.ID == "" {
		report.ID = id
	}
	markup, err := s.fragments.ReportPreview(report)
	if err != nil {
		return PreviewEntry{}, err
	}
	s.telemetry.Record(ctx, EventPreviewLoad, map[string]any{
		"report_id": id,
		"format":    string(report.Format),
	})
	return PreviewEntry{Markup: markup, Report: report, StoredAt: s.now()}, nil
}

// Analyze fetches the report and scores it.
func (s *PreviewService) Analyze(ctx context.Context, id string) (ReportAnalysis, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ReportAnalysis{}, ErrReportIDRequired
	}
	if s.source == nil {
		return ReportAnalysis{}, errors.New("dashboard: report source not configured")
	}
	report, err := s.source.FetchReport(ctx, id)
	if err != nil {
		return ReportAnalysis{}, err
	}
	if report.Error != "" {
		return ReportAnalysis{}, &ReportPayloadError{ReportID: id, Message: report.Error}
	}
	if report.ID == "" {
		report.ID = id
	}
	return AnalyzeReport(report, s.now()), nil
}

// Invalidate drops a cached preview after the report was regenerated.
func (s *PreviewService) Invalidate(id string) {
	s.cache.Forget(id)
}

// UsagePatterns ranks formats over the cached previews.
func (s *PreviewService) UsagePatterns() []FormatUsage {
	return AnalyzeUsagePatterns(s.cache.Snapshot())
}

// ReportTable lists cached previews as a sortable, searchable table.
func (s *PreviewService) ReportTable() *Table {
	table := NewTable("ID", "Tipo", "Formato", "Fecha", "Tamaño")
	for _, entry := range s.cache.Snapshot() {
		r := entry.Report
		table.AddRow(entry.ID, r.Type, string(r.Format), r.DateLabel(), r.SizeLabel)
	}
	return table
}
