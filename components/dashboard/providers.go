package dashboard

import (
	"context"
	"fmt"
	"time"
)

// RuntimeDeps holds the live state runtime widgets read from.
type RuntimeDeps struct {
	Metrics   *MetricsBoard
	Activity  *ActivityWindow
	Counters  *CounterBoard
	Previews  *PreviewService
	Formatter Formatter
	Now       func() time.Time
}

// RegisterRuntimeProviders attaches providers for widgets backed by polled state.
func RegisterRuntimeProviders(reg ProviderRegistry, deps RuntimeDeps) error {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Formatter.printer == nil {
		deps.Formatter = defaultFormatter
	}
	providers := map[string]Provider{
		WidgetKPICards:              kpiCardsProvider(deps),
		WidgetAlerts:                alertsProvider(deps),
		WidgetRecommendations:       recommendationsProvider(deps),
		WidgetCounter:               counterProvider(deps),
		WidgetReportRecommendations: ProviderFunc(reportRecommendationsFetch),
	}
	if deps.Activity != nil {
		providers[WidgetRealtimeActivity] = NewActivityChartProvider(deps.Activity, nil)
	}
	if deps.Previews != nil {
		providers[WidgetReportPreview] = reportPreviewProvider(deps.Previews)
	}
	for code, provider := range providers {
		if err := reg.RegisterProvider(code, provider); err != nil {
			return fmt.Errorf("dashboard: register provider %s: %w", code, err)
		}
	}
	return nil
}

func kpiCardsProvider(deps RuntimeDeps) Provider {
	return ProviderFunc(func(_ context.Context, meta WidgetContext) (WidgetData, error) {
		if deps.Metrics == nil {
			return WidgetData{"kpis": []KPIPatch{}, "ready": false}, nil
		}
		patches := deps.Metrics.Patches(deps.Formatter)
		if wanted := sliceOr(meta.Instance.Configuration["kpis"], nil); len(wanted) > 0 {
			patches = filterPatches(patches, wanted)
		}
		return WidgetData{"kpis": patches, "ready": len(patches) > 0}, nil
	})
}

func filterPatches(patches []KPIPatch, ids []string) []KPIPatch {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := patches[:0:0]
	for _, p := range patches {
		if keep[p.ElementID] {
			out = append(out, p)
		}
	}
	return out
}

func alertsProvider(deps RuntimeDeps) Provider {
	return ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) {
		latest, ok := DashboardMetrics{}, false
		if deps.Metrics != nil {
			latest, ok = deps.Metrics.Latest()
		}
		if !ok {
			return WidgetData{"alerts": []Alert{}}, nil
		}
		return WidgetData{"alerts": GenerateAlerts(latest, deps.Now())}, nil
	})
}

func recommendationsProvider(deps RuntimeDeps) Provider {
	return ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) {
		latest, ok := DashboardMetrics{}, false
		if deps.Metrics != nil {
			latest, ok = deps.Metrics.Latest()
		}
		if !ok {
			return WidgetData{"recommendations": []Recommendation{}}, nil
		}
		return WidgetData{"recommendations": GenerateRecommendations(latest)}, nil
	})
}

func counterProvider(deps RuntimeDeps) Provider {
	return ProviderFunc(func(_ context.Context, meta WidgetContext) (WidgetData, error) {
		data := WidgetData{
			"element_id": meta.Instance.ID,
			"label":      stringOr(meta.Instance.Configuration["label"], ""),
			"count":      0,
		}
		if deps.Counters != nil {
			if counter, ok := deps.Counters.Get(meta.Instance.ID); ok {
				data["count"] = counter.Count
				data["updated_at"] = counter.UpdatedAt
			}
		}
		return data, nil
	})
}

func reportRecommendationsFetch(context.Context, WidgetContext) (WidgetData, error) {
	return WidgetData{"recommendations": ReportRecommendations()}, nil
}

func reportPreviewProvider(previews *PreviewService) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		id := stringOr(meta.Instance.Configuration["report_id"], "")
		markup, err := previews.Preview(ctx, id)
		data := WidgetData{"report_id": id, "markup": markup}
		if err != nil {
			data["error"] = err.Error()
		}
		return data, nil
	})
}
