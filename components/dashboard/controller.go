package dashboard

import (
	"context"
	"fmt"
	"html"
	"io"
	"strconv"
)

// ControllerOptions wires the page controller.
type ControllerOptions struct {
	Service  *Service
	Renderer Renderer
	Template string
}

// Controller renders the dashboard page and its JSON layout.
type Controller struct {
	service   *Service
	renderer  Renderer
	fragments *FragmentRenderer
	template  string
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = "dashboard"
	}
	return &Controller{
		service:   opts.Service,
		renderer:  opts.Renderer,
		fragments: NewFragmentRenderer(opts.Renderer),
		template:  opts.Template,
	}
}

// Layout resolves the layout for a viewer.
func (c *Controller) Layout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	if c.service == nil {
		return Layout{Areas: map[string][]WidgetInstance{}}, nil
	}
	return c.service.ConfigureLayout(ctx, viewer)
}

// LayoutPayload returns the template/JSON view of the layout with per-widget HTML.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	layout, err := c.Layout(ctx, viewer)
	if err != nil {
		return nil, err
	}
	var areas []map[string]any
	if c.service != nil {
		for _, area := range c.service.Areas() {
			widgets := make([]map[string]any, 0, len(layout.Areas[area.Code]))
			for _, inst := range layout.Areas[area.Code] {
				widgets = append(widgets, map[string]any{
					"id":         inst.ID,
					"definition": inst.DefinitionID,
					"data":       inst.Metadata["data"],
					"error":      inst.Metadata["error"],
					"html":       c.WidgetHTML(inst),
				})
			}
			areas = append(areas, map[string]any{
				"code":    area.Code,
				"name":    area.Name,
				"widgets": widgets,
			})
		}
	}
	return map[string]any{
		"route": viewer.Route,
		"areas": areas,
	}, nil
}

// RenderTemplate writes the dashboard page for a viewer.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.renderer == nil {
		return fmt.Errorf("dashboard: renderer not configured")
	}
	payload, err := c.LayoutPayload(ctx, viewer)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, payload, out)
	return err
}

// WidgetHTML renders the fragment of a resolved widget instance.
func (c *Controller) WidgetHTML(inst WidgetInstance) string {
	if msg, ok := inst.Metadata["error"].(string); ok && msg != "" {
		return c.fragments.PreviewError(msg)
	}
	data, _ := inst.Metadata["data"].(WidgetData)
	if data == nil {
		return ""
	}
	var (
		markup string
		err    error
	)
	switch inst.DefinitionID {
	case WidgetKPICards:
		patches, _ := data["kpis"].([]KPIPatch)
		markup, err = c.fragments.KPICards(patches)
	case WidgetAlerts:
		alerts, _ := data["alerts"].([]Alert)
		markup, err = c.fragments.Alerts(alerts)
	case WidgetRecommendations, WidgetReportRecommendations:
		recs, _ := data["recommendations"].([]Recommendation)
		markup, err = c.fragments.Recommendations(recs)
	case WidgetReportPreview:
		markup, _ = data["markup"].(string)
	case WidgetCounter:
		count, _ := data["count"].(int)
		markup = `<span class="counter" data-counter="` + html.EscapeString(inst.ID) + `">` + strconv.Itoa(count) + `</span>`
	default:
		markup, _ = data["chart_html"].(string)
	}
	if err != nil {
		return c.fragments.PreviewError(err.Error())
	}
	return markup
}
