package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

type layoutService interface {
	LayoutPayload(ctx context.Context, viewer dashboard.ViewerContext) (map[string]any, error)
}

// LayoutQuery returns the areas of the executive dashboard with each
// widget's data and rendered fragment.
type LayoutQuery struct {
	service layoutService
}

func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, map[string]any] = (*LayoutQuery)(nil)

// Query resolves the layout; a viewer without a route is placed on the
// admin index.
func (q *LayoutQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) (map[string]any, error) {
	if q.service == nil {
		return nil, errors.New("layout query requires service")
	}
	if viewer.Route == "" {
		viewer.Route = dashboard.DefaultWelcomeRoute
	}
	return q.service.LayoutPayload(ctx, viewer)
}
