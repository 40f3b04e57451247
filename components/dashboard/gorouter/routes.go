package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"
	"golang.org/x/text/language"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/commands"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/httpapi"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/queries"
)

// Locals the viewer resolver reads when an upstream middleware set them.
const (
	LocalUserID = "user_id"
	LocalRoles  = "roles"
	LocalLocale = "locale"
)

// ViewerResolver builds the viewer for a request.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config mounts the dashboard on a go-router router. API and Broadcast are
// optional; without them only the page and layout routes exist.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig overrides individual paths, relative to BasePath.
type RouteConfig struct {
	HTML           string
	Layout         string
	Widgets        string
	WidgetID       string
	Refresh        string
	BulkAction     string
	RefreshAll     string
	Recommendation string
	Regenerate     string
	Preview        string
	Analysis       string
	Download       string
	Reports        string
	Municipios     string
	Export         string
	Metrics        string
	Notification   string
	WebSocket      string
}

type mount[T any] struct {
	group  router.Router[T]
	routes RouteConfig
	api    httpapi.Executor
	viewer ViewerResolver
}

func Register[T any](cfg Config[T]) error {
	switch {
	case cfg.Router == nil:
		return errors.New("gorouter: router is required")
	case cfg.Controller == nil:
		return errors.New("gorouter: controller is required")
	}
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	m := mount[T]{
		group:  cfg.Router.Group(base),
		routes: defaultRouteConfig(cfg.Routes),
		api:    cfg.API,
		viewer: cfg.ViewerResolver,
	}
	if m.viewer == nil {
		m.viewer = defaultViewerResolver
	}

	m.page(cfg.Controller)
	if m.api != nil {
		m.widgets()
		m.actions()
		m.reports()
	}
	if cfg.Broadcast != nil {
		m.stream(cfg.Broadcast)
	}
	return nil
}

func (m mount[T]) page(controller *dashboard.Controller) {
	m.group.Get(m.routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var page bytes.Buffer
		if err := controller.RenderTemplate(ctx.Context(), m.viewer(ctx), &page); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return sendHTML(ctx, page.String())
	}))
	m.group.Get(m.routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		layout, err := controller.LayoutPayload(ctx.Context(), m.viewer(ctx))
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, layout)
	}))
}

func (m mount[T]) widgets() {
	m.group.Post(m.routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		req, err := bindJSON[dashboard.AddWidgetRequest](ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return reply(ctx, http.StatusCreated, status("created"), m.api.Assign(ctx.Context(), req))
	}))
	m.group.Delete(m.routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		in := commands.RemoveWidgetInput{WidgetID: ctx.Param("id")}
		return reply(ctx, http.StatusOK, status("removed"), m.api.Remove(ctx.Context(), in))
	}))
	m.group.Post(m.routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		in, err := bindJSON[commands.RefreshWidgetInput](ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return reply(ctx, http.StatusAccepted, status("queued"), m.api.Refresh(ctx.Context(), in))
	}))
	m.group.Delete(m.routes.Notification, router.WrapHandler(func(ctx router.Context) error {
		in := commands.DismissNotificationInput{ID: ctx.Param("id")}
		return reply(ctx, http.StatusOK, status("dismissed"), m.api.DismissNotification(ctx.Context(), in))
	}))
}

func (m mount[T]) actions() {
	m.group.Post(m.routes.BulkAction, router.WrapHandler(func(ctx router.Context) error {
		req, err := bindJSON[dashboard.BulkActionRequest](ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return reply(ctx, http.StatusOK, success(), m.api.BulkAction(sessionContext(ctx), req))
	}))
	m.group.Post(m.routes.RefreshAll, router.WrapHandler(func(ctx router.Context) error {
		return reply(ctx, http.StatusAccepted, status("refreshing"), m.api.RefreshDashboard(sessionContext(ctx)))
	}))
	m.group.Post(m.routes.Recommendation, router.WrapHandler(func(ctx router.Context) error {
		in, ok := httpapi.RecommendationInput(ctx.Param("type"), ctx.Param("mode"))
		if !ok {
			return respondError(ctx, http.StatusNotFound, fmt.Errorf("unknown recommendation mode %q", ctx.Param("mode")))
		}
		return reply(ctx, http.StatusAccepted, status("queued"), m.api.Recommendation(sessionContext(ctx), in))
	}))
	m.group.Post(m.routes.Regenerate, router.WrapHandler(func(ctx router.Context) error {
		confirmed, _ := strconv.ParseBool(ctx.Query("confirmed"))
		in := commands.RegenerateReportInput{ReportID: ctx.Param("id"), Confirmed: confirmed}
		return reply(ctx, http.StatusOK, success(), m.api.Regenerate(sessionContext(ctx), in))
	}))
}

func (m mount[T]) reports() {
	report := func(ctx router.Context) queries.ReportPreviewInput {
		return queries.ReportPreviewInput{ReportID: ctx.Param("id")}
	}

	m.group.Get(m.routes.Preview, router.WrapHandler(func(ctx router.Context) error {
		preview, err := m.api.Preview(sessionContext(ctx), report(ctx))
		if err != nil {
			return respondMapped(ctx, err)
		}
		// The placeholder markup is still a valid fragment; the header lets
		// scripts tell it apart.
		if preview.Err != nil {
			ctx.SetHeader("X-Preview-Error", preview.Err.Error())
		}
		return sendHTML(ctx, preview.Markup)
	}))
	m.group.Get(m.routes.Analysis, router.WrapHandler(func(ctx router.Context) error {
		analysis, err := m.api.Analysis(sessionContext(ctx), report(ctx))
		return reply(ctx, http.StatusOK, analysis, err)
	}))
	m.group.Get(m.routes.Download, router.WrapHandler(func(ctx router.Context) error {
		file, err := m.api.Download(sessionContext(ctx), report(ctx))
		if err != nil {
			return respondMapped(ctx, err)
		}
		if file.ContentType == "" {
			file.ContentType = "application/octet-stream"
		}
		ctx.SetHeader("Content-Type", file.ContentType)
		ctx.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
		return ctx.Send(file.Body)
	}))
	m.group.Get(m.routes.Reports, router.WrapHandler(func(ctx router.Context) error {
		table, err := m.api.ReportTable(ctx.Context(), queries.ReportTableInput{Search: ctx.Query("q"), SortBy: ctx.Query("sort")})
		if err != nil {
			return respondMapped(ctx, err)
		}
		return ctx.JSON(http.StatusOK, httpapi.TablePayload(table))
	}))
	m.group.Get(m.routes.Metrics, router.WrapHandler(func(ctx router.Context) error {
		metrics, err := m.api.Metrics(ctx.Context(), queries.MetricsInput{Locale: inferLocale(ctx)})
		return reply(ctx, http.StatusOK, metrics, err)
	}))
	m.group.Get(m.routes.Municipios, router.WrapHandler(func(ctx router.Context) error {
		options, err := m.api.Municipios(sessionContext(ctx), queries.MunicipiosInput{Departamento: ctx.Query("departamento")})
		return reply(ctx, http.StatusOK, options, err)
	}))
	m.group.Get(m.routes.Export, router.WrapHandler(func(ctx router.Context) error {
		target, err := m.api.Export(ctx.Context(), queries.ExportInput{CurrentURL: ctx.Query("from"), Format: ctx.Query("format")})
		return reply(ctx, http.StatusOK, map[string]string{"url": target}, err)
	}))
}

// stream pushes widget events for the admin view named by ?view=. An open
// socket keeps that view's polling jobs running.
func (m mount[T]) stream(hook *dashboard.BroadcastHook) {
	m.group.WebSocket(m.routes.WebSocket, router.DefaultWebSocketConfig(), func(ws router.WebSocketContext) error {
		streamID, events, done := hook.MountView(ws.Query("view"))
		defer done()
		if err := ws.WriteJSON(dashboard.StreamEvent(streamID)); err != nil {
			return err
		}
		for {
			select {
			case <-ws.Context().Done():
				return ws.Close()
			case event, open := <-events:
				if !open {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			}
		}
	})
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	userID, _ := ctx.Locals(LocalUserID).(string)
	roles, _ := ctx.Locals(LocalRoles).([]string)
	return dashboard.ViewerContext{
		UserID: userID,
		Roles:  roles,
		Locale: inferLocale(ctx),
		Route:  ctx.Query("view"),
	}
}

// sessionContext forwards the browser's admin cookies (sessionid,
// csrftoken) to the admin client and addresses notifications to the page's
// stream.
func sessionContext(ctx router.Context) context.Context {
	session := dashboard.WithSessionCookies(ctx.Context(), parseCookies(ctx.Header("Cookie")))
	return dashboard.WithStream(session, ctx.Header(dashboard.StreamHeader))
}

func parseCookies(header string) []*http.Cookie {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return nil
	}
	return cookies
}

// inferLocale prefers a middleware-set local, then ?locale=, then the
// highest weighted Accept-Language tag.
func inferLocale(ctx router.Context) string {
	if locale, _ := ctx.Locals(LocalLocale).(string); locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(ctx.Header("Accept-Language"))
}

func parseAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return strings.ToLower(tags[0].String())
}

func bindJSON[T any](ctx router.Context) (T, error) {
	var v T
	if err := json.Unmarshal(ctx.Body(), &v); err != nil {
		return v, fmt.Errorf("invalid request body: %w", err)
	}
	return v, nil
}

// reply writes body with code, or the mapped error response when err is set.
func reply(ctx router.Context, code int, body any, err error) error {
	if err != nil {
		return respondMapped(ctx, err)
	}
	return ctx.JSON(code, body)
}

func status(s string) map[string]string { return map[string]string{"status": s} }

func success() map[string]any { return map[string]any{"success": true} }

func sendHTML(ctx router.Context, markup string) error {
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send([]byte(markup))
}

func respondError(ctx router.Context, code int, err error) error {
	return ctx.JSON(code, map[string]string{"error": err.Error()})
}

func respondMapped(ctx router.Context, err error) error {
	code, body := httpapi.ErrorStatus(err)
	return ctx.JSON(code, body)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	for field, path := range map[*string]string{
		&routes.HTML:           "/dashboard",
		&routes.Layout:         "/dashboard/_layout",
		&routes.Widgets:        "/dashboard/widgets",
		&routes.WidgetID:       "/dashboard/widgets/:id",
		&routes.Refresh:        "/dashboard/widgets/refresh",
		&routes.BulkAction:     "/dashboard/actions/bulk",
		&routes.RefreshAll:     "/dashboard/actions/refresh",
		&routes.Export:         "/dashboard/actions/export",
		&routes.Recommendation: "/dashboard/recommendations/:type/:mode",
		&routes.Regenerate:     "/dashboard/reports/:id/regenerate",
		&routes.Preview:        "/dashboard/reports/:id/preview",
		&routes.Analysis:       "/dashboard/reports/:id/analysis",
		&routes.Download:       "/dashboard/reports/:id/download",
		&routes.Reports:        "/dashboard/reports",
		&routes.Municipios:     "/dashboard/municipios",
		&routes.Metrics:        "/dashboard/metrics",
		&routes.Notification:   "/dashboard/notifications/:id",
		&routes.WebSocket:      "/dashboard/ws",
	} {
		if *field == "" {
			*field = path
		}
	}
	return routes
}
