package dashboard

import (
	"context"
	"net/http"
)

// StreamHeader carries the page's stream id on action requests so
// notifications they raise reach that page only.
const StreamHeader = "X-Dashboard-Stream"

type sessionCookiesKey struct{}

type streamKey struct{}

// WithSessionCookies attaches the viewer's admin session cookies so outbound
// calls to the admin backend run as that user (sessionid, csrftoken).
func WithSessionCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	if len(cookies) == 0 {
		return ctx
	}
	return context.WithValue(ctx, sessionCookiesKey{}, cookies)
}

// SessionCookies returns cookies stored by WithSessionCookies.
func SessionCookies(ctx context.Context) []*http.Cookie {
	if ctx == nil {
		return nil
	}
	cookies, _ := ctx.Value(sessionCookiesKey{}).([]*http.Cookie)
	return cookies
}

// CSRFToken extracts the Django csrftoken cookie from the session, if any.
func CSRFToken(ctx context.Context) string {
	for _, cookie := range SessionCookies(ctx) {
		if cookie != nil && cookie.Name == "csrftoken" {
			return cookie.Value
		}
	}
	return ""
}

// WithStream addresses notifications raised under ctx to one mounted stream.
func WithStream(ctx context.Context, streamID string) context.Context {
	if streamID == "" {
		return ctx
	}
	return context.WithValue(ctx, streamKey{}, streamID)
}

// StreamFrom returns the id stored by WithStream.
func StreamFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(streamKey{}).(string)
	return id
}
