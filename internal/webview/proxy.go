package webview

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

type hostKey struct{}

// NewProxy forwards webview asset requests to the backend UI. The target is
// resolved per request so a changed host applies without a restart.
func NewProxy(host func() string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			target := r.In.Context().Value(hostKey{}).(*url.URL)
			r.SetURL(target)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("UI request failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			http.Error(w, "Context Cache backend unreachable", http.StatusBadGateway)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, err := parseTarget(host())
		if err != nil {
			logger.Error("Invalid backend host", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		proxy.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), hostKey{}, target)))
	})
}

func parseTarget(host string) (*url.URL, error) {
	target, err := url.Parse(strings.TrimRight(host, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse host %q: %w", host, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("host %q is not an absolute URL", host)
	}
	return target, nil
}
