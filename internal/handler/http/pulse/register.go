package pulse

import (
	"log/slog"
	"net/http"
)

// Register mounts the v1 routes on mux.
func Register(mux *http.ServeMux, svc ContentService, runner DigestRunner, news NewsSearcher, logger *slog.Logger) {
	mux.Handle("POST /v1/highlights", HighlightsHandler{svc})
	mux.Handle("POST /v1/content", ContentHandler{svc})
	mux.Handle("POST /v1/articles/process", ProcessHandler{svc})
	if runner != nil {
		mux.Handle("POST /v1/companies/digest", DigestHandler{Runner: runner, Logger: logger})
	}
	if news != nil {
		mux.Handle("GET /v1/companies/{name}/news", NewsHandler{news})
	}
}
