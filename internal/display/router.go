package display

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/varys/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/middleware"
)

// NewChecker returns a health checker whose readiness requires a built
// index.
func NewChecker(reader IndexReader) *health.Checker {
	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) error {
		if !reader.Ready() {
			return apperrors.ErrIndexNotReady
		}
		return nil
	})
	return checker
}

// NewRouter wires the display routes and middleware.
//
//	GET /api/v1/terms          paginated term listing
//	GET /api/v1/terms?term=t   postings for one term, any term
//	GET /api/v1/terms/{term}   postings for one path-escaped term
//	GET /api/v1/stats          document, term and posting counts
//	GET /health/live           liveness
//	GET /health/ready          readiness
//	GET /metrics               Prometheus scrape
//
// ServeMux cleans paths before routing, so the path form cannot reach the
// terms "." and "..", and unescaped terms containing "//" or "/./" are
// redirected. The query form takes the term verbatim.
//
// Middleware, outermost first: RequestID, Metrics, Timeout. m may be nil.
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/terms", h.ListTerms)
	mux.HandleFunc("GET /api/v1/terms/{term...}", h.GetTerm)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Timeout(requestTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)
	return chain
}
