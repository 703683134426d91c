package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/testimonials/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return mux
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	h := Middleware(newTestMux())
	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/testimonials/{id}", "204")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/testimonials/"+id, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestMiddleware_UnknownPathsShareCatchAll(t *testing.T) {
	h := Middleware(newTestMux())
	counter := HTTPRequestsTotal.WithLabelValues("GET", "/", "404")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/.env", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"", "unmatched"},
		{"/", "/"},
		{"POST /webhooks/stripe", "/webhooks/stripe"},
		{"/files/", "/files/"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Pattern = tt.pattern
		assert.Equal(t, tt.want, routeLabel(r), tt.pattern)
	}
}

func TestBusinessCounters(t *testing.T) {
	sent := EmailsSent.WithLabelValues("smtp", "sent")
	failed := EmailsSent.WithLabelValues("smtp", "error")
	sentBefore, failedBefore := testutil.ToFloat64(sent), testutil.ToFloat64(failed)

	EmailSent("smtp", nil)
	EmailSent("smtp", errors.New("dial tcp: refused"))

	assert.Equal(t, sentBefore+1, testutil.ToFloat64(sent))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))

	rejected := QuotaRejectionsTotal.WithLabelValues("LANDING_PAGE", "FREE")
	before := testutil.ToFloat64(rejected)
	QuotaRejected("LANDING_PAGE", "FREE")
	assert.Equal(t, before+1, testutil.ToFloat64(rejected))
}
