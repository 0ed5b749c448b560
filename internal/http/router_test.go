package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nunes-ND/msg-scheduler/internal/http/handler"
)

func newTestRouter() http.Handler {
	health := handler.NewHealthHandler(nil, nil)
	// Requests exercised here are rejected before the service is reached.
	messages := handler.NewMessageHandler(nil, handler.MessageHandlerOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return NewRouter(health, messages, RouterOptions{})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/schedules/not-a-uuid", http.StatusBadRequest},
		{http.MethodPut, "/schedules/not-a-uuid", http.StatusBadRequest},
		{http.MethodDelete, "/schedules/not-a-uuid", http.StatusBadRequest},
		{http.MethodPost, "/schedules", http.StatusBadRequest},
		{http.MethodPatch, "/schedules/not-a-uuid", http.StatusMethodNotAllowed},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.target, nil))
		assert.Equal(t, tc.status, rr.Code, "%s %s", tc.method, tc.target)
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/schedules/not-a-uuid", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="GET",path="/schedules/{id}",status_code="400"}`)
	assert.Contains(t, rr.Body.String(), "http_request_duration_seconds")
}
