package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-dashboard/internal/auth"
	"github.com/ukydev/fleet-dashboard/internal/comms"
	"github.com/ukydev/fleet-dashboard/internal/config"
	"github.com/ukydev/fleet-dashboard/internal/handlers"
	"github.com/ukydev/fleet-dashboard/internal/help"
	"github.com/ukydev/fleet-dashboard/internal/metrics"
	"github.com/ukydev/fleet-dashboard/internal/middleware"
	"github.com/ukydev/fleet-dashboard/internal/models"
	"github.com/ukydev/fleet-dashboard/internal/notify"
	"github.com/ukydev/fleet-dashboard/internal/settings"
)

func newTestServer(t *testing.T, rateLimit int) *httptest.Server {
	t.Helper()
	logger, _ := test.NewNullLogger()

	st, err := openStores(context.Background(), config.Config{DataSource: config.SourceFixtures})
	require.NoError(t, err)
	t.Cleanup(st.close)

	library, err := help.Load()
	require.NoError(t, err)
	sessions := comms.NewSessions("fleet@dashboard.example", comms.DefaultDialerConfig(), logger)
	t.Cleanup(sessions.Close)

	reg := metrics.New()
	authService := auth.NewService("router-test-secret", time.Hour)
	authHandler := handlers.NewAuthHandler(authService, st.users, logger)
	require.NoError(t, authHandler.EnsureAdmin(context.Background(), "admin", "s3cret-pass"))

	dashboard := &handlers.Dashboard{
		Records:   st.records,
		Settings:  st.settings,
		Center:    notify.NewCenter(),
		Publisher: notify.NopPublisher{},
		Sessions:  sessions,
		Help:      library,
		Metrics:   reg,
		Logger:    logger,
	}
	limiter := middleware.NewRateLimitMiddleware().RateLimit(rateLimit, time.Minute)
	srv := httptest.NewServer(newRouter(authHandler, dashboard, middleware.NewAuthMiddleware(authService), limiter, reg, logger))
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server, username, password string) *http.Response {
	t.Helper()
	body, err := json.Marshal(models.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, srv *httptest.Server, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_EndToEnd(t *testing.T) {
	srv := newTestServer(t, 0)

	health := get(t, srv, "/health", "")
	assert.Equal(t, http.StatusOK, health.StatusCode)
	_, err := uuid.Parse(health.Header.Get(middleware.RequestIDHeader))
	assert.NoError(t, err, "every response carries a request id")

	assert.Equal(t, http.StatusUnauthorized, get(t, srv, "/api/vehicles", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, login(t, srv, "admin", "wrong").StatusCode)

	resp := login(t, srv, "admin", "s3cret-pass")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session models.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	require.NotEmpty(t, session.Token)
	assert.Equal(t, models.RoleAdmin, session.User.Role)

	vehicles := get(t, srv, "/api/vehicles", session.Token)
	require.Equal(t, http.StatusOK, vehicles.StatusCode)
	var page struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(vehicles.Body).Decode(&page))
	assert.Equal(t, 6, page.Total)

	profile := get(t, srv, "/api/auth/profile", session.Token)
	assert.Equal(t, http.StatusOK, profile.StatusCode)

	users := get(t, srv, "/api/users", session.Token)
	require.Equal(t, http.StatusOK, users.StatusCode)
	var accounts []models.User
	require.NoError(t, json.NewDecoder(users.Body).Decode(&accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "admin", accounts[0].Username)

	scrape := get(t, srv, "/metrics", "")
	require.Equal(t, http.StatusOK, scrape.StatusCode)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(scrape.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `route="GET /api/vehicles"`)
	assert.Contains(t, buf.String(), `route="POST /api/auth/login"`)
}

func TestRouter_RegisteredViewerIsGated(t *testing.T) {
	srv := newTestServer(t, 0)

	body := `{"username": "viewer1", "email": "viewer1@fleet.local", "password": "password123"}`
	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session models.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.Equal(t, models.RoleViewer, session.User.Role)

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/notifications", session.Token).StatusCode)
	assert.Equal(t, http.StatusForbidden, get(t, srv, "/api/invoices", session.Token).StatusCode)
	assert.Equal(t, http.StatusForbidden, get(t, srv, "/api/reports/fleet", session.Token).StatusCode)
	assert.Equal(t, http.StatusForbidden, get(t, srv, "/api/users", session.Token).StatusCode)
}

func TestRouter_RateLimit(t *testing.T) {
	srv := newTestServer(t, 2)

	assert.Equal(t, http.StatusOK, get(t, srv, "/health", "").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv, "/health", "").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, get(t, srv, "/health", "").StatusCode)
}

func TestOpenStores_SettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	st, err := openStores(context.Background(), config.Config{DataSource: config.SourceFixtures, SettingsFile: path})
	require.NoError(t, err)
	defer st.close()

	_, ok := st.settings.(*settings.FileStore)
	assert.True(t, ok)

	snap, err := st.records.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Vehicles, 6)
}

func TestOpenPublisher_WithoutBroker(t *testing.T) {
	assert.Equal(t, notify.NopPublisher{}, openPublisher(config.Config{}))
}

type countingPublisher struct {
	calls chan int
}

func (p *countingPublisher) Publish(_ context.Context, ns []models.Notification) (int, error) {
	select {
	case p.calls <- len(ns):
	default:
	}
	return len(ns), nil
}
func (p *countingPublisher) Close() {}

func TestPublishLoop(t *testing.T) {
	logger, _ := test.NewNullLogger()
	st, err := openStores(context.Background(), config.Config{DataSource: config.SourceFixtures})
	require.NoError(t, err)

	pub := &countingPublisher{calls: make(chan int, 8)}
	dashboard := &handlers.Dashboard{
		Records:   st.records,
		Settings:  st.settings,
		Publisher: pub,
		Metrics:   metrics.New(),
		Logger:    logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		publishLoop(ctx, dashboard, 5*time.Millisecond)
		close(done)
	}()

	for range 2 {
		select {
		case n := <-pub.calls:
			assert.Positive(t, n)
		case <-time.After(time.Second):
			t.Fatal("publish loop did not tick")
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish loop did not stop")
	}
}
