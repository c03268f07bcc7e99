package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReadyReportsEveryFailingDependency(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &logs})
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	handler := HealthReady(cfg, map[string]Pinger{
		"database": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return errors.New("connection refused") }),
		"storage":  pingFunc(func(context.Context) error { return errors.New("bucket missing") }),
	}, logg)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if w.Header().Get("X-NowAround-Env") != "dev" {
		t.Fatalf("missing env header")
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("dependency detail leaked: %s", w.Body.String())
	}
	for _, want := range []string{"redis: connection refused", "storage: bucket missing"} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("expected %q in logs, got %s", want, logs.String())
		}
	}
}

func TestHealthReadyOK(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "prod"}}
	handler := HealthReady(cfg, map[string]Pinger{
		"database": pingFunc(func(context.Context) error { return nil }),
	}, nil)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ready"`) {
		t.Fatalf("expected ready, got %d %s", w.Code, w.Body.String())
	}
}
