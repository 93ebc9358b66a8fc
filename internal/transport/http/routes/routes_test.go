package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Pierre48/hrcard/internal/core/domain"
	"github.com/Pierre48/hrcard/internal/infra/config"
	"github.com/Pierre48/hrcard/internal/infra/security"
	httproutes "github.com/Pierre48/hrcard/internal/transport/http/routes"
)

func testJWTManager(t *testing.T) *security.JWTManager {
	t.Helper()
	manager, err := security.NewJWTManager("test-secret-used-only-in-unit-tests", "hrcard-test", time.Hour)
	if err != nil {
		t.Fatalf("failed to create jwt manager: %v", err)
	}
	return manager
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := zap.NewDevelopment()
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}

	r := httproutes.Register(httproutes.Dependencies{
		Config:     cfg,
		Logger:     logger,
		JWTManager: testJWTManager(t),
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestAccountEndpointRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}

	r := httproutes.Register(httproutes.Dependencies{
		Config:     cfg,
		JWTManager: testJWTManager(t),
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/account", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestAdminEndpointsRequireAdminAuthority(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}
	manager := testJWTManager(t)

	r := httproutes.Register(httproutes.Dependencies{
		Config:     cfg,
		JWTManager: manager,
	})

	token, err := manager.Issue("jdoe", []string{domain.AuthorityUser})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/authorities", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for non-admin, got %d", w.Code)
	}
}
