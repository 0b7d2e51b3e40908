// Package mockapitest starts the stub backend on a loopback port for tests.
package mockapitest

import (
	"net/http/httptest"
	"testing"
	"time"

	"sikseb/internal/mockapi"
	"sikseb/internal/router"
	"sikseb/pkg/config"
	"sikseb/pkg/jwt"
	"sikseb/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Credentials of the seeded administrator.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "password"
)

// Employees is the number of seeded Karyawan users.
const Employees = 3

// NewServer seeds a store and serves it until the test ends.
func NewServer(t testing.TB) (*httptest.Server, *mockapi.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := mockapi.NewSeededStore(mockapi.SeedOptions{
		AdminEmail:    AdminEmail,
		AdminPassword: AdminPassword,
		Employees:     Employees,
	})
	if err != nil {
		t.Fatalf("seed stub backend: %v", err)
	}

	engine := router.SetupRouter(router.Deps{
		Store: store,
		JWT:   jwt.NewJWTManager("test-secret", time.Hour),
		CORS: config.CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "Authorization", "Accept", "X-Requested-With"},
		},
		Logger: logger.Discard(),
	})

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv, store
}
