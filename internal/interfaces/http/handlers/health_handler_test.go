package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cnsipo-attrs/internal/domain/refdata"
	"github.com/turtacn/cnsipo-attrs/internal/testutil"
)

func newHealthRouter(h *HealthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func okChecker(name string) HealthChecker {
	return NewCheckerFunc(name, func(context.Context) error { return nil })
}

func TestHealthHandler_Liveness(t *testing.T) {
	r := newHealthRouter(NewHealthHandler("v1.2.3", nil))

	w := do(t, r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[LivenessResponse](t, w)
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "v1.2.3", resp.Version)
	assert.NotEmpty(t, resp.Uptime)
}

func TestHealthHandler_Readiness(t *testing.T) {
	tables := testutil.DefaultParser(t).Tables()

	t.Run("ready with tables", func(t *testing.T) {
		r := newHealthRouter(NewHealthHandler("dev", tables, okChecker("database")))

		w := do(t, r, http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[ReadinessResponse](t, w)
		assert.Equal(t, "ready", resp.Status)
		require.NotNil(t, resp.RefData)
		assert.Equal(t, 31, resp.RefData.Provinces)
		assert.Equal(t, "healthy", resp.Components["database"].Status)
	})

	t.Run("not ready without tables", func(t *testing.T) {
		r := newHealthRouter(NewHealthHandler("dev", nil))

		w := do(t, r, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "not_ready", decode[ReadinessResponse](t, w).Status)
	})

	t.Run("failing checker", func(t *testing.T) {
		failing := NewCheckerFunc("database", func(context.Context) error { return errors.New("connection refused") })
		r := newHealthRouter(NewHealthHandler("dev", tables, okChecker("cache"), failing))

		w := do(t, r, http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decode[ReadinessResponse](t, w)
		assert.Equal(t, "unhealthy", resp.Components["database"].Status)
		assert.Equal(t, "connection refused", resp.Components["database"].Error)
		assert.Equal(t, "healthy", resp.Components["cache"].Status)
	})

	t.Run("empty tables struct", func(t *testing.T) {
		r := newHealthRouter(NewHealthHandler("dev", &refdata.Tables{}))
		w := do(t, r, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

//Personal.AI order the ending
