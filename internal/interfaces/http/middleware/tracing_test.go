package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("records a server span with tenant and user attributes", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		previous := otel.GetTracerProvider()
		otel.SetTracerProvider(provider)
		defer otel.SetTracerProvider(previous)

		router := gin.New()
		router.Use(RequestID())
		router.Use(Tracing("fincore-test"))
		router.Use(func(c *gin.Context) {
			c.Set(JWTTenantIDKey, "a2f1f3f0-0000-0000-0000-000000000001")
			c.Set(JWTUserIDKey, "a2f1f3f0-0000-0000-0000-000000000002")
			c.Next()
		})
		router.Use(TraceAttributes())
		router.GET("/api/v1/finance/approvals/pending", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": []string{}})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/finance/approvals/pending", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Name(), "/finance/approvals/pending")

		attrs := make(map[string]string)
		for _, kv := range spans[0].Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		assert.Equal(t, "a2f1f3f0-0000-0000-0000-000000000001", attrs["tenant_id"])
		assert.Equal(t, "a2f1f3f0-0000-0000-0000-000000000002", attrs["user_id"])
		assert.NotEmpty(t, attrs["request_id"])
	})

	t.Run("attribute middleware is inert without a recording span", func(t *testing.T) {
		router := gin.New()
		router.Use(TraceAttributes())
		router.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})
}
