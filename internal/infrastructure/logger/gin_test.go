package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter() (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	return router, logs
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs successful requests at info", func(t *testing.T) {
		router, logs := newObservedRouter()
		router.GET("/api/v1/finance/approvals/pending", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": []string{}})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/finance/approvals/pending?status=PENDING", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		fields := entry.ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/api/v1/finance/approvals/pending", fields["path"])
		assert.Equal(t, "status=PENDING", fields["query"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	})

	t.Run("logs client errors at warn and server errors at error", func(t *testing.T) {
		router, logs := newObservedRouter()
		router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })
		router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

		require.Equal(t, 2, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
	})

	t.Run("plants a request-scoped logger for handlers", func(t *testing.T) {
		router, logs := newObservedRouter()
		router.GET("/matches", func(c *gin.Context) {
			GetGinLogger(c).Info("listing matches")
			c.Status(http.StatusOK)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/matches", nil))

		require.Equal(t, 2, logs.Len())
		handlerEntry := logs.All()[0]
		assert.Equal(t, "listing matches", handlerEntry.Message)
		assert.Equal(t, "/matches", handlerEntry.ContextMap()["path"])
	})
}

func TestRecovery(t *testing.T) {
	t.Run("turns a panic into a 500 and logs the stack", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		core, logs := observer.New(zapcore.DebugLevel)
		router := gin.New()
		router.Use(Recovery(zap.New(core)))
		router.GET("/panic", func(c *gin.Context) {
			panic("matcher blew up")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "Panic recovered", entry.Message)
		assert.Equal(t, "matcher blew up", entry.ContextMap()["error"])
	})
}

func TestGetGinLogger(t *testing.T) {
	t.Run("returns a nop logger outside the middleware", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		log := GetGinLogger(c)

		require.NotNil(t, log)
		assert.NotPanics(t, func() { log.Info("ignored") })
	})
}
