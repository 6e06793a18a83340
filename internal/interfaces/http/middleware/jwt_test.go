package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/fincore/internal/infrastructure/auth"
	"github.com/erp/fincore/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-at-least-32-characters-long",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "fincore-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, tenantID, userID uuid.UUID) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:    tenantID,
		UserID:      userID,
		Username:    "controller",
		Permissions: []string{"finance:approve"},
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func newAuthedRouter(svc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: svc,
		SkipPaths:  []string{"/api/v1/system/ping"},
	}))
	router.GET("/api/v1/system/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/api/v1/finance/approvals/pending", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tenant_id":   GetJWTTenantID(c),
			"user_id":     GetJWTUserID(c),
			"username":    GetJWTUsername(c),
			"permissions": GetJWTPermissions(c),
		})
	})
	return router
}

func getWithToken(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newJWTService(time.Minute)
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("valid token exposes claims to handlers", func(t *testing.T) {
		router := newAuthedRouter(svc)
		token := issueToken(t, svc, tenantID, userID)

		w := getWithToken(router, "/api/v1/finance/approvals/pending", token)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tenantID.String(), body["tenant_id"])
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, "controller", body["username"])
		assert.Equal(t, []any{"finance:approve"}, body["permissions"])
	})

	t.Run("missing header is a 401", func(t *testing.T) {
		router := newAuthedRouter(svc)

		w := getWithToken(router, "/api/v1/finance/approvals/pending", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-bearer header is a 401", func(t *testing.T) {
		router := newAuthedRouter(svc)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/finance/approvals/pending", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token reports TOKEN_EXPIRED", func(t *testing.T) {
		expiredSvc := newJWTService(-time.Minute)
		router := newAuthedRouter(expiredSvc)
		token := issueToken(t, expiredSvc, tenantID, userID)

		w := getWithToken(router, "/api/v1/finance/approvals/pending", token)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		errInfo, ok := body["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "TOKEN_EXPIRED", errInfo["code"])
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		router := newAuthedRouter(svc)
		otherSvc := auth.NewJWTService(config.JWTConfig{
			Secret:                 "a-completely-different-signing-secret!!",
			AccessTokenExpiration:  time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "fincore-test",
		})
		token := issueToken(t, otherSvc, tenantID, userID)

		w := getWithToken(router, "/api/v1/finance/approvals/pending", token)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skip paths stay open", func(t *testing.T) {
		router := newAuthedRouter(svc)

		w := getWithToken(router, "/api/v1/system/ping", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("custom error handler takes over", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
			JWTService: svc,
			OnError: func(c *gin.Context, err error) {
				c.AbortWithStatusJSON(http.StatusTeapot, gin.H{"handled": true})
			},
		}))
		router.GET("/anything", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := getWithToken(router, "/anything", "")

		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	svc := newJWTService(time.Minute)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(svc))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
	})

	t.Run("anonymous requests pass through", func(t *testing.T) {
		w := getWithToken(router, "/whoami", "")

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "", body["user_id"])
	})

	t.Run("a valid token still sets claims", func(t *testing.T) {
		userID := uuid.New()
		token := issueToken(t, svc, uuid.New(), userID)

		w := getWithToken(router, "/whoami", token)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["user_id"])
	})
}
