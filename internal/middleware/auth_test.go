package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func testClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":        "7a9f5c1e-8a30-4a7d-9a51-2f3b44a7c001",
		"role":       role,
		"company_id": "b2c3d4e5-f6a7-4b8c-9d0e-1f2a3b4c5d01",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
}

func newAuthTestRouter(t *testing.T, middleware gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", middleware, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString("userID"),
			"role":       c.GetString("userRole"),
			"company_id": c.GetString("companyID"),
		})
	})
	return router
}

func TestRequireAuthMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthTestRouter(t, RequireAuth())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization is missing")
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthTestRouter(t, RequireAuth())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid authorization format")
}

func TestRequireAuthBadSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthTestRouter(t, RequireAuth())
	token := signToken(t, []byte("other-secret"), testClaims("admin"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestRequireAuthExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthTestRouter(t, RequireAuth())
	claims := testClaims("admin")
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signToken(t, []byte("test-secret"), claims)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthSetsIdentity(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthTestRouter(t, RequireAuth())
	token := signToken(t, []byte("test-secret"), testClaims("colaborador"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "7a9f5c1e-8a30-4a7d-9a51-2f3b44a7c001")
	assert.Contains(t, w.Body.String(), "colaborador")
	assert.Contains(t, w.Body.String(), "b2c3d4e5-f6a7-4b8c-9d0e-1f2a3b4c5d01")
}

func TestRequireAuthReadsCookie(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthTestRouter(t, RequireAuth())
	token := signToken(t, []byte("test-secret"), testClaims("gestor"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireActionAllowed(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthTestRouter(t, RequireAction(auth.ActionMaturityReview))
	token := signToken(t, []byte("test-secret"), testClaims("gestor"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireActionForbidden(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthTestRouter(t, RequireAction(auth.ActionMaturityApprove))
	token := signToken(t, []byte("test-secret"), testClaims("gestor"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient permissions")
}

func TestRequireActionMissingRoleClaim(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthTestRouter(t, RequireAction(auth.ActionTaskRead))
	claims := testClaims("admin")
	delete(claims, "role")
	token := signToken(t, []byte("test-secret"), claims)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Role not found")
}
