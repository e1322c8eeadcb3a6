package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossy-p/voicerooms/config"
	"github.com/mossy-p/voicerooms/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func loginEngine(admin config.AdminConfig) *gin.Engine {
	engine := gin.New()
	engine.POST("/api/auth/login", Login("test-secret", admin))
	return engine
}

func postLogin(t *testing.T, engine *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestLoginIssuesValidToken(t *testing.T) {
	engine := loginEngine(config.AdminConfig{Username: "admin", Password: "hunter2"})

	rec := postLogin(t, engine, LoginRequest{Username: "admin", Password: "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	claims, err := middleware.ParseToken(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	engine := loginEngine(config.AdminConfig{Username: "admin", Password: "hunter2"})

	rec := postLogin(t, engine, LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postLogin(t, engine, LoginRequest{Username: "intruder", Password: "hunter2"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	engine := loginEngine(config.AdminConfig{Username: "admin"})

	rec := postLogin(t, engine, LoginRequest{Username: "admin", Password: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postLogin(t, engine, LoginRequest{Username: "admin", Password: "anything"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	engine := loginEngine(config.AdminConfig{Username: "admin", Password: "hunter2"})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
