package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/stewardhq/steward/testing"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	handler := NewHandler(nil, newTestService(t), false)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func postJSON(r http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func TestLoginSuccess(t *testing.T) {
	router := newTestRouter(t)

	res := postJSON(router, "/auth", `{"email":"admin@example.com","password":"password123"}`, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "admin", body.Role)

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, body.Token, cookies[0].Value)
	// Cookie lifetime tracks the token TTL instead of outliving it.
	assert.InDelta(t, 3600, cookies[0].MaxAge, 5)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginWrongPassword(t *testing.T) {
	router := newTestRouter(t)

	res := postJSON(router, "/auth", `{"email":"admin@example.com","password":"wrongpass"}`, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, res.Body.String())
}

func TestLoginUnknownEmailSameResponse(t *testing.T) {
	router := newTestRouter(t)

	wrongPassword := postJSON(router, "/auth", `{"email":"admin@example.com","password":"wrongpass"}`, nil)
	unknownEmail := postJSON(router, "/auth", `{"email":"ghost@example.com","password":"password123"}`, nil)

	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(t)

	res := postJSON(router, "/auth", `{"email":`, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = postJSON(router, "/auth", `{"email":"admin@example.com","password":"x","extra":true}`, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestVerifyTokenMissing(t *testing.T) {
	router := newTestRouter(t)

	res := postJSON(router, "/verify-token", "", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.JSONEq(t, `{"error":"Token not provided"}`, res.Body.String())
}

func TestVerifyTokenInvalid(t *testing.T) {
	router := newTestRouter(t)

	res := postJSON(router, "/verify-token", "", map[string]string{"Authorization": "Bearer bogus"})
	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, res.Body.String())
}

func TestVerifyTokenValid(t *testing.T) {
	router := newTestRouter(t)

	login := postJSON(router, "/auth", `{"email":"user@example.com","password":"userpass123"}`, nil)
	require.Equal(t, http.StatusOK, login.Code)
	var loginBody struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &loginBody))

	res := postJSON(router, "/verify-token", "", map[string]string{"Authorization": "Bearer " + loginBody.Token})
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Valid   bool `json:"valid"`
		Decoded struct {
			ID   int64  `json:"id"`
			Role string `json:"role"`
			Exp  int64  `json:"exp"`
		} `json:"decoded"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.True(t, body.Valid)
	assert.Equal(t, int64(2), body.Decoded.ID)
	assert.Equal(t, "user", body.Decoded.Role)
	assert.Greater(t, body.Decoded.Exp, int64(0))
}
