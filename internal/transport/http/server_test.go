package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloglist-api/internal/bootstrap"
	"bloglist-api/internal/config"
	"bloglist-api/internal/pkg/jwtutil"
)

const testSecret = "e2e-secret"

type testServer struct {
	t      *testing.T
	app    *bootstrap.App
	router *gin.Engine
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{
			Name:        "bloglist-api",
			Env:         config.EnvTest,
			GinMode:     gin.TestMode,
			CORSOrigins: []string{"*"},
		},
		Auth: config.AuthConfig{JWTSecret: testSecret, JWTExpireMinute: 60},
		Database: config.DatabaseConfig{
			Driver:  "sqlite",
			TestURI: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		},
	}
	for _, m := range mutate {
		m(cfg)
	}

	app, err := bootstrap.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return &testServer{t: t, app: app, router: NewRouter(app)}
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(username, name, password string) map[string]interface{} {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/users", gin.H{"username": username, "name": name, "password": password}, "")
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeObject(s.t, rec)
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/login", gin.H{"username": username, "password": password}, "")
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeObject(s.t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(s.t, token)
	return token
}

func (s *testServer) createBlog(token string, blog gin.H) map[string]interface{} {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/blogs", blog, token)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeObject(s.t, rec)
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func assertErrorBody(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	assert.Equal(t, message, decodeObject(t, rec)["error"])
}

func TestEndToEnd_CreateAndListBlog(t *testing.T) {
	s := newTestServer(t)

	admin := s.register("admin", "Admin", "admin")
	token := s.login("admin", "admin")

	created := s.createBlog(token, gin.H{
		"title":  "React patterns",
		"author": "Michael Chan",
		"url":    "https://reactpatterns.com/",
		"likes":  7,
	})
	assert.NotContains(t, created, "_id")
	assert.Equal(t, admin["id"], created["user"])
	assert.EqualValues(t, 7, created["likes"])

	rec := s.do(http.MethodGet, "/api/blogs", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	blogs := decodeList(t, rec)
	require.Len(t, blogs, 1)
	assert.Equal(t, "React patterns", blogs[0]["title"])
	assert.Equal(t, created["id"], blogs[0]["id"])
	owner, ok := blogs[0]["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "admin", owner["username"])
	assert.Equal(t, "Admin", owner["name"])
	assert.Equal(t, admin["id"], owner["id"])

	rec = s.do(http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeList(t, rec)
	require.Len(t, users, 1)
	userBlogs, ok := users[0]["blogs"].([]interface{})
	require.True(t, ok)
	require.Len(t, userBlogs, 1)
	assert.Equal(t, created["id"], userBlogs[0].(map[string]interface{})["id"])
}

func TestResponses_NeverLeakInternals(t *testing.T) {
	s := newTestServer(t)
	s.register("root", "Root", "secret")
	token := s.login("root", "secret")
	s.createBlog(token, gin.H{"title": "t", "url": "u"})

	for _, path := range []string{"/api/users", "/api/blogs"} {
		rec := s.do(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "Password")
		assert.NotContains(t, body, "_id")
		assert.NotContains(t, body, "__v")
	}
}

func TestCreateBlog_DefaultsLikesToZero(t *testing.T) {
	s := newTestServer(t)
	s.register("root", "Root", "secret")
	token := s.login("root", "secret")

	created := s.createBlog(token, gin.H{"title": "no likes", "url": "http://x"})
	assert.EqualValues(t, 0, created["likes"])
}

func TestCreateBlog_Validation(t *testing.T) {
	s := newTestServer(t)
	s.register("root", "Root", "secret")
	token := s.login("root", "secret")

	rec := s.do(http.MethodPost, "/api/blogs", gin.H{"url": "http://x"}, token)
	assertErrorBody(t, rec, http.StatusBadRequest, "title is required")

	rec = s.do(http.MethodPost, "/api/blogs", gin.H{"title": "t"}, token)
	assertErrorBody(t, rec, http.StatusBadRequest, "url is required")

	rec = s.do(http.MethodGet, "/api/blogs", nil, "")
	assert.Empty(t, decodeList(t, rec))
}

func TestCreateBlog_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/blogs", gin.H{"title": "t", "url": "u"}, "")
	assertErrorBody(t, rec, http.StatusUnauthorized, "token missing")

	rec = s.do(http.MethodPost, "/api/blogs", gin.H{"title": "t", "url": "u"}, "garbage")
	assertErrorBody(t, rec, http.StatusUnauthorized, "token invalid")

	rec = s.do(http.MethodGet, "/api/blogs", nil, "")
	assert.Empty(t, decodeList(t, rec))
}

func TestCreateBlog_ExpiredToken(t *testing.T) {
	s := newTestServer(t)
	user := s.register("root", "Root", "secret")

	token, err := jwtutil.GenerateToken(testSecret, -time.Minute, user["id"].(string), "root")
	require.NoError(t, err)

	rec := s.do(http.MethodPost, "/api/blogs", gin.H{"title": "t", "url": "u"}, token)
	assertErrorBody(t, rec, http.StatusUnauthorized, "token expired")
}

func TestCreateBlog_TokenForUnknownUser(t *testing.T) {
	s := newTestServer(t)

	token, err := jwtutil.GenerateToken(testSecret, time.Hour, uuid.NewString(), "ghost")
	require.NoError(t, err)

	rec := s.do(http.MethodPost, "/api/blogs", gin.H{"title": "t", "url": "u"}, token)
	assertErrorBody(t, rec, http.StatusUnauthorized, "user not found")
}

func TestDeleteBlog_OwnerOnly(t *testing.T) {
	s := newTestServer(t)
	s.register("owner", "Owner", "secret")
	s.register("other", "Other", "secret")
	ownerToken := s.login("owner", "secret")
	otherToken := s.login("other", "secret")

	blog := s.createBlog(ownerToken, gin.H{"title": "mine", "url": "http://mine"})
	path := "/api/blogs/" + blog["id"].(string)

	rec := s.do(http.MethodDelete, path, nil, otherToken)
	assertErrorBody(t, rec, http.StatusUnauthorized, "only the creator can delete a blog")

	rec = s.do(http.MethodDelete, path, nil, ownerToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/blogs", nil, "")
	assert.Empty(t, decodeList(t, rec))

	rec = s.do(http.MethodDelete, path, nil, ownerToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBlog_MalformedID(t *testing.T) {
	s := newTestServer(t)
	s.register("root", "Root", "secret")
	token := s.login("root", "secret")

	rec := s.do(http.MethodDelete, "/api/blogs/not-an-id", nil, token)
	assertErrorBody(t, rec, http.StatusBadRequest, "malformatted id")
}

func TestUpdateBlog(t *testing.T) {
	s := newTestServer(t)
	s.register("owner", "Owner", "secret")
	s.register("other", "Other", "secret")
	ownerToken := s.login("owner", "secret")
	otherToken := s.login("other", "secret")

	blog := s.createBlog(ownerToken, gin.H{"title": "t", "author": "a", "url": "http://u", "likes": 1})
	path := "/api/blogs/" + blog["id"].(string)

	// Any authenticated user may update.
	rec := s.do(http.MethodPut, path, gin.H{"likes": 2}, otherToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeObject(t, rec)
	assert.EqualValues(t, 2, updated["likes"])
	assert.Equal(t, "t", updated["title"])
	assert.Equal(t, blog["user"], updated["user"])

	rec = s.do(http.MethodPut, path, gin.H{"title": ""}, ownerToken)
	assertErrorBody(t, rec, http.StatusBadRequest, "title is required")

	rec = s.do(http.MethodPut, "/api/blogs/"+uuid.NewString(), gin.H{"likes": 3}, ownerToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPut, "/api/blogs/bad", gin.H{"likes": 3}, ownerToken)
	assertErrorBody(t, rec, http.StatusBadRequest, "malformatted id")

	rec = s.do(http.MethodPut, path, gin.H{"likes": 3}, "")
	assertErrorBody(t, rec, http.StatusUnauthorized, "token missing")
}

func TestGetBlog(t *testing.T) {
	s := newTestServer(t)
	s.register("root", "Root", "secret")
	token := s.login("root", "secret")
	blog := s.createBlog(token, gin.H{"title": "t", "url": "http://u"})

	rec := s.do(http.MethodGet, "/api/blogs/"+blog["id"].(string), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, blog["id"], decodeObject(t, rec)["id"])

	rec = s.do(http.MethodGet, "/api/blogs/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRegister_Rules(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name     string
		body     gin.H
		expected string
	}{
		{"missing password", gin.H{"username": "valid"}, "Password is required"},
		{"short password", gin.H{"username": "valid", "password": "ab"}, "Password must be at least 3 characters long"},
		{"password checked first", gin.H{"username": "x", "password": "ab"}, "Password must be at least 3 characters long"},
		{"missing username", gin.H{"password": "secret"}, "Username is required"},
		{"short username", gin.H{"username": "ab", "password": "secret"}, "Username must be at least 3 characters long"},
	}
	for _, tc := range cases {
		rec := s.do(http.MethodPost, "/api/users", tc.body, "")
		assertErrorBody(t, rec, http.StatusBadRequest, tc.expected)
	}

	// Three characters is the boundary on both fields.
	created := s.register("abc", "Boundary", "xyz")
	assert.Equal(t, "abc", created["username"])
	assert.Equal(t, "Boundary", created["name"])
	assert.Equal(t, []interface{}{}, created["blogs"])

	rec := s.do(http.MethodPost, "/api/users", gin.H{"username": "abc", "password": "other"}, "")
	assertErrorBody(t, rec, http.StatusBadRequest, "username must be unique")

	rec = s.do(http.MethodGet, "/api/users", nil, "")
	assert.Len(t, decodeList(t, rec), 1)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	s.register("root", "Root", "secret")

	rec := s.do(http.MethodPost, "/api/login", gin.H{"username": "root", "password": "wrong"}, "")
	assertErrorBody(t, rec, http.StatusUnauthorized, "invalid username or password")

	rec = s.do(http.MethodPost, "/api/login", gin.H{"username": "nobody", "password": "secret"}, "")
	assertErrorBody(t, rec, http.StatusUnauthorized, "invalid username or password")
}

func TestLogin_ReturnsProfile(t *testing.T) {
	s := newTestServer(t)
	s.register("root", "Superuser", "secret")

	rec := s.do(http.MethodPost, "/api/login", gin.H{"username": "root", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.Equal(t, "root", body["username"])
	assert.Equal(t, "Superuser", body["name"])
	assert.NotEmpty(t, body["token"])
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	s.register("root", "Root", "secret")
	token := s.login("root", "secret")
	s.createBlog(token, gin.H{"title": "a", "author": "Edsger W. Dijkstra", "url": "http://a", "likes": 5})
	s.createBlog(token, gin.H{"title": "b", "author": "Robert C. Martin", "url": "http://b", "likes": 12})
	s.createBlog(token, gin.H{"title": "c", "author": "Edsger W. Dijkstra", "url": "http://c", "likes": 10})

	rec := s.do(http.MethodGet, "/api/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.EqualValues(t, 27, body["total_likes"])
}

func TestListCache_InvalidatedOnWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Redis = config.RedisConfig{Enabled: true, Addr: mr.Addr(), BlogListTTLSeconds: 60, DirtyTTLSeconds: 1}
	})
	s.register("root", "Root", "secret")
	token := s.login("root", "secret")

	rec := s.do(http.MethodGet, "/api/blogs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))

	s.createBlog(token, gin.H{"title": "fresh", "url": "http://fresh"})

	rec = s.do(http.MethodGet, "/api/blogs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	deps := body["dependencies"].(map[string]interface{})
	assert.Equal(t, true, deps["database"].(map[string]interface{})["ok"])
	assert.Equal(t, "disabled", deps["redis"].(map[string]interface{})["message"])
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/blogs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
