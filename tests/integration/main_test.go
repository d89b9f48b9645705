// tests/integration/main_test.go
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookvault/internal/accounts"
	"bookvault/internal/api"
	"bookvault/internal/books"
	"bookvault/internal/cache"
	"bookvault/internal/ratelimit"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, authBudget int) *testServer {
	t.Helper()

	store := accounts.NewMemory()
	accountsSvc := accounts.NewService(store, store.TokenRepo())
	booksSvc := books.NewService(books.NewMemory(), cache.NewMemory())

	router := api.NewRouter(api.Options{
		Accounts: accounts.NewHandler(accountsSvc),
		Books:    books.NewHandler(booksSvc),
		Limiter:  ratelimit.NewStore(authBudget, time.Minute),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{srv}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, ts.URL+"/api/v1"+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func register(t *testing.T, ts *testServer, name, email, password string) string {
	t.Helper()

	resp := ts.do(t, http.MethodPost, "/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t, 10)

	registerToken := register(t, ts, "Ana", "ana@co.io", "longpass1")

	// Login issues a new, distinct token.
	resp := ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "ana@co.io", "password": "longpass1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
		User  struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"user"`
	}
	decode(t, resp, &login)
	assert.NotEmpty(t, login.Token)
	assert.NotEqual(t, registerToken, login.Token)
	assert.Equal(t, "ana@co.io", login.User.Email)
	assert.Empty(t, login.User.Password, "password must never appear in a response")

	// Wrong password is a 422 with a generic message.
	resp = ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "ana@co.io", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	// Logout revokes only the presented token.
	resp = ts.do(t, http.MethodPost, "/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/logout", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/logout", registerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "the register token must survive the other logout")
	resp.Body.Close()
}

func TestBookLifecycle(t *testing.T) {
	ts := newTestServer(t, 10)
	token := register(t, ts, "Ana", "ana@co.io", "longpass1")

	payload := map[string]string{
		"title":   "1984",
		"author":  "George Orwell",
		"summary": "A dystopian novel about surveillance and control.",
		"isbn":    "9780451524935",
	}

	resp := ts.do(t, http.MethodPost, "/books", token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data books.Book `json:"data"`
	}
	decode(t, resp, &created)
	id := created.Data.ID.String()
	assert.Equal(t, "1984", created.Data.Title)

	// Public read, which also populates the cache.
	resp = ts.do(t, http.MethodGet, "/books/"+id, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Data books.Book `json:"data"`
	}
	decode(t, resp, &got)
	assert.Equal(t, payload["isbn"], got.Data.ISBN)

	// Update must invalidate the cached entry.
	resp = ts.do(t, http.MethodPatch, "/books/"+id, token, map[string]string{
		"title": "Nineteen Eighty-Four",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/books/"+id, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &got)
	assert.Equal(t, "Nineteen Eighty-Four", got.Data.Title)

	resp = ts.do(t, http.MethodDelete, "/books/"+id, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/books/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestMutationsRequireAuth(t *testing.T) {
	ts := newTestServer(t, 10)

	payload := map[string]string{
		"title":   "1984",
		"author":  "George Orwell",
		"summary": "A dystopian novel about surveillance and control.",
		"isbn":    "9780451524935",
	}

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/books", payload},
		{http.MethodPut, "/books/6e7f3b7e-0000-4000-8000-000000000000", payload},
		{http.MethodDelete, "/books/6e7f3b7e-0000-4000-8000-000000000000", nil},
		{http.MethodPost, "/logout", nil},
	}

	for _, tc := range cases {
		resp := ts.do(t, tc.method, tc.path, "", tc.body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
		resp.Body.Close()

		resp = ts.do(t, tc.method, tc.path, "bogus-token", tc.body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s with bad token", tc.method, tc.path)
		resp.Body.Close()
	}

	// Nothing was persisted by the rejected creates.
	resp := ts.do(t, http.MethodGet, "/books", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	decode(t, resp, &list)
	assert.Zero(t, list.Meta.Total)
}

func TestPublicReadsNeedNoAuth(t *testing.T) {
	ts := newTestServer(t, 10)
	token := register(t, ts, "Ana", "ana@co.io", "longpass1")

	for i := 0; i < 3; i++ {
		resp := ts.do(t, http.MethodPost, "/books", token, map[string]string{
			"title":   fmt.Sprintf("Book %d", i),
			"author":  "George Orwell",
			"summary": "A dystopian novel about surveillance and control.",
			"isbn":    fmt.Sprintf("978045152493%d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := ts.do(t, http.MethodGet, "/books?page=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []books.Book `json:"data"`
		Meta struct {
			CurrentPage int `json:"current_page"`
			PerPage     int `json:"per_page"`
			Total       int `json:"total"`
		} `json:"meta"`
	}
	decode(t, resp, &list)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, 2, list.Meta.CurrentPage)
	assert.Equal(t, 2, list.Meta.PerPage)
	assert.Equal(t, 3, list.Meta.Total)
}

func TestAuthEndpointsAreRateLimited(t *testing.T) {
	ts := newTestServer(t, 3)

	// Exhaust the budget.
	for i := 0; i < 3; i++ {
		resp := ts.do(t, http.MethodPost, "/login", "", map[string]string{
			"email": "ana@co.io", "password": "wrong",
		})
		require.NotEqual(t, http.StatusTooManyRequests, resp.StatusCode)
		resp.Body.Close()
	}

	resp := ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "ana@co.io", "password": "wrong",
	})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	resp.Body.Close()

	// Other endpoints are unaffected.
	resp = ts.do(t, http.MethodGet, "/books", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
