// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldhub/internal/auth"
	"github.com/tomtom215/fieldhub/internal/authz"
	"github.com/tomtom215/fieldhub/internal/config"
	"github.com/tomtom215/fieldhub/internal/database"
	"github.com/tomtom215/fieldhub/internal/service"
)

// testDBSemaphore serializes DuckDB usage across tests. Concurrent
// in-memory databases under CI resource pressure can hang in CGO calls.
var testDBSemaphore = make(chan struct{}, 1)

var testDBMutex sync.Mutex

// testEnv is an HTTP test server over the full stack: router, auth
// middleware, services, resolver, and an in-memory database.
type testEnv struct {
	server *httptest.Server
	db     *database.DB
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	testDBMutex.Lock()
	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
		Threads:   2,
	})
	testDBMutex.Unlock()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	resolver := authz.NewResolver(db, &authz.ResolverConfig{CacheEnabled: false})
	t.Cleanup(resolver.Close)

	issuer, err := auth.NewTokenIssuer("test-secret-for-http-tests", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}
	authenticator := auth.NewAuthenticator(db, issuer)

	cfg := &config.Config{
		API: config.APIConfig{DefaultPageSize: 10, MaxPageSize: 100},
		Security: config.SecurityConfig{
			RateLimitReqs: 0, // disabled for tests
		},
	}

	services := service.New(db, resolver, service.NopPublisher{})
	handler := NewHandler(services, authenticator, db, cfg)
	router := NewRouter(handler, NewMiddleware(&cfg.Security), authenticator)

	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)

	return &testEnv{server: server, db: db}
}

// apiEnvelope mirrors models.APIResponse with raw data for per-test
// decoding.
type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		Violations []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"violations"`
	} `json:"error"`
}

// do issues a request against the test server. A non-empty token is
// attached as a bearer credential.
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, *apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, env.server.URL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	envelope := &apiEnvelope{}
	if err := json.NewDecoder(resp.Body).Decode(envelope); err != nil {
		t.Fatalf("Failed to decode response envelope: %v", err)
	}
	return resp.StatusCode, envelope
}

// registerAndLogin creates an account over the API and returns its
// bearer token and user id.
func (env *testEnv) registerAndLogin(t *testing.T, username string) (string, int64) {
	t.Helper()

	password := "s3cret-" + username
	status, envelope := env.do(t, http.MethodPost, "/api/v1/users", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("Register %q: status = %d, error = %+v", username, status, envelope.Error)
	}

	status, envelope = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("Login %q: status = %d", username, status)
	}

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(envelope.Data, &login); err != nil {
		t.Fatalf("Failed to decode login payload: %v", err)
	}
	return login.Token, login.User.ID
}

func TestLoginFlow(t *testing.T) {
	env := setupTestServer(t)

	token, _ := env.registerAndLogin(t, "alice")

	t.Run("whoami with token", func(t *testing.T) {
		status, envelope := env.do(t, http.MethodGet, "/api/v1/auth/whoami", token, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		var user struct {
			Username string `json:"username"`
		}
		if err := json.Unmarshal(envelope.Data, &user); err != nil {
			t.Fatalf("Failed to decode user: %v", err)
		}
		if user.Username != "alice" {
			t.Errorf("username = %q, want alice", user.Username)
		}
	})

	t.Run("whoami without token", func(t *testing.T) {
		status, envelope := env.do(t, http.MethodGet, "/api/v1/auth/whoami", "", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", status)
		}
		if envelope.Error == nil || envelope.Error.Code != "UNAUTHENTICATED" {
			t.Errorf("error = %+v, want UNAUTHENTICATED", envelope.Error)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		status, envelope := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "alice",
			"password": "not-it",
		})
		if status != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", status)
		}
		if envelope.Error == nil || envelope.Error.Code != "BAD_CREDENTIALS" {
			t.Errorf("error = %+v, want BAD_CREDENTIALS", envelope.Error)
		}
	})

	t.Run("garbage token rejected by middleware", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/auth/whoami", nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer not.a.token")
		resp, err := env.server.Client().Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := setupTestServer(t)

	status, _ := env.do(t, http.MethodGet, "/api/v1/health/live", "", nil)
	if status != http.StatusOK {
		t.Fatalf("live status = %d, want 200", status)
	}

	status, envelope := env.do(t, http.MethodGet, "/api/v1/health/ready", "", nil)
	if status != http.StatusOK {
		t.Fatalf("ready status = %d, want 200", status)
	}
	var health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := json.Unmarshal(envelope.Data, &health); err != nil {
		t.Fatalf("Failed to decode health payload: %v", err)
	}
	if health.Status != "ok" || health.Database != "ok" {
		t.Errorf("health = %+v, want ok/ok", health)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.server.Client().Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(body, []byte("go_goroutines")) {
		t.Error("metrics output missing standard collectors")
	}
}

func TestMalformedBody(t *testing.T) {
	env := setupTestServer(t)
	token, _ := env.registerAndLogin(t, "bodycheck")

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/v1/projects",
		bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestInvalidPathID(t *testing.T) {
	env := setupTestServer(t)
	token, _ := env.registerAndLogin(t, "pathcheck")

	status, envelope := env.do(t, http.MethodGet, "/api/v1/projects/abc", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if envelope.Error == nil || envelope.Error.Code != "INVALID_ID" {
		t.Errorf("error = %+v, want INVALID_ID", envelope.Error)
	}
}
