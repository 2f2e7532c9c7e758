package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boula1997/garioush/internal/api"
	"github.com/boula1997/garioush/internal/storage"
)

type memKV struct {
	values map[string]string
	getErr error
}

func newMemKV() *memKV {
	return &memKV{values: make(map[string]string)}
}

func (m *memKV) Get(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memKV) Remove(key string) error {
	delete(m.values, key)
	return nil
}

func newLoginServer(t *testing.T, token string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Write([]byte(`{"success":true,"data":{"token":"` + token + `"}}`))
		default:
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		}
	}))
}

func newManager(t *testing.T, kv KeyValue, baseURL string) (*Manager, *api.Client) {
	t.Helper()

	client := api.NewClient(baseURL, "en", time.Second, zap.NewNop())
	return NewManager(kv, client, zap.NewNop()), client
}

func TestLoadWithoutPersistedToken(t *testing.T) {
	m, _ := newManager(t, newMemKV(), "http://localhost")

	m.Load()

	if m.Authenticated() {
		t.Fatal("fresh install must be anonymous")
	}
	if _, err := m.RequireSession(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestLoadTreatsReadErrorAsAnonymous(t *testing.T) {
	kv := newMemKV()
	kv.getErr = errors.New("disk failure")

	m, _ := newManager(t, kv, "http://localhost")

	m.Load()

	if m.Authenticated() {
		t.Fatal("read error must degrade to anonymous")
	}
}

func TestLoginPersistsTokenAndSurvivesRestart(t *testing.T) {
	ts := newLoginServer(t, "issued-token")
	defer ts.Close()

	kv := newMemKV()
	m, _ := newManager(t, kv, ts.URL)

	if err := m.Login(context.Background(), "user@example.com", "pass"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !m.Authenticated() {
		t.Fatal("session must be authenticated after login")
	}

	// Имитация перезапуска приложения: новый менеджер поверх того же
	// хранилища.
	m2, _ := newManager(t, kv, ts.URL)
	m2.Load()

	token, err := m2.RequireSession()
	if err != nil {
		t.Fatalf("require session after restart: %v", err)
	}
	if token != "issued-token" {
		t.Fatalf("token = %q, want %q", token, "issued-token")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"invalid credentials"}`))
	}))
	defer ts.Close()

	m, _ := newManager(t, newMemKV(), ts.URL)

	err := m.Login(context.Background(), "user@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if m.Authenticated() {
		t.Fatal("failed login must leave session anonymous")
	}
}

func TestLogoutClearsTokenBeforeInvalidations(t *testing.T) {
	ts := newLoginServer(t, "issued-token")
	defer ts.Close()

	kv := newMemKV()
	m, _ := newManager(t, kv, ts.URL)

	if err := m.Login(context.Background(), "user@example.com", "pass"); err != nil {
		t.Fatalf("login: %v", err)
	}

	var sawTokenDuringInvalidation bool
	m.OnInvalidate(func() {
		_, ok := m.Token()
		sawTokenDuringInvalidation = ok
	})

	m.Logout()

	if sawTokenDuringInvalidation {
		t.Fatal("token must be cleared before invalidation hooks run")
	}
	if _, err := kv.Get(storage.KeyAuthToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("persisted token err = %v, want ErrNotFound", err)
	}
}

func TestServerRejectionForcesLogoutAndRedirect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}))
	defer ts.Close()

	kv := newMemKV()
	kv.values[storage.KeyAuthToken] = "stale-token"

	m, client := newManager(t, kv, ts.URL)
	m.Load()

	var redirected bool
	m.OnAuthRedirect(func() { redirected = true })

	_, err := client.Cart(context.Background())
	if !api.IsAuthRequired(err) {
		t.Fatalf("err = %v, want auth required", err)
	}
	if m.Authenticated() {
		t.Fatal("401 must force logout")
	}
	if !redirected {
		t.Fatal("401 must signal a redirect to login")
	}
}
