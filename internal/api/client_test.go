package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	return NewClient(ts.URL, "en", 2*time.Second, zap.NewNop())
}

func withToken(c *Client, token string) {
	c.SetTokenProvider(func() (string, bool) {
		return token, token != ""
	})
}

func TestHeadersOnAuthenticatedCall(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Fatalf("Authorization = %q, want %q", got, "Bearer token-1")
		}
		if got := r.Header.Get("locale"); got != "ar" {
			t.Fatalf("locale = %q, want %q", got, "ar")
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Fatalf("Accept = %q, want %q", got, "application/json")
		}
		w.Write([]byte(`{"success":true,"data":{"items":[],"total":0}}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	client.SetLocale("ar")
	withToken(client, "token-1")

	if _, err := client.Cart(context.Background()); err != nil {
		t.Fatalf("Cart error: %v", err)
	}
}

func TestEnvelopeSuccessFalseIsApplicationError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"NoEnoughBalance"}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	withToken(client, "token-1")

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Address: "a", Mobile: "123", Payment: "wallet"})
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if apiErr.Kind != KindApplication {
		t.Fatalf("kind = %s, want %s", apiErr.Kind, KindApplication)
	}
	if apiErr.Message != "NoEnoughBalance" {
		t.Fatalf("message = %q, want %q", apiErr.Message, "NoEnoughBalance")
	}
}

func TestEnvelopeStatusShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":200,"data":{"categories":[{"id":1,"title":"Oils"}]}}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)

	categories, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories error: %v", err)
	}
	if len(categories) != 1 || categories[0].Title != "Oils" {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}

func TestBareArrayBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":4,"category_id":1,"title":"Engine oils"}]`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)

	subs, err := client.Subcategories(context.Background(), 1)
	if err != nil {
		t.Fatalf("Subcategories error: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != 4 {
		t.Fatalf("unexpected subcategories: %+v", subs)
	}
}

func TestBareDataBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":7,"title":"Air Filter","price":19.99}]}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)

	products, err := client.Products(context.Background(), 4)
	if err != nil {
		t.Fatalf("Products error: %v", err)
	}
	if len(products) != 1 || products[0].Price != 19.99 {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestShapeMismatchFailsFast(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":"not-an-object"}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	withToken(client, "token-1")

	_, err := client.Cart(context.Background())
	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindApplication {
		t.Fatalf("err = %v, want application error", err)
	}
}

func TestMissingTokenIsAuthRequired(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be dispatched without token")
	}))
	defer ts.Close()

	client := newTestClient(t, ts)

	_, err := client.Cart(context.Background())
	if !IsAuthRequired(err) {
		t.Fatalf("err = %v, want auth required", err)
	}
}

func TestServer401TriggersAuthRequiredHandler(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	withToken(client, "stale-token")

	var handled bool
	client.SetAuthRequiredHandler(func() { handled = true })

	_, err := client.Cart(context.Background())
	if !IsAuthRequired(err) {
		t.Fatalf("err = %v, want auth required", err)
	}
	if !handled {
		t.Fatal("auth required handler was not invoked")
	}
}

func TestLogin401IsNotAuthRequired(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"invalid credentials"}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)

	var handled bool
	client.SetAuthRequiredHandler(func() { handled = true })

	_, err := client.Login(context.Background(), "u@example.com", "bad")
	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindHTTP {
		t.Fatalf("err = %v, want http error", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", apiErr.StatusCode)
	}
	if handled {
		t.Fatal("login failure must not force logout")
	}
}

func TestHTTPErrorCarriesEnvelopeMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false,"message":"phone already taken"}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)

	err := client.Register(context.Background(), RegisterRequest{Email: "u@example.com"})
	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindHTTP {
		t.Fatalf("err = %v, want http error", err)
	}
	if apiErr.Message != "phone already taken" {
		t.Fatalf("message = %q, want %q", apiErr.Message, "phone already taken")
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "en", 50*time.Millisecond, zap.NewNop())

	_, err := client.Categories(context.Background())
	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindNetwork {
		t.Fatalf("err = %v, want network error", err)
	}
}

func TestLoginWithoutTokenInResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)

	_, err := client.Login(context.Background(), "u@example.com", "pass")
	if !IsApplication(err) {
		t.Fatalf("err = %v, want application error", err)
	}
}

func TestEnvelopeWithoutDataFailsFast(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	withToken(client, "token-1")

	// Конверт без data не должен превращаться в нулевой снимок корзины.
	cart, err := client.Cart(context.Background())
	if cart != nil {
		t.Fatalf("cart = %+v, want nil", cart)
	}
	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindApplication {
		t.Fatalf("err = %v, want application error", err)
	}

	if err := client.CartAdd(context.Background(), 1); err != nil {
		t.Fatalf("mutation without expected payload must succeed, got %v", err)
	}
}
