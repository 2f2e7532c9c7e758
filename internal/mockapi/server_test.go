package mockapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boula1997/garioush/internal/api"
)

func newTestServer(t *testing.T) *api.Client {
	t.Helper()

	srv := NewServer("test-secret", zap.NewNop())
	ts := httptest.NewServer(srv.SetupRouter())
	t.Cleanup(ts.Close)

	return api.NewClient(ts.URL, "en", 2*time.Second, zap.NewNop())
}

func login(t *testing.T, client *api.Client) {
	t.Helper()

	token, err := client.Login(context.Background(), "demo@garioush.app", "demo1234")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	client.SetTokenProvider(func() (string, bool) { return token, true })
}

func TestCatalogEndpoints(t *testing.T) {
	client := newTestServer(t)
	ctx := context.Background()

	categories, err := client.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("seeded catalog must not be empty")
	}

	subcategories, err := client.Subcategories(ctx, categories[0].ID)
	if err != nil {
		t.Fatalf("subcategories: %v", err)
	}
	if len(subcategories) == 0 {
		t.Fatal("category must have subcategories")
	}

	products, err := client.Products(ctx, subcategories[0].ID)
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if len(products) == 0 {
		t.Fatal("subcategory must have products")
	}

	product, err := client.Product(ctx, products[0].ID)
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if product.ID != products[0].ID {
		t.Fatalf("product id = %d, want %d", product.ID, products[0].ID)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	client := newTestServer(t)
	ctx := context.Background()

	err := client.Register(ctx, api.RegisterRequest{
		Email:                "new@example.com",
		Password:             "secret12",
		PasswordConfirmation: "secret12",
		FullName:             "New User",
		Phone:                "+201112223334",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Повторная регистрация на тот же email — логический отказ при 200.
	err = client.Register(ctx, api.RegisterRequest{
		Email:                "new@example.com",
		Password:             "secret12",
		PasswordConfirmation: "secret12",
	})
	if !api.IsApplication(err) {
		t.Fatalf("err = %v, want application error", err)
	}

	token, err := client.Login(ctx, "new@example.com", "secret12")
	if err != nil {
		t.Fatalf("login after register: %v", err)
	}
	if token == "" {
		t.Fatal("login must return a token")
	}
}

func TestCartLifecycle(t *testing.T) {
	client := newTestServer(t)
	ctx := context.Background()
	login(t, client)

	cart, err := client.Cart(ctx)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("fresh cart must be empty, got %+v", cart.Items)
	}

	if err := client.CartAdd(ctx, 103); err != nil {
		t.Fatalf("cart add: %v", err)
	}

	cart, err = client.Cart(ctx)
	if err != nil {
		t.Fatalf("cart after add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 1 {
		t.Fatalf("unexpected cart: %+v", cart)
	}

	lineID := cart.Items[0].LineID

	if err := client.CartIncrement(ctx, lineID); err != nil {
		t.Fatalf("cart increment: %v", err)
	}

	cart, err = client.Cart(ctx)
	if err != nil {
		t.Fatalf("cart after increment: %v", err)
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", cart.Items[0].Quantity)
	}
	if want := cart.Items[0].UnitPrice * 2; cart.Total != want {
		t.Fatalf("total = %v, want server-computed %v", cart.Total, want)
	}

	if err := client.CartRemove(ctx, lineID); err != nil {
		t.Fatalf("cart remove: %v", err)
	}

	cart, err = client.Cart(ctx)
	if err != nil {
		t.Fatalf("cart after remove: %v", err)
	}
	if len(cart.Items) != 0 || cart.Total != 0 {
		t.Fatalf("cart must be empty after remove, got %+v", cart)
	}
}

func TestCheckoutWithWallet(t *testing.T) {
	client := newTestServer(t)
	ctx := context.Background()
	login(t, client)

	// Демо-кошелёк 100: набираем корзину дороже лимита.
	if err := client.CartAdd(ctx, 105); err != nil {
		t.Fatalf("cart add: %v", err)
	}
	cart, err := client.Cart(ctx)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	lineID := cart.Items[0].LineID
	if err := client.CartIncrement(ctx, lineID); err != nil {
		t.Fatalf("increment: %v", err)
	}

	_, err = client.CreateOrder(ctx, api.CreateOrderRequest{
		Address: "street 1",
		Mobile:  "+201234567890",
		Payment: "wallet",
	})
	apiErr, ok := api.AsError(err)
	if !ok || apiErr.Message != "NoEnoughBalance" {
		t.Fatalf("err = %v, want NoEnoughBalance application error", err)
	}

	// Корзина не изменилась после отказа.
	cart, err = client.Cart(ctx)
	if err != nil {
		t.Fatalf("cart after rejection: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("failed checkout must not mutate the cart, got %+v", cart)
	}

	// Убираем одну штуку — теперь 54.90 <= 100, заказ проходит.
	if err := client.CartDecrement(ctx, lineID); err != nil {
		t.Fatalf("decrement: %v", err)
	}

	order, err := client.CreateOrder(ctx, api.CreateOrderRequest{
		Address: "street 1",
		Mobile:  "+201234567890",
		Payment: "wallet",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != "pending" || len(order.Lines) != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}

	cart, err = client.Cart(ctx)
	if err != nil {
		t.Fatalf("cart after order: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatal("cart must be cleared by successful order")
	}

	orders, err := client.Orders(ctx, 5)
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	got, err := client.Order(ctx, order.ID)
	if err != nil {
		t.Fatalf("order by id: %v", err)
	}
	if got.Total != order.Total {
		t.Fatalf("order total = %v, want %v", got.Total, order.Total)
	}

	profile, err := client.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if want := 100 - order.Total; profile.WalletBalance != want {
		t.Fatalf("wallet = %v, want %v", profile.WalletBalance, want)
	}
}

func TestProtectedEndpointsRejectBadToken(t *testing.T) {
	client := newTestServer(t)
	client.SetTokenProvider(func() (string, bool) { return "not-a-jwt", true })

	_, err := client.Cart(context.Background())
	if !api.IsAuthRequired(err) {
		t.Fatalf("err = %v, want auth required", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	client := newTestServer(t)
	ctx := context.Background()
	login(t, client)

	err := client.UpdateProfile(ctx, api.UpdateProfileRequest{
		FullName: "Renamed User",
		Email:    "demo@garioush.app",
		Phone:    "+209998887776",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}

	profile, err := client.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.FullName != "Renamed User" || profile.Phone != "+209998887776" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}
