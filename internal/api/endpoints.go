package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boula1997/garioush/internal/model"
)

// RegisterRequest содержит поля формы регистрации.
type RegisterRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	FullName             string `json:"fullname"`
	Phone                string `json:"phone"`
}

// UpdateProfileRequest содержит редактируемое подмножество профиля.
// Обновление всегда отправляет подмножество целиком.
type UpdateProfileRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// CreateOrderRequest содержит данные оформления заказа.
type CreateOrderRequest struct {
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
	Payment string `json:"payment_method"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type lineRequest struct {
	LineID string `json:"line_id"`
}

type addLineRequest struct {
	ProductID int64 `json:"product_id"`
}

// Register создаёт новую учётную запись. Успешная регистрация не выполняет
// вход автоматически.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, nil, false)
}

// Login выполняет аутентификацию и возвращает выданный сервером токен.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", applicationError(http.StatusOK, "login response without token")
	}
	return resp.Token, nil
}

// Categories возвращает список категорий каталога.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	// У этого эндпоинта собственная обёртка данных внутри конверта.
	var resp struct {
		Categories []model.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// Subcategories возвращает подкатегории указанной категории.
func (c *Client) Subcategories(ctx context.Context, categoryID int64) ([]model.Subcategory, error) {
	query := url.Values{"category_id": {strconv.FormatInt(categoryID, 10)}}

	var resp []model.Subcategory
	if err := c.do(ctx, http.MethodGet, "/api/categorySubcategories", query, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp, nil
}

// Products возвращает товары указанной подкатегории.
func (c *Client) Products(ctx context.Context, subcategoryID int64) ([]model.Product, error) {
	query := url.Values{"subcategory_id": {strconv.FormatInt(subcategoryID, 10)}}

	var resp []model.Product
	if err := c.do(ctx, http.MethodGet, "/api/subcategoryProducts", query, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp, nil
}

// Product возвращает карточку одного товара.
func (c *Client) Product(ctx context.Context, id int64) (*model.Product, error) {
	var resp model.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/product/%d", id), nil, nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cart возвращает текущее состояние корзины пользователя.
func (c *Client) Cart(ctx context.Context) (*model.CartSnapshot, error) {
	var resp model.CartSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/auth/cart", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CartAdd добавляет товар в корзину.
func (c *Client) CartAdd(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodPost, "/api/auth/cart/add", nil, addLineRequest{ProductID: productID}, nil, true)
}

// CartIncrement увеличивает количество по позиции корзины.
func (c *Client) CartIncrement(ctx context.Context, lineID string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/cart/increase", nil, lineRequest{LineID: lineID}, nil, true)
}

// CartDecrement уменьшает количество по позиции корзины.
func (c *Client) CartDecrement(ctx context.Context, lineID string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/cart/decrease", nil, lineRequest{LineID: lineID}, nil, true)
}

// CartRemove удаляет позицию из корзины.
func (c *Client) CartRemove(ctx context.Context, lineID string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/cart/remove", nil, lineRequest{LineID: lineID}, nil, true)
}

// Orders возвращает заказы текущего пользователя.
func (c *Client) Orders(ctx context.Context, perPage int) ([]model.OrderSnapshot, error) {
	query := url.Values{}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}

	var resp []model.OrderSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/auth/orders", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// Order возвращает один заказ по идентификатору.
func (c *Client) Order(ctx context.Context, id int64) (*model.OrderSnapshot, error) {
	var resp model.OrderSnapshot
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/auth/orders/%d", id), nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateOrder оформляет заказ из текущей корзины. Ответ сервера содержит
// созданный заказ целиком.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.OrderSnapshot, error) {
	var resp model.OrderSnapshot
	if err := c.do(ctx, http.MethodPost, "/api/auth/orders", nil, req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile возвращает профиль текущего пользователя.
func (c *Client) Profile(ctx context.Context) (*model.ProfileSnapshot, error) {
	var resp model.ProfileSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile обновляет редактируемые поля профиля.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) error {
	return c.do(ctx, http.MethodPost, "/api/auth/profile", nil, req, nil, true)
}

// Notifications возвращает уведомления текущего пользователя.
func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	var resp []model.Notification
	if err := c.do(ctx, http.MethodGet, "/api/auth/notifications", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}
