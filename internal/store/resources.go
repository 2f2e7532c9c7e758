package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/boula1997/garioush/internal/api"
	"github.com/boula1997/garioush/internal/model"
)

// OrdersStore хранит список заказов пользователя. Заказы неизменяемы со
// стороны клиента: они только создаются и читаются.
type OrdersStore struct {
	*Store[[]model.OrderSnapshot]
}

// NewOrdersStore создаёт хранилище заказов. perPage ограничивает размер
// страницы при выборке.
func NewOrdersStore(client *api.Client, guard SessionGuard, logger *zap.Logger, perPage int) *OrdersStore {
	fetch := func(ctx context.Context) (*[]model.OrderSnapshot, error) {
		orders, err := client.Orders(ctx, perPage)
		if err != nil {
			return nil, err
		}
		return &orders, nil
	}

	return &OrdersStore{Store: New("orders", fetch, guard, logger)}
}

// Insert помещает созданный заказ в начало снимка без обращения к серверу.
// Оформление заказа возвращает заказ целиком, поэтому повторная выборка
// здесь не нужна.
func (s *OrdersStore) Insert(order model.OrderSnapshot) {
	var orders []model.OrderSnapshot
	if state := s.State(); state.Data != nil {
		orders = append(orders, *state.Data...)
	}
	orders = append([]model.OrderSnapshot{order}, orders...)
	s.Seed(&orders)
}

// ProfileStore хранит профиль пользователя.
type ProfileStore struct {
	*Store[model.ProfileSnapshot]
	client *api.Client
}

// NewProfileStore создаёт хранилище профиля текущего пользователя.
func NewProfileStore(client *api.Client, guard SessionGuard, logger *zap.Logger) *ProfileStore {
	return &ProfileStore{
		Store:  New("profile", client.Profile, guard, logger),
		client: client,
	}
}

// Update отправляет редактируемое подмножество профиля целиком и
// перечитывает профиль.
func (s *ProfileStore) Update(ctx context.Context, req api.UpdateProfileRequest) {
	s.Do(ctx, func(ctx context.Context) error {
		return s.client.UpdateProfile(ctx, req)
	})
}

// NewCategoriesStore создаёт хранилище категорий каталога. Каталог
// доступен без аутентификации.
func NewCategoriesStore(client *api.Client, logger *zap.Logger) *Store[[]model.Category] {
	fetch := func(ctx context.Context) (*[]model.Category, error) {
		categories, err := client.Categories(ctx)
		if err != nil {
			return nil, err
		}
		return &categories, nil
	}

	return New("categories", fetch, nil, logger)
}

// NewSubcategoriesStore создаёт хранилище подкатегорий одной категории.
func NewSubcategoriesStore(client *api.Client, logger *zap.Logger, categoryID int64) *Store[[]model.Subcategory] {
	fetch := func(ctx context.Context) (*[]model.Subcategory, error) {
		subcategories, err := client.Subcategories(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		return &subcategories, nil
	}

	return New("subcategories", fetch, nil, logger)
}

// NewProductsStore создаёт хранилище товаров одной подкатегории.
func NewProductsStore(client *api.Client, logger *zap.Logger, subcategoryID int64) *Store[[]model.Product] {
	fetch := func(ctx context.Context) (*[]model.Product, error) {
		products, err := client.Products(ctx, subcategoryID)
		if err != nil {
			return nil, err
		}
		return &products, nil
	}

	return New("products", fetch, nil, logger)
}

// NewProductStore создаёт хранилище карточки одного товара.
func NewProductStore(client *api.Client, logger *zap.Logger, productID int64) *Store[model.Product] {
	fetch := func(ctx context.Context) (*model.Product, error) {
		return client.Product(ctx, productID)
	}

	return New("product", fetch, nil, logger)
}

// NewNotificationsStore создаёт хранилище уведомлений пользователя.
func NewNotificationsStore(client *api.Client, guard SessionGuard, logger *zap.Logger) *Store[[]model.Notification] {
	fetch := func(ctx context.Context) (*[]model.Notification, error) {
		notifications, err := client.Notifications(ctx)
		if err != nil {
			return nil, err
		}
		return &notifications, nil
	}

	return New("notifications", fetch, guard, logger)
}
