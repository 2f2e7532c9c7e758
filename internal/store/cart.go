package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/boula1997/garioush/internal/api"
	"github.com/boula1997/garioush/internal/model"
)

// CartStore хранит снимок корзины и операции её изменения. Каждая мутация
// отправляется на сервер, после чего корзина перечитывается целиком:
// количество и итоговая сумма всегда берутся из ответа сервера.
type CartStore struct {
	*Store[model.CartSnapshot]
	client *api.Client
}

// NewCartStore создаёт хранилище корзины текущего пользователя.
func NewCartStore(client *api.Client, guard SessionGuard, logger *zap.Logger) *CartStore {
	return &CartStore{
		Store:  New("cart", client.Cart, guard, logger),
		client: client,
	}
}

// Add добавляет товар в корзину.
func (s *CartStore) Add(ctx context.Context, productID int64) {
	s.Do(ctx, func(ctx context.Context) error {
		return s.client.CartAdd(ctx, productID)
	})
}

// Increment увеличивает количество по позиции корзины.
func (s *CartStore) Increment(ctx context.Context, lineID string) {
	s.Do(ctx, func(ctx context.Context) error {
		return s.client.CartIncrement(ctx, lineID)
	})
}

// Decrement уменьшает количество по позиции корзины. Уменьшение ниже
// единицы отклоняется на клиенте без сетевого вызова и без изменения
// состояния.
func (s *CartStore) Decrement(ctx context.Context, lineID string) {
	state := s.State()
	if state.Data != nil {
		if line, ok := state.Data.Line(lineID); ok && line.Quantity <= 1 {
			return
		}
	}

	s.Do(ctx, func(ctx context.Context) error {
		return s.client.CartDecrement(ctx, lineID)
	})
}

// Remove удаляет позицию из корзины.
func (s *CartStore) Remove(ctx context.Context, lineID string) {
	s.Do(ctx, func(ctx context.Context) error {
		return s.client.CartRemove(ctx, lineID)
	})
}
