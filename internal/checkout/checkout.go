// Package checkout координирует оформление заказа — единственную операцию,
// затрагивающую сразу несколько ресурсов: корзину, профиль и заказы.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/boula1997/garioush/internal/api"
	"github.com/boula1997/garioush/internal/model"
	"github.com/boula1997/garioush/internal/store"
	"github.com/boula1997/garioush/internal/validation"
)

// Payment перечисляет способы оплаты заказа.
type Payment string

const (
	PaymentWallet     Payment = "wallet"
	PaymentCreditCard Payment = "credit_card"
	PaymentCash       Payment = "cash"
)

// Сервер сообщает о нехватке средств буквальной строкой в message; у
// бэкенда нет стабильного контракта кодов ошибок, поэтому сопоставление
// выполняется по точному тексту.
const noEnoughBalanceMessage = "NoEnoughBalance"

// ErrInsufficientBalance возвращается, когда сервер отклонил оплату
// кошельком из-за нехватки средств.
var ErrInsufficientBalance = errors.New("insufficient wallet balance")

// ValidationError описывает локальную ошибку валидации формы оформления.
// Такие ошибки разрешаются целиком на клиенте и не доходят до сети.
type ValidationError struct {
	Field string
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field: %s", e.Field)
}

// Flow связывает хранилища корзины, профиля и заказов в транзакцию
// оформления.
type Flow struct {
	client  *api.Client
	cart    *store.CartStore
	profile *store.ProfileStore
	orders  *store.OrdersStore
	logger  *zap.Logger
}

// NewFlow создаёт координатор оформления заказа.
func NewFlow(client *api.Client, cart *store.CartStore, profile *store.ProfileStore, orders *store.OrdersStore, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Flow{
		client:  client,
		cart:    cart,
		profile: profile,
		orders:  orders,
		logger:  logger,
	}
}

// SubmitOrder оформляет заказ из текущей корзины. Успешный ответ содержит
// созданный заказ; он помещается в хранилище заказов напрямую, без
// дополнительной выборки. При любой ошибке корзина остаётся нетронутой.
func (f *Flow) SubmitOrder(ctx context.Context, address, mobile string, payment Payment) (*model.OrderSnapshot, error) {
	if address == "" {
		return nil, &ValidationError{Field: "address"}
	}
	if !validation.IsValidMobile(mobile) {
		return nil, &ValidationError{Field: "mobile"}
	}

	if payment == PaymentWallet {
		// Локальная проверка баланса — только подсказка интерфейсу.
		// Авторитетная проверка выполняется сервером, поэтому запрос
		// отправляется в любом случае.
		if balance, total, ok := f.walletPrecheck(); ok && balance < total {
			f.logger.Info("wallet balance below cart total, server will decide",
				zap.Float64("balance", balance),
				zap.Float64("total", total))
		}
	}

	order, err := f.client.CreateOrder(ctx, api.CreateOrderRequest{
		Address: address,
		Mobile:  mobile,
		Payment: string(payment),
	})
	if err != nil {
		if apiErr, ok := api.AsError(err); ok && apiErr.Kind == api.KindApplication && apiErr.Message == noEnoughBalanceMessage {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	f.orders.Insert(*order)

	// Сервер очистил корзину при создании заказа; перечитываем её
	// каноническое состояние.
	f.cart.Fetch(ctx)

	f.logger.Info("order created", zap.Int64("orderID", order.ID))
	return order, nil
}

// walletPrecheck возвращает баланс кошелька и итог корзины из последних
// снимков, если оба уже загружены.
func (f *Flow) walletPrecheck() (balance, total float64, ok bool) {
	profileState := f.profile.State()
	cartState := f.cart.State()

	if profileState.Data == nil || cartState.Data == nil {
		return 0, 0, false
	}
	return profileState.Data.WalletBalance, cartState.Data.Total, true
}
