// Package model содержит снимки удалённых ресурсов витрины garioush.
package model

import "time"

// Category представляет категорию каталога автозапчастей.
type Category struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image"`
}

// Subcategory представляет подкатегорию внутри категории каталога.
type Subcategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Title      string `json:"title"`
	ImageURL   string `json:"image"`
}

// Product представляет товар каталога.
type Product struct {
	ID            int64   `json:"id"`
	SubcategoryID int64   `json:"subcategory_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image"`
}

// CartLine описывает одну позицию корзины.
type CartLine struct {
	LineID    string  `json:"line_id"`
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image"`
}

// CartSnapshot представляет состояние корзины, рассчитанное сервером.
// Итоговая сумма берётся только из ответа сервера и никогда не
// пересчитывается на клиенте.
type CartSnapshot struct {
	Items []CartLine `json:"items"`
	Total float64    `json:"total"`
}

// Line возвращает позицию корзины по её идентификатору.
func (c *CartSnapshot) Line(lineID string) (CartLine, bool) {
	for _, l := range c.Items {
		if l.LineID == lineID {
			return l, true
		}
	}
	return CartLine{}, false
}

// OrderLine описывает одну позицию оформленного заказа.
type OrderLine struct {
	Title     string  `json:"title"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderSnapshot представляет заказ пользователя. Статус заказа — строка,
// определяемая сервером; клиент её не интерпретирует, а только отображает.
type OrderSnapshot struct {
	ID        int64       `json:"id"`
	Status    string      `json:"status"`
	Total     float64     `json:"total"`
	Address   string      `json:"address"`
	CreatedAt time.Time   `json:"created_at"`
	Lines     []OrderLine `json:"lines"`
}

// ProfileSnapshot представляет профиль текущего пользователя.
type ProfileSnapshot struct {
	FullName      string  `json:"fullname"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	ImageURL      string  `json:"image"`
	WalletBalance float64 `json:"wallet_balance"`
}

// Notification представляет уведомление пользователя.
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
