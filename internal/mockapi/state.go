// Package mockapi реализует локальный сервер, воспроизводящий API бэкенда
// витрины garioush, включая разнородные конверты ответов реального бэкенда.
// Используется для локальной разработки и в тестах клиентского слоя.
package mockapi

import (
	"crypto/sha256"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boula1997/garioush/internal/model"
)

var (
	// ErrUserExists возвращается при регистрации с занятым email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials возвращается при неверных учётных данных.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLineNotFound возвращается при обращении к отсутствующей позиции
	// корзины.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrEmptyCart возвращается при оформлении заказа из пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoEnoughBalance возвращается при нехватке средств кошелька.
	ErrNoEnoughBalance = errors.New("NoEnoughBalance")
)

type user struct {
	id           int64
	email        string
	passwordHash [32]byte
	fullName     string
	phone        string
	wallet       float64
}

type cartLine struct {
	lineID    string
	productID int64
	quantity  int
}

// state хранит данные мок-сервера в памяти.
type state struct {
	mu sync.Mutex

	nextUserID  int64
	nextOrderID int64

	users  map[string]*user // по email
	carts  map[int64][]cartLine
	orders map[int64][]model.OrderSnapshot

	categories    []model.Category
	subcategories []model.Subcategory
	products      []model.Product
	notifications []model.Notification
}

func newState() *state {
	s := &state{
		nextUserID:  1,
		nextOrderID: 100,
		users:       make(map[string]*user),
		carts:       make(map[int64][]cartLine),
		orders:      make(map[int64][]model.OrderSnapshot),
	}
	s.seed()
	return s
}

// seed наполняет каталог демонстрационными автозапчастями и создаёт
// демо-пользователя.
func (s *state) seed() {
	s.categories = []model.Category{
		{ID: 1, Title: "Oils & Fluids", ImageURL: "/images/oils.jpg"},
		{ID: 2, Title: "Filters", ImageURL: "/images/filters.jpg"},
		{ID: 3, Title: "Brakes", ImageURL: "/images/brakes.jpg"},
	}
	s.subcategories = []model.Subcategory{
		{ID: 10, CategoryID: 1, Title: "Engine Oils"},
		{ID: 11, CategoryID: 1, Title: "Coolants"},
		{ID: 20, CategoryID: 2, Title: "Air Filters"},
		{ID: 21, CategoryID: 2, Title: "Oil Filters"},
		{ID: 30, CategoryID: 3, Title: "Brake Pads"},
	}
	s.products = []model.Product{
		{ID: 100, SubcategoryID: 10, Title: "Synthetic Engine Oil 5W-30", Price: 29.99},
		{ID: 101, SubcategoryID: 10, Title: "Synthetic Engine Oil 5W-20", Price: 27.49},
		{ID: 102, SubcategoryID: 11, Title: "Long-Life Coolant 1L", Price: 9.99},
		{ID: 103, SubcategoryID: 20, Title: "Air Filter", Price: 19.99},
		{ID: 104, SubcategoryID: 21, Title: "Oil Filter", Price: 7.99},
		{ID: 105, SubcategoryID: 30, Title: "Ceramic Brake Pads Set", Price: 54.90},
	}
	s.notifications = []model.Notification{
		{ID: 1, Title: "Welcome", Body: "Welcome to garioush!", CreatedAt: time.Now().Add(-24 * time.Hour)},
	}

	demo := &user{
		id:           s.nextUserID,
		email:        "demo@garioush.app",
		passwordHash: hashPassword("demo@garioush.app", "demo1234"),
		fullName:     "Demo User",
		phone:        "+201234567890",
		wallet:       100,
	}
	s.nextUserID++
	s.users[demo.email] = demo
}

// hashPassword строит детерминированный хеш пароля с email в роли соли.
func hashPassword(email, password string) [32]byte {
	return sha256.Sum256([]byte(email + ":" + password))
}

func (s *state) register(email, password, fullName, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[email]; ok {
		return ErrUserExists
	}

	u := &user{
		id:           s.nextUserID,
		email:        email,
		passwordHash: hashPassword(email, password),
		fullName:     fullName,
		phone:        phone,
	}
	s.nextUserID++
	s.users[email] = u

	return nil
}

func (s *state) authenticate(email, password string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok || u.passwordHash != hashPassword(email, password) {
		return 0, ErrInvalidCredentials
	}
	return u.id, nil
}

func (s *state) userByID(id int64) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.id == id {
			return u, true
		}
	}
	return nil, false
}

func (s *state) productByID(id int64) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// cartSnapshot собирает снимок корзины с серверным расчётом итога.
// Вызывается под mu.
func (s *state) cartSnapshot(userID int64) model.CartSnapshot {
	snapshot := model.CartSnapshot{Items: []model.CartLine{}}

	for _, line := range s.carts[userID] {
		for _, p := range s.products {
			if p.ID == line.productID {
				snapshot.Items = append(snapshot.Items, model.CartLine{
					LineID:    line.lineID,
					ProductID: p.ID,
					Title:     p.Title,
					UnitPrice: p.Price,
					Quantity:  line.quantity,
					ImageURL:  p.ImageURL,
				})
				snapshot.Total += p.Price * float64(line.quantity)
			}
		}
	}

	return snapshot
}

func (s *state) cart(userID int64) model.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartSnapshot(userID)
}

func (s *state) cartAdd(userID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, p := range s.products {
		if p.ID == productID {
			found = true
			break
		}
	}
	if !found {
		return ErrLineNotFound
	}

	for i, line := range s.carts[userID] {
		if line.productID == productID {
			s.carts[userID][i].quantity++
			return nil
		}
	}

	s.carts[userID] = append(s.carts[userID], cartLine{
		lineID:    uuid.NewString(),
		productID: productID,
		quantity:  1,
	})
	return nil
}

func (s *state) cartIncrement(userID int64, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.carts[userID] {
		if line.lineID == lineID {
			s.carts[userID][i].quantity++
			return nil
		}
	}
	return ErrLineNotFound
}

func (s *state) cartDecrement(userID int64, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.carts[userID] {
		if line.lineID == lineID {
			if line.quantity > 1 {
				s.carts[userID][i].quantity--
			}
			return nil
		}
	}
	return ErrLineNotFound
}

func (s *state) cartRemove(userID int64, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i, line := range lines {
		if line.lineID == lineID {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

func (s *state) ordersByUser(userID int64, perPage int) []model.OrderSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]model.OrderSnapshot, len(s.orders[userID]))
	copy(orders, s.orders[userID])

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	if perPage > 0 && len(orders) > perPage {
		orders = orders[:perPage]
	}
	return orders
}

func (s *state) orderByID(userID, orderID int64) (model.OrderSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders[userID] {
		if o.ID == orderID {
			return o, true
		}
	}
	return model.OrderSnapshot{}, false
}

// createOrder оформляет заказ из текущей корзины: проверяет баланс при
// оплате кошельком, очищает корзину и возвращает созданный заказ целиком.
func (s *state) createOrder(userID int64, address, payment string) (model.OrderSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.cartSnapshot(userID)
	if len(snapshot.Items) == 0 {
		return model.OrderSnapshot{}, ErrEmptyCart
	}

	var owner *user
	for _, u := range s.users {
		if u.id == userID {
			owner = u
			break
		}
	}
	if owner == nil {
		return model.OrderSnapshot{}, ErrInvalidCredentials
	}

	if payment == "wallet" {
		if owner.wallet < snapshot.Total {
			return model.OrderSnapshot{}, ErrNoEnoughBalance
		}
		owner.wallet -= snapshot.Total
	}

	order := model.OrderSnapshot{
		ID:        s.nextOrderID,
		Status:    "pending",
		Total:     snapshot.Total,
		Address:   address,
		CreatedAt: time.Now(),
	}
	s.nextOrderID++

	for _, item := range snapshot.Items {
		order.Lines = append(order.Lines, model.OrderLine{
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	s.orders[userID] = append(s.orders[userID], order)
	s.carts[userID] = nil

	return order, nil
}

func (s *state) updateProfile(userID int64, fullName, email, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.id == userID {
			u.fullName = fullName
			u.phone = phone
			if email != "" && email != u.email {
				delete(s.users, u.email)
				u.email = email
				s.users[email] = u
			}
			return nil
		}
	}
	return ErrInvalidCredentials
}
