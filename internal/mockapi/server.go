package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server реализует HTTP-интерфейс мок-бэкенда витрины.
type Server struct {
	state  *state
	auth   *authMiddleware
	logger *zap.Logger
}

// NewServer создаёт мок-сервер с демонстрационным каталогом и
// демо-пользователем demo@garioush.app / demo1234.
func NewServer(secret string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		state:  newState(),
		auth:   newAuthMiddleware(secret),
		logger: logger,
	}
}

// SetupRouter настраивает HTTP-маршруты мок-сервера.
func (s *Server) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.getCategories)
		r.Get("/categorySubcategories", s.getSubcategories)
		r.Get("/subcategoryProducts", s.getProducts)
		r.Get("/product/{id}", s.getProduct)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)

			r.Group(func(r chi.Router) {
				r.Use(s.auth.middleware)

				r.Get("/cart", s.getCart)
				r.Post("/cart/add", s.cartAdd)
				r.Post("/cart/increase", s.cartIncrease)
				r.Post("/cart/decrease", s.cartDecrease)
				r.Post("/cart/remove", s.cartRemove)

				r.Get("/orders", s.getOrders)
				r.Get("/orders/{id}", s.getOrder)
				r.Post("/orders", s.createOrder)

				r.Get("/profile", s.getProfile)
				r.Post("/profile", s.updateProfile)

				r.Get("/notifications", s.getNotifications)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return r
}

// Конверты ответов намеренно различаются между эндпоинтами — так же, как
// у реального бэкенда. Клиентский слой обязан приводить их к одному виду.

func (s *Server) writeSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{"success": true}
	if data != nil {
		resp["data"] = data
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	// Логический отказ при транспортном 200 — особенность бэкенда.
	if err := json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message}); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeStatusEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"status": http.StatusOK, "data": data}); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeBareData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": data}); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

type registerRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	FullName             string `json:"fullname"`
	Phone                string `json:"phone"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		s.writeFailure(w, "email and password are required")
		return
	}
	if req.Password != req.PasswordConfirmation {
		s.writeFailure(w, "password confirmation does not match")
		return
	}

	if err := s.state.register(req.Email, req.Password, req.FullName, req.Phone); err != nil {
		if errors.Is(err, ErrUserExists) {
			s.writeFailure(w, "email already taken")
			return
		}
		s.logger.Error("register error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.writeSuccess(w, nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := s.state.authenticate(req.Email, req.Password)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	token, err := s.auth.issueToken(userID)
	if err != nil {
		s.logger.Error("issue token", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.writeSuccess(w, map[string]string{"token": token})
}

func (s *Server) getCategories(w http.ResponseWriter, r *http.Request) {
	s.writeStatusEnvelope(w, map[string]any{"categories": s.state.categories})
}

func (s *Server) getSubcategories(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	result := s.state.subcategories[:0:0]
	for _, sub := range s.state.subcategories {
		if sub.CategoryID == categoryID {
			result = append(result, sub)
		}
	}

	s.writeBareData(w, result)
}

func (s *Server) getProducts(w http.ResponseWriter, r *http.Request) {
	subcategoryID, err := strconv.ParseInt(r.URL.Query().Get("subcategory_id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	result := s.state.products[:0:0]
	for _, p := range s.state.products {
		if p.SubcategoryID == subcategoryID {
			result = append(result, p)
		}
	}

	s.writeBareData(w, result)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, ok := s.state.productByID(id)
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	s.writeSuccess(w, product)
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	s.writeSuccess(w, s.state.cart(userID))
}

type cartLineRequest struct {
	LineID    string `json:"line_id"`
	ProductID int64  `json:"product_id"`
}

func (s *Server) cartMutation(w http.ResponseWriter, r *http.Request, mutate func(userID int64, req cartLineRequest) error) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req cartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := mutate(userID, req); err != nil {
		if errors.Is(err, ErrLineNotFound) {
			s.writeFailure(w, "cart line not found")
			return
		}
		s.logger.Error("cart mutation error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.writeSuccess(w, nil)
}

func (s *Server) cartAdd(w http.ResponseWriter, r *http.Request) {
	s.cartMutation(w, r, func(userID int64, req cartLineRequest) error {
		return s.state.cartAdd(userID, req.ProductID)
	})
}

func (s *Server) cartIncrease(w http.ResponseWriter, r *http.Request) {
	s.cartMutation(w, r, func(userID int64, req cartLineRequest) error {
		return s.state.cartIncrement(userID, req.LineID)
	})
}

func (s *Server) cartDecrease(w http.ResponseWriter, r *http.Request) {
	s.cartMutation(w, r, func(userID int64, req cartLineRequest) error {
		return s.state.cartDecrement(userID, req.LineID)
	})
}

func (s *Server) cartRemove(w http.ResponseWriter, r *http.Request) {
	s.cartMutation(w, r, func(userID int64, req cartLineRequest) error {
		return s.state.cartRemove(userID, req.LineID)
	})
}

func (s *Server) getOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	s.writeSuccess(w, s.state.ordersByUser(userID, perPage))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, ok := s.state.orderByID(userID, orderID)
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	s.writeSuccess(w, order)
}

type createOrderRequest struct {
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
	Payment string `json:"payment_method"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Address == "" || req.Mobile == "" {
		s.writeFailure(w, "address and mobile are required")
		return
	}

	order, err := s.state.createOrder(userID, req.Address, req.Payment)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoEnoughBalance):
			// Буквальная строка из контракта реального бэкенда.
			s.writeFailure(w, "NoEnoughBalance")
		case errors.Is(err, ErrEmptyCart):
			s.writeFailure(w, "cart is empty")
		default:
			s.logger.Error("create order error", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	s.writeSuccess(w, order)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	u, found := s.state.userByID(userID)
	if !found {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	s.writeSuccess(w, map[string]any{
		"fullname":       u.fullName,
		"email":          u.email,
		"phone":          u.phone,
		"wallet_balance": u.wallet,
	})
}

type updateProfileRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := s.state.updateProfile(userID, req.FullName, req.Email, req.Phone); err != nil {
		s.logger.Error("update profile error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.writeSuccess(w, nil)
}

func (s *Server) getNotifications(w http.ResponseWriter, r *http.Request) {
	s.writeSuccess(w, s.state.notifications)
}
