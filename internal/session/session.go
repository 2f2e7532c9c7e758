// Package session реализует управление жизненным циклом сессии пользователя.
// Менеджер сессии — единственный владелец токена аутентификации: он загружает
// его при старте, сохраняет при входе и очищает при выходе. Остальные
// компоненты токен только читают.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/boula1997/garioush/internal/api"
	"github.com/boula1997/garioush/internal/storage"
)

var (
	// ErrNoSession возвращается, когда операция требует аутентификации,
	// а сессия отсутствует.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidCredentials возвращается при неверных учётных данных.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// KeyValue описывает контракт персистентного хранилища, используемый
// менеджером сессии.
type KeyValue interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Manager владеет токеном аутентификации и является единственным источником
// истины о том, аутентифицирован ли пользователь.
type Manager struct {
	store  KeyValue
	client *api.Client
	logger *zap.Logger

	mu            sync.Mutex
	token         string
	invalidations []func()
	onRedirect    func()
}

// NewManager создаёт менеджер сессии и подключает его к HTTP-клиенту:
// менеджер становится источником токена и центральным обработчиком отказов
// аутентификации.
func NewManager(store KeyValue, client *api.Client, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		store:  store,
		client: client,
		logger: logger,
	}

	client.SetTokenProvider(m.Token)
	client.SetAuthRequiredHandler(m.Invalidate)

	return m
}

// Load восстанавливает сессию из персистентного хранилища при старте.
// Сетевых вызовов нет; ошибка чтения трактуется как отсутствие сессии.
func (m *Manager) Load() {
	value, err := m.store.Get(storage.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("read persisted token", zap.Error(err))
		}
		return
	}

	m.mu.Lock()
	m.token = value
	m.mu.Unlock()
}

// Login выполняет вход и сохраняет выданный токен. Ошибки аутентификации
// не повторяются автоматически: пользователь отправляет форму заново.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	token, err := m.client.Login(ctx, email, password)
	if err != nil {
		if apiErr, ok := api.AsError(err); ok {
			switch {
			case apiErr.Kind == api.KindHTTP && apiErr.StatusCode == http.StatusUnauthorized:
				return ErrInvalidCredentials
			case apiErr.Kind == api.KindApplication:
				return ErrInvalidCredentials
			}
		}
		return err
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	if err := m.store.Set(storage.KeyAuthToken, token); err != nil {
		// Сессия действует в памяти, но не переживёт перезапуск.
		m.logger.Warn("persist token", zap.Error(err))
	}

	m.logger.Info("session established")
	return nil
}

// Register создаёт учётную запись. Вход после регистрации пользователь
// выполняет отдельно.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) error {
	return m.client.Register(ctx, req)
}

// Logout завершает сессию: токен очищается до того, как будут сброшены
// зависимые ресурсы, поэтому ни один последующий запрос не сможет уйти со
// старым токеном.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.token = ""
	invalidations := make([]func(), len(m.invalidations))
	copy(invalidations, m.invalidations)
	m.mu.Unlock()

	if err := m.store.Remove(storage.KeyAuthToken); err != nil {
		m.logger.Warn("remove persisted token", zap.Error(err))
	}

	for _, fn := range invalidations {
		fn()
	}

	m.logger.Info("session cleared")
}

// Invalidate обрабатывает отказ сервера в аутентификации: сессия
// завершается и подаётся сигнал перенаправления на экран входа. Хранилища
// ресурсов никогда не показывают сырую ошибку аутентификации сами.
func (m *Manager) Invalidate() {
	m.Logout()

	m.mu.Lock()
	redirect := m.onRedirect
	m.mu.Unlock()

	if redirect != nil {
		redirect()
	}
}

// Token возвращает текущий токен, если сессия активна.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

// Authenticated сообщает, активна ли сессия.
func (m *Manager) Authenticated() bool {
	_, ok := m.Token()
	return ok
}

// RequireSession возвращает токен активной сессии либо ErrNoSession.
// Вызывающий обязан обработать отсутствие сессии переходом на экран входа,
// а не продолжать работу без токена.
func (m *Manager) RequireSession() (string, error) {
	token, ok := m.Token()
	if !ok {
		return "", ErrNoSession
	}
	return token, nil
}

// OnInvalidate регистрирует сброс состояния, выполняемый при завершении
// сессии. Хранилища ресурсов регистрируют здесь свой Clear.
func (m *Manager) OnInvalidate(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations = append(m.invalidations, fn)
}

// OnAuthRedirect регистрирует сигнал перенаправления на экран входа.
func (m *Manager) OnAuthRedirect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRedirect = fn
}
