// Package store реализует обобщённое хранилище снимка удалённого ресурса.
// Хранилище владеет состоянием loading/loaded/error одного ресурса и
// сериализует все операции над ним: пока выполняется fetch или мутация,
// следующая операция ждёт своей очереди, а повторный fetch игнорируется.
// Слой представления наблюдает состояние и никогда не получает исключений.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Status описывает фазу жизненного цикла снимка ресурса.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// State — наблюдаемое состояние ресурса. Инварианты: при StatusLoaded
// Data != nil, при StatusError Err != nil.
type State[T any] struct {
	Status Status
	Data   *T
	Err    error
}

// SessionGuard проверяет наличие активной сессии непосредственно перед
// отправкой сетевого вызова.
type SessionGuard interface {
	RequireSession() (string, error)
}

// Store хранит последний снимок одного удалённого ресурса и операции его
// синхронизации с сервером.
type Store[T any] struct {
	name   string
	fetch  func(ctx context.Context) (*T, error)
	guard  SessionGuard
	logger *zap.Logger

	// opMu сериализует fetch и мутации в порядке поступления.
	opMu sync.Mutex

	mu    sync.Mutex
	state State[T]
	gen   uint64
	subs  []func(State[T])
}

// New создаёт хранилище ресурса с указанной функцией выборки. Для ресурсов,
// требующих аутентификации, передаётся guard; для публичных — nil.
func New[T any](name string, fetch func(ctx context.Context) (*T, error), guard SessionGuard, logger *zap.Logger) *Store[T] {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store[T]{
		name:   name,
		fetch:  fetch,
		guard:  guard,
		logger: logger,
		state:  State[T]{Status: StatusIdle},
	}
}

// State возвращает текущее состояние ресурса.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe регистрирует наблюдателя изменений состояния. Слой
// представления привязывается к хранилищу только через State и Subscribe.
// Наблюдатель уведомляется синхронно и не должен сам вызывать операции
// хранилища.
func (s *Store[T]) Subscribe(fn func(State[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Fetch синхронизирует снимок с сервером. Если выборка уже выполняется,
// вызов игнорируется: на один ресурс допускается не более одного запроса
// одновременно.
func (s *Store[T]) Fetch(ctx context.Context) {
	s.mu.Lock()
	if s.state.Status == StatusLoading {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.runFetch(ctx)
}

// Do выполняет мутацию ресурса и затем перечитывает каноническое состояние
// с сервера. Повторная выборка после мутации — осознанный выбор: лишний
// круговой запрос в обмен на гарантию, что клиент не разойдётся с
// серверными правилами расчёта цен и количеств.
func (s *Store[T]) Do(ctx context.Context, mutate func(ctx context.Context) error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	gen := s.beginLoading()

	if s.guard != nil {
		if _, err := s.guard.RequireSession(); err != nil {
			s.complete(gen, nil, err)
			return
		}
	}

	if err := mutate(ctx); err != nil {
		s.complete(gen, nil, err)
		return
	}

	s.runFetch(ctx)
}

// Clear сбрасывает хранилище в исходное состояние. Результаты всех
// незавершённых операций после сброса отбрасываются.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	s.gen++
	s.state = State[T]{Status: StatusIdle}
	snapshot := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Seed замещает снимок данными, уже полученными другим путём (например,
// заказом из ответа оформления), без обращения к серверу.
func (s *Store[T]) Seed(data *T) {
	s.mu.Lock()
	s.gen++
	s.state = State[T]{Status: StatusLoaded, Data: data}
	snapshot := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// runFetch выполняет одну выборку. Вызывается только под opMu.
func (s *Store[T]) runFetch(ctx context.Context) {
	gen := s.beginLoading()

	// Проверка сессии выполняется прямо перед отправкой, а не при
	// создании хранилища: выход из аккаунта должен быть виден всем
	// хранилищам до следующего запроса.
	if s.guard != nil {
		if _, err := s.guard.RequireSession(); err != nil {
			s.complete(gen, nil, err)
			return
		}
	}

	data, err := s.fetch(ctx)
	s.complete(gen, data, err)
}

// beginLoading переводит хранилище в состояние загрузки и возвращает номер
// поколения операции. Прежний снимок сохраняется до получения нового.
func (s *Store[T]) beginLoading() uint64 {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state.Status = StatusLoading
	s.state.Err = nil
	snapshot := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, snapshot)
	return gen
}

// complete завершает операцию указанного поколения. Устаревшие результаты
// (после Clear или более новой операции) отбрасываются, чтобы медленный
// ответ не перезаписал состояние уже ушедшего экрана.
func (s *Store[T]) complete(gen uint64, data *T, err error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("stale result discarded", zap.String("resource", s.name))
		return
	}

	if err != nil {
		s.state.Status = StatusError
		s.state.Err = err
	} else {
		s.state = State[T]{Status: StatusLoaded, Data: data}
	}
	snapshot := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("resource sync failed", zap.String("resource", s.name), zap.Error(err))
	}

	notify(subs, snapshot)
}

// subscribers возвращает копию списка наблюдателей. Вызывается под mu.
func (s *Store[T]) subscribers() []func(State[T]) {
	subs := make([]func(State[T]), len(s.subs))
	copy(subs, s.subs)
	return subs
}

func notify[T any](subs []func(State[T]), state State[T]) {
	for _, fn := range subs {
		fn(state)
	}
}
