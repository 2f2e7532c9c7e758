package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerLocale        = "locale"
	contentTypeJSON     = "application/json"

	defaultTimeout = 10 * time.Second
)

// Client инкапсулирует HTTP-взаимодействие с бэкендом витрины.
// Все вызовы проходят через единый путь, который добавляет стандартные
// заголовки и приводит разнородные конверты ответов к общему виду.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu             sync.RWMutex
	locale         string
	tokenFn        func() (string, bool)
	onAuthRequired func()
}

// NewClient создаёт HTTP-клиент бэкенда по указанному базовому адресу.
func NewClient(baseURL, locale string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		locale: locale,
	}
}

// SetTokenProvider устанавливает источник токена аутентификации.
// Токеном владеет менеджер сессии; клиент его только читает.
func (c *Client) SetTokenProvider(fn func() (string, bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenFn = fn
}

// SetAuthRequiredHandler устанавливает обработчик, вызываемый при отказе
// сервера в аутентификации на любом авторизованном запросе.
func (c *Client) SetAuthRequiredHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthRequired = fn
}

// SetLocale переключает язык, передаваемый в заголовке locale.
func (c *Client) SetLocale(locale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locale = locale
}

// Locale возвращает активный язык клиента.
func (c *Client) Locale() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locale
}

func (c *Client) token() (string, bool) {
	c.mu.RLock()
	fn := c.tokenFn
	c.mu.RUnlock()

	if fn == nil {
		return "", false
	}
	return fn()
}

func (c *Client) notifyAuthRequired() {
	c.mu.RLock()
	fn := c.onAuthRequired
	c.mu.RUnlock()

	if fn != nil {
		fn()
	}
}

// do выполняет один HTTP-запрос к бэкенду и нормализует результат.
// При authed=true запрос отправляется только при наличии токена.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	var token string
	if authed {
		var ok bool
		token, ok = c.token()
		if !ok {
			return authRequiredError(0)
		}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(headerAccept, contentTypeJSON)
	req.Header.Set(headerLocale, c.Locale())
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}
	if authed {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		if authed {
			c.notifyAuthRequired()
			return authRequiredError(resp.StatusCode)
		}
		return httpError(resp.StatusCode, envelopeMessage(raw))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp.StatusCode, envelopeMessage(raw))
	}

	return decodeEnvelope(resp.StatusCode, raw, out)
}

// envelope описывает объединение конвертов, встречающихся у бэкенда:
// {success,message,data}, {status,data} и голый объект ресурса.
type envelope struct {
	Success *bool           `json:"success"`
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeEnvelope приводит тело успешного (2xx) ответа к полезной нагрузке.
// Логический отказ внутри конверта трактуется как ошибка, даже если
// транспортный статус был успешным.
func decodeEnvelope(statusCode int, raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		if out == nil {
			return nil
		}
		return applicationError(statusCode, "empty response body")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Не-объектное тело (например, голый массив) — пробуем как
		// полезную нагрузку напрямую.
		if out != nil && json.Unmarshal(raw, out) == nil {
			return nil
		}
		return applicationError(statusCode, "malformed response body")
	}

	recognized := env.Success != nil || env.Status != 0

	switch {
	case env.Success != nil:
		if !*env.Success {
			return applicationError(statusCode, env.Message)
		}
	case env.Status != 0:
		if env.Status != http.StatusOK {
			return applicationError(statusCode, env.Message)
		}
	}

	if out == nil {
		return nil
	}

	payload := env.Data
	if len(payload) == 0 {
		// Конверт без полезной нагрузки не может подменить снимок
		// нулевым значением; голое тело ресурса конвертом не является.
		if recognized {
			return applicationError(statusCode, "response without data")
		}
		payload = raw
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return applicationError(statusCode, "unexpected response shape")
	}

	return nil
}

// envelopeMessage достаёт сообщение об ошибке из тела ответа, если оно есть.
func envelopeMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Message
}
