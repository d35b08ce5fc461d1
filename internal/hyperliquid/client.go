package hyperliquid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"liqwatch/internal/models"
	"liqwatch/internal/monitor"
	"liqwatch/pkg/ratelimit"
	"liqwatch/pkg/retry"
)

// client.go - клиент публичного info API биржи
//
// Все запросы - POST /info с JSON-телом {"type": ...}. Подписи не
// требуются: система читает только публичное состояние аккаунтов.
// Запросы проходят общий token bucket (rate limit API общий на IP)
// и ретраятся с экспоненциальным backoff.

// DefaultBaseURL - production endpoint info API
const DefaultBaseURL = "https://api.hyperliquid.xyz"

// maxResponseSize - защита от неожиданно огромного ответа (10 MB)
const maxResponseSize = 10 << 20

// Client - клиент info API. Реализует monitor.VenueClient.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *ratelimit.RateLimiter
	logger  *zap.Logger
}

// ClientOptions - настройки клиента
type ClientOptions struct {
	BaseURL    string           // пусто => DefaultBaseURL
	HTTPConfig HTTPClientConfig // нулевая структура => дефолты
	Logger     *zap.Logger
}

// NewClient создает клиент info API
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPConfig.TotalTimeout == 0 {
		opts.HTTPConfig = DefaultHTTPClientConfig()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		baseURL: opts.BaseURL,
		http:    newHTTPClient(opts.HTTPConfig),
		// Документированный лимит info API заметно выше, но движку
		// хватает 10 rps с запасом
		limiter: ratelimit.NewRateLimiter(10, 5),
		logger:  opts.Logger,
	}
}

// FetchAccount возвращает нормализованный снимок аккаунта и его позиции.
//
// Позиции без mark цены дополняются из allMids тем же запросом цикла.
func (c *Client) FetchAccount(ctx context.Context, address string) (*models.AccountSnapshot, []models.PositionRecord, error) {
	var raw rawClearinghouse
	err := c.post(ctx, map[string]string{
		"type": "clearinghouseState",
		"user": address,
	}, &raw)
	if err != nil {
		monitor.VenueRequestErrors.WithLabelValues("clearinghouseState").Inc()
		return nil, nil, fmt.Errorf("clearinghouseState for %s: %w", address, err)
	}

	snapshot, positions, err := normalizeClearinghouse(&raw)
	if err != nil {
		return nil, nil, err
	}

	c.fillMarkPrices(ctx, positions)

	return snapshot, positions, nil
}

// fillMarkPrices подтягивает mark цены из allMids для позиций, у которых
// их не было в снимке. Ошибка не фатальна: позиция без mark просто
// останется без health на уровне позиции.
func (c *Client) fillMarkPrices(ctx context.Context, positions []models.PositionRecord) {
	missing := false
	for i := range positions {
		if positions[i].MarkPrice == nil {
			missing = true
			break
		}
	}
	if !missing {
		return
	}

	mids, err := c.AllMids(ctx)
	if err != nil {
		c.logger.Warn("allMids fetch failed, positions keep missing mark prices", zap.Error(err))
		return
	}

	for i := range positions {
		if positions[i].MarkPrice != nil {
			continue
		}
		if mid, ok := mids[positions[i].Coin]; ok && mid > 0 {
			price := mid
			positions[i].MarkPrice = &price
		}
	}
}

// AllMids возвращает текущие mid цены всех монет
func (c *Client) AllMids(ctx context.Context) (map[string]float64, error) {
	var raw map[string]string
	if err := c.post(ctx, map[string]string{"type": "allMids"}, &raw); err != nil {
		monitor.VenueRequestErrors.WithLabelValues("allMids").Inc()
		return nil, fmt.Errorf("allMids: %w", err)
	}

	mids := make(map[string]float64, len(raw))
	for coin, s := range raw {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue // мусорная котировка не валит весь ответ
		}
		mids[coin] = price
	}
	return mids, nil
}

// post выполняет POST /info с rate limit и ретраями
func (c *Client) post(ctx context.Context, body map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	return retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/info", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("info API returned status %d: %s", resp.StatusCode, truncate(data, 200))
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}, retry.DefaultConfig())
}

// truncate обрезает тело ответа для сообщения об ошибке
func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}
