package hyperliquid

import (
	"net"
	"net/http"
	"time"
)

// httpclient.go - HTTP клиент для info API
//
// Пул соединений с Keep-Alive: движок опрашивает один хост раз в минуту
// по нескольким аккаунтам, и переустановка TLS на каждый запрос дала бы
// больше латентности, чем сам запрос.

// HTTPClientConfig - настройки HTTP клиента
type HTTPClientConfig struct {
	ConnectTimeout time.Duration // таймаут установки TCP соединения
	TotalTimeout   time.Duration // общий таймаут запроса

	MaxIdleConns        int           // максимум idle соединений
	MaxIdleConnsPerHost int           // максимум idle соединений на хост
	IdleConnTimeout     time.Duration // таймаут простоя соединения

	TLSHandshakeTimeout time.Duration
	KeepAliveInterval   time.Duration
}

// DefaultHTTPClientConfig - конфигурация по умолчанию для info API
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		ConnectTimeout: 5 * time.Second,
		TotalTimeout:   15 * time.Second,

		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout: 5 * time.Second,
		KeepAliveInterval:   30 * time.Second,
	}
}

// newHTTPClient создает http.Client с пулом соединений
func newHTTPClient(cfg HTTPClientConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: cfg.KeepAliveInterval,
	}

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.TotalTimeout,
	}
}
