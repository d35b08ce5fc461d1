package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"liqwatch/internal/api/handlers"
	"liqwatch/internal/api/middleware"
	"liqwatch/internal/monitor"
	"liqwatch/internal/service"
	"liqwatch/internal/websocket"
)

// Dependencies - зависимости HTTP слоя
type Dependencies struct {
	Engine       *monitor.Engine
	AlertService *service.AlertService
	Hub          *websocket.Hub
	Logger       *zap.Logger
}

// SetupRoutes настраивает маршруты и middleware API сервера
func SetupRoutes(deps Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Глобальные middleware (порядок имеет значение: recovery снаружи)
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.Logging(deps.Logger))
	router.Use(middleware.CORS)

	// Служебные endpoints вне версионированного API
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// WebSocket поток healthUpdate/alert сообщений
	router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWS(deps.Hub, w, r)
	})

	// ============ API v1 ============
	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	accountHandler := handlers.NewAccountHandler(deps.Engine, deps.Logger)
	apiV1.HandleFunc("/accounts", accountHandler.GetAccounts).Methods("GET")
	apiV1.HandleFunc("/accounts/{index:[0-9]+}/report", accountHandler.GetAccountReport).Methods("GET")

	alertHandler := handlers.NewAlertHandler(deps.AlertService, deps.Logger)
	apiV1.HandleFunc("/alerts", alertHandler.GetAlerts).Methods("GET")

	return router
}

// healthCheck - простой liveness endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
