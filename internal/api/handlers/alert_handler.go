package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"liqwatch/internal/models"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 100
)

// AlertJournal - источник истории доставленных алертов.
// Реализуется service.AlertService.
type AlertJournal interface {
	Recent(limit int) []*models.AlertEvent
	Count() int
}

// AlertHandler обрабатывает запросы журнала алертов
type AlertHandler struct {
	journal AlertJournal
	logger  *zap.Logger
}

func NewAlertHandler(journal AlertJournal, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{journal: journal, logger: logger}
}

// AlertListResponse - ответ GET /api/v1/alerts
type AlertListResponse struct {
	Total  int                  `json:"total"`
	Alerts []*models.AlertEvent `json:"alerts"`
}

// GetAlerts возвращает последние доставленные алерты, новые первыми.
// GET /api/v1/alerts?limit=50
//
// В журнале только то, что реально ушло оператору: подавленные гейтом
// и недоставленные события сюда не попадают.
func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}
	if limit > maxAlertLimit {
		limit = maxAlertLimit
	}

	respondWithJSON(w, http.StatusOK, AlertListResponse{
		Total:  h.journal.Count(),
		Alerts: h.journal.Recent(limit),
	})
}
