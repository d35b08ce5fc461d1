package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"liqwatch/internal/monitor"
)

// AccountSource - источник отчетов по аккаунтам.
// Реализуется monitor.Engine.
type AccountSource interface {
	Latest() []*monitor.AccountReport
	Report(ctx context.Context, index int) (*monitor.AccountReport, error)
	Addresses() []string
}

// AccountHandler обрабатывает запросы состояния наблюдаемых аккаунтов
type AccountHandler struct {
	source AccountSource
	logger *zap.Logger
}

func NewAccountHandler(source AccountSource, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{source: source, logger: logger}
}

// AccountListResponse - ответ GET /api/v1/accounts
type AccountListResponse struct {
	Count    int                      `json:"count"`
	Accounts []*monitor.AccountReport `json:"accounts"`
}

// GetAccounts возвращает последние оценки всех аккаунтов из кэша цикла.
// GET /api/v1/accounts
//
// Аккаунты, по которым еще не было успешной оценки, в списке
// отсутствуют.
func (h *AccountHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	reports := h.source.Latest()
	respondWithJSON(w, http.StatusOK, AccountListResponse{
		Count:    len(reports),
		Accounts: reports,
	})
}

// GetAccountReport строит свежий отчет по одному аккаунту.
// GET /api/v1/accounts/{index}/report
//
// В отличие от GetAccounts идет к бирже за актуальными данными и не
// трогает состояние гейта. Параметр format=text возвращает текстовую
// сводку для оператора вместо JSON.
func (h *AccountHandler) GetAccountReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid account index")
		return
	}

	if index < 0 || index >= len(h.source.Addresses()) {
		respondWithError(w, http.StatusNotFound, "account index out of range")
		return
	}

	report, err := h.source.Report(r.Context(), index)
	if err != nil {
		h.logger.Error("on-demand report failed",
			zap.Int("index", index),
			zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "failed to fetch account state")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(report.RenderText()))
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
