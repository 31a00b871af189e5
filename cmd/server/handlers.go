package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tradincode-dashboard-go/internal/loader"
	"tradincode-dashboard-go/internal/store"
	"tradincode-dashboard-go/internal/worker"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log       *zap.Logger
	ledger    *store.LedgerStore
	worker    worker.ClientInterface
	dashboard *loader.DashboardLoader
	paper     *loader.PaperTradingLoader
	rankings  *loader.RankingsLoader
	account   *loader.AccountLoader
	create    *loader.CreateAccountLoader
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(
	log *zap.Logger,
	ledger *store.LedgerStore,
	workerClient worker.ClientInterface,
	dashboard *loader.DashboardLoader,
	paper *loader.PaperTradingLoader,
	rankings *loader.RankingsLoader,
	account *loader.AccountLoader,
	create *loader.CreateAccountLoader,
) *APIHandler {
	return &APIHandler{
		log:       log,
		ledger:    ledger,
		worker:    workerClient,
		dashboard: dashboard,
		paper:     paper,
		rankings:  rankings,
		account:   account,
		create:    create,
	}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// DashboardHandler returns the dashboard view model. Loader failures are
// already degraded into the view model, so this always answers 200.
func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.dashboard.Load(r.Context()))
}

// PaperTradingHandler returns the paper trading page view model.
func (h *APIHandler) PaperTradingHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	h.writeJSON(w, http.StatusOK, h.paper.Load(r.Context(), page, limit))
}

// RankingsHandler returns the leaderboard view model.
func (h *APIHandler) RankingsHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.rankings.Load(r.Context()))
}

// GetConfigHandler returns the raw current config row, or null when no
// config exists yet.
func (h *APIHandler) GetConfigHandler(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.ledger.GetConfig(r.Context())
	if err != nil {
		h.log.Error("Failed to fetch paper trading config", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch config")
		return
	}
	h.writeJSON(w, http.StatusOK, cfg)
}

// configUpdateRequest is the POST body of the config endpoint: either an
// action (start/stop) or a partial update of the known strategy fields.
// Unknown fields are rejected at decode time.
type configUpdateRequest struct {
	Action               string   `json:"action,omitempty"`
	InitialBalance       *float64 `json:"initial_balance,omitempty"`
	PercentagePerTrade   *float64 `json:"percentage_per_trade,omitempty"`
	BuyThreshold         *float64 `json:"buy_threshold,omitempty"`
	SellThreshold        *float64 `json:"sell_threshold,omitempty"`
	TakeProfitPercentage *float64 `json:"take_profit_percentage,omitempty"`
	StopLossPercentage   *float64 `json:"stop_loss_percentage,omitempty"`
}

// UpdateConfigHandler starts, stops, or updates the paper trading session.
func (h *APIHandler) UpdateConfigHandler(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req configUpdateRequest
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var (
		result interface{}
		err    error
	)

	switch req.Action {
	case "start":
		result, err = h.ledger.Start(r.Context())
	case "stop":
		result, err = h.ledger.Stop(r.Context())
	case "":
		result, err = h.ledger.UpdateConfig(r.Context(), store.ConfigUpdate{
			InitialBalance:       req.InitialBalance,
			PercentagePerTrade:   req.PercentagePerTrade,
			BuyThreshold:         req.BuyThreshold,
			SellThreshold:        req.SellThreshold,
			TakeProfitPercentage: req.TakeProfitPercentage,
			StopLossPercentage:   req.StopLossPercentage,
		})
	default:
		h.writeError(w, http.StatusBadRequest, "Unknown action: "+req.Action)
		return
	}

	if err != nil {
		if errors.Is(err, store.ErrNoConfig) {
			h.writeError(w, http.StatusNotFound, "No paper trading config exists")
			return
		}
		h.log.Error("Failed to update paper trading config", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to update config")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// ResetHandler wipes the trade log and restores the config to its initial
// balances. Failures roll back fully inside the store.
func (h *APIHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Reset(r.Context()); err != nil {
		h.log.Error("Failed to reset paper trading", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to reset paper trading")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Paper trading reset successfully",
	})
}

// AccountDetailHandler returns one worker account's detail view model.
func (h *APIHandler) AccountDetailHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.account.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeAccountError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// ToggleAccountHandler flips one account between active and paused.
func (h *APIHandler) ToggleAccountHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.account.Toggle(r.Context(), r.PathValue("id")); err != nil {
		h.writeAccountError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAccountHandler removes one account and its history.
func (h *APIHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.account.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeAccountError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *APIHandler) writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, loader.ErrInvalidAccountID):
		h.writeError(w, http.StatusBadRequest, "Invalid account ID")
	case errors.Is(err, loader.ErrAccountNotFound):
		h.writeError(w, http.StatusNotFound, "Account not found")
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// CreateAccountFormHandler returns the data the account creation form needs.
func (h *APIHandler) CreateAccountFormHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.create.Load(r.Context()))
}

// CreateAccountHandler accepts the form-encoded account creation submission.
func (h *APIHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	account, err := h.create.Submit(r.Context(), r.PostForm)
	if err != nil {
		if errors.Is(err, loader.ErrInvalidForm) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, account)
}

// HealthHandler reports liveness of the dashboard and reachability of the
// worker. A broken worker degrades the report, it does not fail it.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	workerStatus := "ok"
	if _, err := h.worker.Health(r.Context()); err != nil {
		h.log.Warn("Worker health check failed", zap.Error(err))
		workerStatus = "unreachable"
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"worker": workerStatus,
	})
}
