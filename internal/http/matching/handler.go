package matching

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.learn)
	r.Get("/suggest", h.suggest)
	r.Delete("/{id}", h.forget)
}

type ruleResponse struct {
	ID        int64     `json:"id"`
	Pattern   string    `json:"pattern"`
	Payee     string    `json:"payee"`
	Account   string    `json:"account,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(r *matching.Rule) ruleResponse {
	return ruleResponse{
		ID:        r.ID,
		Pattern:   r.Pattern,
		Payee:     r.Payee,
		Account:   r.Account,
		CreatedAt: r.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.Rules(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]ruleResponse, len(rules))
	for i, rule := range rules {
		resp[i] = toResponse(rule)
	}

	writeJSON(w, http.StatusOK, resp)
}

type suggestResponse struct {
	RawPayee string `json:"raw_payee"`
	Account  string `json:"account,omitempty"`
	Key      string `json:"key"`
	Payee    string `json:"payee"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	raw := q.Get("raw_payee")
	if raw == "" {
		http.Error(w, "raw_payee query parameter is required", http.StatusBadRequest)
		return
	}

	account := q.Get("account")

	payee, err := h.svc.Suggest(r.Context(), account, raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, suggestResponse{
		RawPayee: raw,
		Account:  account,
		Key:      matching.Key(raw),
		Payee:    payee,
	})
}

type learnRequest struct {
	RawPayee string `json:"raw_payee"`
	Payee    string `json:"payee"`
	Account  string `json:"account"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rule, err := h.svc.Learn(r.Context(), matching.LearnParams{
		RawPayee: req.RawPayee,
		Payee:    req.Payee,
		Account:  req.Account,
	})
	if err != nil {
		if errors.Is(err, matching.ErrInvalidRule) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(rule))
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Forget(r.Context(), id); err != nil {
		if errors.Is(err, matching.ErrRuleNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
