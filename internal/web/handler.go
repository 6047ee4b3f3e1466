package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/repo"
	"github.com/KNICEX/price-watch/internal/service/session"
	"github.com/KNICEX/price-watch/pkg/decimalx"
	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

const OwnerHeader = "X-Owner-ID"

type ownerKey struct{}

// Handler 会话管理的 HTTP 接口, 鉴权不在本服务范围内, 只信任 X-Owner-ID
type Handler struct {
	manager  *session.Manager
	contacts repo.ContactRepo
	metrics  http.Handler
}

func NewHandler(manager *session.Manager, contacts repo.ContactRepo, metrics http.Handler) *Handler {
	return &Handler{
		manager:  manager,
		contacts: contacts,
		metrics:  metrics,
	}
}

func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics).Methods(http.MethodGet)
	}

	api := r.NewRoute().Subrouter()
	api.Use(requireOwner)
	api.HandleFunc("/sessions", h.StartSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", h.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/active", h.ActiveSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/pause", h.PauseSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/reset", h.ResetSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/check", h.CheckSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/alerts", h.AlertHistory).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/prices", h.PriceHistory).Methods(http.MethodGet)
	api.HandleFunc("/contact", h.SaveContact).Methods(http.MethodPut)
	return r
}

func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "missing "+OwnerHeader)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

func ownerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Message: msg})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrInvalidThresholds),
		errors.Is(err, session.ErrInvalidSymbol),
		errors.Is(err, session.ErrInvalidOwner):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ownedSession 其他用户的会话按不存在处理
func (h *Handler) ownedSession(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	s, err := h.manager.Get(r.Context(), mux.Vars(r)["id"])
	if err == nil && s.OwnerID != ownerFrom(r.Context()) {
		err = repo.ErrSessionNotFound
	}
	if err != nil {
		writeServiceError(w, r, err)
		return domain.Session{}, false
	}
	return s, true
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	buy, err := decimalx.Parse(req.BuyThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, "buy_threshold: "+err.Error())
		return
	}
	sell, err := decimalx.Parse(req.SellThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, "sell_threshold: "+err.Error())
		return
	}

	s, err := h.manager.Start(r.Context(), session.StartReq{
		OwnerID:       ownerFrom(r.Context()),
		Symbol:        req.Symbol,
		BuyThreshold:  buy,
		SellThreshold: sell,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Message: "monitoring started", Data: toSessionVO(s)})
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.manager.List(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Message: "ok",
		Data: lo.Map(sessions, func(item domain.Session, index int) SessionVO {
			return toSessionVO(item)
		}),
	})
}

func (h *Handler) ActiveSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Active(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "ok", Data: toSessionVO(s)})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "ok", Data: toSessionVO(s)})
}

func (h *Handler) PauseSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	s, err := h.manager.Pause(r.Context(), s.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "monitoring paused", Data: toSessionVO(s)})
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	s, err := h.manager.Reset(r.Context(), s.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "alerts reset", Data: toSessionVO(s)})
}

func (h *Handler) CheckSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	res, err := h.manager.CheckNow(r.Context(), s.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "ok", Data: toCheckVO(res)})
}

func intQuery(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (h *Handler) AlertHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	alerts, err := h.manager.AlertHistory(r.Context(), s.ID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Message: "ok",
		Data: lo.Map(alerts, func(item domain.AlertRecord, index int) AlertVO {
			return AlertVO{Kind: item.Kind.ToString(), Price: item.Price, Threshold: item.Threshold, SentAt: item.SentAt}
		}),
	})
}

func (h *Handler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	hours, err := intQuery(r, "hours")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hours")
		return
	}
	samples, err := h.manager.PriceHistory(r.Context(), s.ID, hours)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Message: "ok",
		Data: lo.Map(samples, func(item domain.PriceSample, index int) PriceVO {
			return PriceVO{Price: item.Price, ObservedAt: item.ObservedAt}
		}),
	})
}

func (h *Handler) SaveContact(w http.ResponseWriter, r *http.Request) {
	var req SaveContactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	err := h.contacts.Save(r.Context(), domain.Contact{
		OwnerID: ownerFrom(r.Context()),
		Email:   strings.TrimSpace(req.Email),
		SMTP: domain.SMTPSettings{
			Host:     req.SmtpHost,
			Port:     req.SmtpPort,
			Username: req.SmtpUsername,
			Password: req.SmtpPassword,
		},
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "contact saved"})
}
