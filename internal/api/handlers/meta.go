package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/accountant-ai/backend/internal/agent"
	"github.com/accountant-ai/backend/internal/api/middleware"
	"github.com/accountant-ai/backend/internal/domain"
	"github.com/accountant-ai/backend/internal/store"
)

// MetaHandler serves health, personality catalog and session lookups.
type MetaHandler struct {
	store store.TransactionStore
	model string
	start time.Time
	log   zerolog.Logger
}

func NewMetaHandler(st store.TransactionStore, model string, log zerolog.Logger) *MetaHandler {
	return &MetaHandler{store: st, model: model, start: time.Now(), log: log}
}

func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"model":          h.model,
		"uptime_seconds": int(time.Since(h.start).Seconds()),
	})
}

type personalityEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tone        string `json:"tone"`
}

func (h *MetaHandler) Personalities(w http.ResponseWriter, r *http.Request) {
	catalog := agent.ToneCatalog()
	entries := make([]personalityEntry, 0, len(catalog))
	for _, p := range domain.AllPersonalities() {
		profile := catalog[p]
		entries = append(entries, personalityEntry{
			Name:        string(p),
			Description: profile.Description,
			Tone:        profile.Tone,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"default":       string(domain.DefaultPersonality),
		"personalities": entries,
	})
}

func (h *MetaHandler) Session(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/session/")
	if userID == "" || strings.Contains(userID, "/") {
		middleware.WriteError(w, http.StatusBadRequest, "user ID is required in path")
		return
	}

	sess, err := h.store.Session(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("session lookup failed")
		middleware.WriteTaxonomyError(w, err)
		return
	}

	txs, err := h.store.GetAll(r.Context(), userID)
	if err != nil {
		middleware.WriteTaxonomyError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":            userID,
		"message_count":      sess.MessageCount,
		"last_agent":         string(sess.LastAgent),
		"preferred_tone":     string(sess.PreferredTone),
		"transactions_count": len(txs),
	})
}
