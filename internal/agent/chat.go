// Package agent routes chat queries to domain prompt templates and runs them
// through the external model gateway.
package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/accountant-ai/backend/internal/domain"
	"github.com/accountant-ai/backend/internal/snapshot"
	"github.com/accountant-ai/backend/internal/store"
)

// Generator is the text-generation side of the model gateway.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatRequest is one validated chat turn.
type ChatRequest struct {
	UserID      string
	Message     string
	Personality domain.Personality
	// PersonalityExplicit records whether the caller chose the personality
	// on this request, as opposed to the default being filled in. Explicit
	// choices update the remembered preference.
	PersonalityExplicit bool
	IsPayday            bool
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	AgentUsed       domain.AgentDomain
	Response        string
	Tone            domain.Personality
	ToneDescription string
}

// Service orchestrates one chat turn: summarize the user's transactions,
// classify the query, assemble the prompt and call the model. The store is
// only read before the remote call and the session updated after it, so no
// per-user lock is ever held across the network round trip.
type Service struct {
	store  store.TransactionStore
	gen    Generator
	router *Router
	log    zerolog.Logger
}

// NewService creates a chat service.
func NewService(st store.TransactionStore, gen Generator, router *Router, log zerolog.Logger) *Service {
	return &Service{store: st, gen: gen, router: router, log: log}
}

// Chat runs one turn. Upstream failures are returned unchanged so the HTTP
// layer can map them; the store is never left mid-write.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	tone := req.Personality
	if !req.PersonalityExplicit {
		// Fall back to the remembered preference before the default.
		sess, err := s.store.Session(ctx, req.UserID)
		if err == nil && sess.PreferredTone != "" {
			tone = sess.PreferredTone
		}
	}

	txs, err := s.store.GetAll(ctx, req.UserID)
	if err != nil {
		return ChatResult{}, fmt.Errorf("chat: reading transactions: %w", err)
	}
	snap := snapshot.Summarize(txs)

	agentDomain := s.router.Classify(ctx, req.Message)

	prompt := Assemble(AssembleInput{
		Domain:      agentDomain,
		Snapshot:    snap,
		Query:       req.Message,
		Personality: tone,
		IsPayday:    req.IsPayday,
	})

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return ChatResult{}, fmt.Errorf("chat: generating response: %w", err)
	}

	if err := s.store.UpdateSession(ctx, req.UserID, func(sess *store.Session) {
		sess.MessageCount++
		sess.LastAgent = agentDomain
		if req.PersonalityExplicit {
			sess.PreferredTone = tone
		}
	}); err != nil {
		// Session bookkeeping is best effort; the answer already exists.
		s.log.Warn().Err(err).Str("user_id", req.UserID).Msg("Failed to update session state")
	}

	return ChatResult{
		AgentUsed:       agentDomain,
		Response:        text,
		Tone:            tone,
		ToneDescription: Tone(tone).Tone,
	}, nil
}
