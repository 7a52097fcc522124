package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/dealmatch/internal/analysis"
	"github.com/sells-group/dealmatch/internal/match"
	"github.com/sells-group/dealmatch/internal/model"
	"github.com/sells-group/dealmatch/internal/session"
	"github.com/sells-group/dealmatch/internal/store"
	"github.com/sells-group/dealmatch/internal/validate"
	"github.com/sells-group/dealmatch/internal/workflow"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the matchmaking HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := match.ValidateConfig(cfg.Match); err != nil {
			return err
		}

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck

		api := &apiServer{
			store:     s,
			scorer:    match.NewScorer(cfg.Match),
			sessions:  session.NewManager(0),
			validator: validate.New(),
			workers:   cfg.Server.ScoreWorkers,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	store     store.Store
	scorer    *match.Scorer
	sessions  *session.Manager
	validator *validate.Validator
	workers   int
}

func (a *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Session-Token"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":          "ok",
			"active_sessions": a.sessions.Active(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", a.handleCreateSession)
		r.Delete("/sessions/{token}", a.handleDeleteSession)

		r.Post("/profiles/buyers", a.handleCreateBuyer)
		r.Post("/profiles/sellers", a.handleCreateSeller)

		r.Get("/matching/{id}/potential", a.handlePotentialMatches)
		r.Post("/matching/score", a.handleScorePairing)

		r.Group(func(r chi.Router) {
			r.Use(a.requireSession)
			r.Post("/matching/create", a.handleCreateMatch)
			r.Put("/matching/{id}/status", a.handleUpdateStatus)
			r.Post("/matching/{id}/advance", a.handleAdvance)
			r.Post("/matching/{id}/messages", a.handleAppendMessage)
		})

		r.Get("/matches", a.handleListMatches)
		r.Get("/matches/{id}", a.handleGetMatch)
		r.Get("/matches/{id}/workflow", a.handleWorkflow)

		r.Post("/documents/{sellerID}/analyze", a.handleAnalyze)
	})

	return r
}

// requireSession rejects requests without a valid session token.
func (a *apiServer) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Session-Token")
		if _, err := a.sessions.Resolve(token); err != nil {
			writeError(w, http.StatusUnauthorized, "valid session required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *apiServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileID string     `json:"profile_id"`
		Role      model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The profile must exist on the claimed side.
	var err error
	switch req.Role {
	case model.RoleBuyer:
		_, err = a.store.GetBuyer(r.Context(), req.ProfileID)
	case model.RoleSeller:
		_, err = a.store.GetSeller(r.Context(), req.ProfileID)
	default:
		writeError(w, http.StatusBadRequest, "role must be buyer or seller")
		return
	}
	if err != nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	writeJSON(w, http.StatusCreated, a.sessions.Issue(req.ProfileID, req.Role))
}

func (a *apiServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	a.sessions.Revoke(chi.URLParam(r, "token"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *apiServer) handleCreateBuyer(w http.ResponseWriter, r *http.Request) {
	var b model.BuyerProfile
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := a.validator.Buyer(&b); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := a.store.CreateBuyer(r.Context(), &b); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *apiServer) handleCreateSeller(w http.ResponseWriter, r *http.Request) {
	var sl model.SellerProfile
	if err := json.NewDecoder(r.Body).Decode(&sl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sl.ID == "" {
		sl.ID = uuid.NewString()
	}
	if err := a.validator.Seller(&sl); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := a.store.CreateSeller(r.Context(), &sl); err != nil {
		writeStoreError(w, err)
		return
	}

	resp := struct {
		model.SellerProfile
		Advisories []string `json:"advisories,omitempty"`
	}{sl, validate.SellerAdvisories(&sl)}
	writeJSON(w, http.StatusCreated, resp)
}

// handlePotentialMatches filters and ranks candidates for one profile.
// Scoring fans out across a bounded worker group; the scorer is pure so
// concurrent use is safe.
func (a *apiServer) handlePotentialMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	requester, err := loadRequesterByID(ctx, a.store, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	candidates, err := loadCandidates(ctx, a.store, requester.Role)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	eligible := match.Filter(candidates, requester)

	// Each goroutine writes a distinct index, so no locking is needed.
	scored := make([]match.Scored, len(eligible))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range eligible {
		g.Go(func() error {
			var sc int
			if requester.Role == model.RoleBuyer {
				sc = a.scorer.Score(requester.Buyer, eligible[i].Seller)
			} else {
				sc = a.scorer.Score(eligible[i].Buyer, requester.Seller)
			}
			scored[i] = match.Scored{Profile: eligible[i], Score: sc}
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	match.SortByScore(scored)

	type candidate struct {
		Profile model.Profile `json:"profile"`
		Score   int           `json:"score"`
	}
	out := make([]candidate, 0, len(scored))
	for _, sc := range scored {
		if sc.Score < int(cfg.Match.MinScore) {
			continue
		}
		out = append(out, candidate{Profile: sc.Profile, Score: sc.Score})
		if cfg.Match.MaxMatches > 0 && len(out) >= cfg.Match.MaxMatches {
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"requester":  requester.ID(),
		"candidates": out,
	})
}

func (a *apiServer) handleScorePairing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BuyerID  string `json:"buyer_id"`
		SellerID string `json:"seller_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	buyer, err := a.store.GetBuyer(r.Context(), req.BuyerID)
	if err != nil {
		writeError(w, http.StatusNotFound, "buyer not found")
		return
	}
	seller, err := a.store.GetSeller(r.Context(), req.SellerID)
	if err != nil {
		writeError(w, http.StatusNotFound, "seller not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"score":      a.scorer.Score(buyer, seller),
		"components": a.scorer.Components(buyer, seller),
		"insights":   match.Insights(buyer, seller),
	})
}

func (a *apiServer) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BuyerID  string `json:"buyer_id"`
		SellerID string `json:"seller_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	buyer, err := a.store.GetBuyer(r.Context(), req.BuyerID)
	if err != nil {
		writeError(w, http.StatusNotFound, "buyer not found")
		return
	}
	seller, err := a.store.GetSeller(r.Context(), req.SellerID)
	if err != nil {
		writeError(w, http.StatusNotFound, "seller not found")
		return
	}

	now := time.Now().UTC()
	m := &model.Match{
		ID:          uuid.NewString(),
		BuyerID:     buyer.ID,
		SellerID:    seller.ID,
		Status:      model.MatchStatusPending,
		Score:       a.scorer.Score(buyer, seller),
		Insights:    match.Insights(buyer, seller),
		CurrentStep: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.CreateMatch(r.Context(), m); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *apiServer) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.MatchStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Status {
	case model.MatchStatusPending, model.MatchStatusMatched, model.MatchStatusInNegotiation,
		model.MatchStatusCompleted, model.MatchStatusRejected:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := a.store.UpdateMatchStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

func (a *apiServer) handleAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	m, err := a.store.GetMatch(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := workflow.Advance(m); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := a.store.UpdateMatchStep(ctx, m.ID, m.CurrentStep); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := a.store.UpdateMatchStatus(ctx, m.ID, m.Status); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *apiServer) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SenderID string            `json:"sender_id"`
		Content  string            `json:"content"`
		Type     model.MessageType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.Type == "" {
		req.Type = model.MessageTypeText
	}

	msg := model.Message{
		ID:        uuid.NewString(),
		SenderID:  req.SenderID,
		Content:   req.Content,
		Type:      req.Type,
		Timestamp: time.Now().UTC(),
	}
	if err := a.store.AppendMessage(r.Context(), chi.URLParam(r, "id"), msg); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (a *apiServer) handleListMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	matches, err := a.store.ListMatches(r.Context(), store.MatchFilter{
		Status:   model.MatchStatus(q.Get("status")),
		BuyerID:  q.Get("buyer_id"),
		SellerID: q.Get("seller_id"),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (a *apiServer) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := a.store.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *apiServer) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	m, err := a.store.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	completed, total := workflow.Progress(m)
	writeJSON(w, http.StatusOK, map[string]any{
		"steps":     workflow.Steps(m.CurrentStep),
		"completed": completed,
		"total":     total,
	})
}

func (a *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	seller, err := a.store.GetSeller(r.Context(), chi.URLParam(r, "sellerID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "seller not found")
		return
	}
	writeJSON(w, http.StatusOK, analysis.Analyze(seller))
}

func loadRequesterByID(ctx context.Context, s store.Store, id string) (model.Profile, error) {
	if b, err := s.GetBuyer(ctx, id); err == nil {
		return model.BuyerRecord(b), nil
	}
	sl, err := s.GetSeller(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}
	return model.SellerRecord(sl), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if strings.Contains(err.Error(), "not found") {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	zap.L().Error("store error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
