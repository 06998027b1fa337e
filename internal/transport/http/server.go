package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/feeds"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fwdomain "github.com/reshetovitsme/chat-guard/internal/modules/firewall/domain"
	moderation "github.com/reshetovitsme/chat-guard/internal/modules/moderation/service"
	"github.com/reshetovitsme/chat-guard/internal/shared/config"
	sharederrors "github.com/reshetovitsme/chat-guard/internal/shared/errors"
	sloghttp "github.com/samber/slog-http"
)

// AuditFeed renders the moderation log of a chat
type AuditFeed interface {
	GenerateFeed(ctx context.Context, chatID int64, baseURL string) (*feeds.Feed, error)
}

// Invalidator applies cache invalidation signals
type Invalidator interface {
	Apply(inv moderation.Invalidation) error
}

// RuleStore is the firewall rule authoring boundary
type RuleStore interface {
	SaveRule(ctx context.Context, raw map[string]any) (*fwdomain.Rule, error)
	DeleteRule(ctx context.Context, ruleID string) error
}

// Server serves audit feeds, metrics and the internal control endpoints
type Server struct {
	cfg         *config.Config
	audit       AuditFeed
	invalidator Invalidator
	rules       RuleStore
	logger      *slog.Logger
	server      *http.Server
}

// New creates a new HTTP server
func New(cfg *config.Config, audit AuditFeed, invalidator Invalidator, rules RuleStore) *Server {
	return &Server{
		cfg:         cfg,
		audit:       audit,
		invalidator: invalidator,
		rules:       rules,
		logger:      slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler builds the routed handler with logging and recovery middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /audit/{chatID}", s.handleAuditFeed)
	mux.HandleFunc("POST /internal/invalidate/{chatID}", s.handleInvalidate)
	mux.HandleFunc("POST /internal/rules", s.handleSaveRule)
	mux.HandleFunc("DELETE /internal/rules/{ruleID}", s.handleDeleteRule)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := sloghttp.Recovery(mux)
	return sloghttp.New(s.logger)(handler)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and drains the open ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleAuditFeed(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.PathValue("chatID"), 10, 64)
	if err != nil {
		http.Error(w, "Chat ID must be an integer", http.StatusBadRequest)
		return
	}

	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.audit.GenerateFeed(r.Context(), chatID, baseURL)
	if err != nil {
		s.logger.Error("Error generating audit feed", "chat_id", chatID, "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.PathValue("chatID"), 10, 64)
	if err != nil {
		http.Error(w, "Chat ID must be an integer", http.StatusBadRequest)
		return
	}

	inv := moderation.Invalidation{ChatID: chatID, Groups: r.URL.Query()["group"]}
	if err := s.invalidator.Apply(inv); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveRule(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be a JSON object"})
		return
	}

	rule, err := s.rules.SaveRule(r.Context(), raw)
	if err != nil {
		if errors.Is(err, sharederrors.ErrInvalidRule) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Error("Error saving firewall rule", "error", err)
		http.Error(w, "Failed to save rule", http.StatusInternalServerError)
		return
	}

	s.invalidateRules(rule.ChatID)
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID := r.PathValue("ruleID")
	if err := s.rules.DeleteRule(r.Context(), ruleID); err != nil {
		if errors.Is(err, sharederrors.ErrRuleNotFound) {
			http.Error(w, "Rule not found", http.StatusNotFound)
			return
		}
		s.logger.Error("Error deleting firewall rule", "rule_id", ruleID, "error", err)
		http.Error(w, "Failed to delete rule", http.StatusInternalServerError)
		return
	}

	// the rule's chat is unknown once deleted
	s.invalidateRules(0)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) invalidateRules(chatID int64) {
	err := s.invalidator.Apply(moderation.Invalidation{ChatID: chatID, Groups: []string{moderation.RulesGroup}})
	if err != nil {
		s.logger.Error("Error invalidating rule cache", "chat_id", chatID, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
