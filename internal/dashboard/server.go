// Package dashboard serves a read-only HTTP view of the journal: open
// positions grouped by chain, closed history, and aggregate statistics.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/jcalderon/strikelog/internal/ledger"
	"github.com/jcalderon/strikelog/internal/models"
	"github.com/jcalderon/strikelog/internal/storage"
)

type Server struct {
	router    *chi.Mux
	server    *http.Server
	storage   storage.Interface
	logger    *logrus.Logger
	port      int
	authToken string
}

type Config struct {
	Port      int
	AuthToken string
}

// ChainView is one strategy instance: the primary leg's aggregates plus
// every leg in the group.
type ChainView struct {
	ChainID         string    `json:"chain_id"`
	Ticker          string    `json:"ticker"`
	StrategyName    string    `json:"strategy_name"`
	Status          string    `json:"status"`
	OpenedAt        time.Time `json:"opened_at"`
	Expiry          time.Time `json:"expiry"`
	DTE             int       `json:"dte"`
	EntryPremium    float64   `json:"entry_premium"`
	ChainNetCredit  float64   `json:"chain_net_credit"`
	BreakEvenLower  float64   `json:"break_even_lower"`
	BreakEvenUpper  float64   `json:"break_even_upper,omitempty"`
	POP             float64   `json:"pop"`
	MaxProfitUSD    float64   `json:"max_profit_usd"`
	Contracts       int       `json:"contracts"`
	ReservedCapital float64   `json:"reserved_capital"`
	RealizedPnL     float64   `json:"realized_pnl,omitempty"`
	Legs            []LegView `json:"legs"`
}

// LegView is the per-leg slice of a ChainView.
type LegView struct {
	ID         string  `json:"id"`
	ParentID   string  `json:"parent_id,omitempty"`
	Side       string  `json:"side"`
	OptionType string  `json:"option_type"`
	Strike     float64 `json:"strike"`
	Delta      float64 `json:"delta,omitempty"`
	Contracts  int     `json:"contracts"`
	Status     string  `json:"status"`
}

func NewServer(cfg Config, store storage.Interface, logger *logrus.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		storage:   store,
		logger:    logger,
		port:      cfg.Port,
		authToken: cfg.AuthToken,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if s.authToken != "" {
		s.router.Use(s.authMiddleware)
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/positions", s.handleGetPositions)
	s.router.Get("/api/history", s.handleGetHistory)
	s.router.Get("/api/chain/{id}", s.handleGetChain)
	s.router.Get("/api/stats", s.handleGetStats)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if token != s.authToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Starting dashboard server on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// loadLedger re-reads the journal on every request: the CLI may have
// rewritten the file since the server started.
func (s *Server) loadLedger() (*ledger.Ledger, error) {
	records, err := s.storage.Load()
	if err != nil {
		return nil, err
	}
	return ledger.FromRecords(records)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}
	s.writeJSON(w, health)
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	l, err := s.loadLedger()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load journal")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	views := s.chainViews(l, func(status models.Status) bool { return status == models.StatusOpen })
	s.writeJSON(w, views)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	l, err := s.loadLedger()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load journal")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	views := s.chainViews(l, func(status models.Status) bool { return status != models.StatusOpen })
	s.writeJSON(w, views)
}

func (s *Server) handleGetChain(w http.ResponseWriter, r *http.Request) {
	l, err := s.loadLedger()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load journal")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	legs := l.Chain(id)
	if len(legs) == 0 {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	s.writeJSON(w, s.chainView(l, legs))
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	l, err := s.loadLedger()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load journal")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, l.Statistics())
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) chainViews(l *ledger.Ledger, keep func(models.Status) bool) []ChainView {
	views := make([]ChainView, 0)
	for _, chainID := range l.ChainIDs() {
		legs := l.Chain(chainID)
		if len(legs) == 0 || !keep(legs[0].Status) {
			continue
		}
		views = append(views, s.chainView(l, legs))
	}
	return views
}

func (s *Server) chainView(l *ledger.Ledger, legs []models.LegRecord) ChainView {
	primary := legs[0]
	view := ChainView{
		ChainID:         primary.ChainID,
		Ticker:          primary.Ticker,
		StrategyName:    primary.StrategyName,
		Status:          string(primary.Status),
		OpenedAt:        primary.OpenedAt,
		Expiry:          primary.Expiry,
		DTE:             primary.DTE(),
		EntryPremium:    primary.EntryPremium,
		ChainNetCredit:  l.ChainNetCredit(primary.ID),
		BreakEvenLower:  primary.BreakEvenLower,
		BreakEvenUpper:  primary.BreakEvenUpper,
		POP:             primary.POP,
		MaxProfitUSD:    primary.MaxProfitUSD,
		Contracts:       primary.Contracts,
		ReservedCapital: primary.ReservedCapital,
		RealizedPnL:     primary.RealizedPnL,
	}
	for _, leg := range legs {
		view.Legs = append(view.Legs, LegView{
			ID:         leg.ID,
			ParentID:   leg.ParentID,
			Side:       string(leg.Side),
			OptionType: string(leg.OptionType),
			Strike:     leg.Strike,
			Delta:      leg.Delta,
			Contracts:  leg.Contracts,
			Status:     string(leg.Status),
		})
	}
	return view
}
