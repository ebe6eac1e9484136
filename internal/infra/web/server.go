// Package web exposes the admin HTTP surface: health, Prometheus metrics and
// a small read-only JSON API over budgets, users and products.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
	"github.com/misterioso013/meu-orcamento-bot/internal/usecase"
)

type Server struct {
	budgetUC  usecase.BudgetUseCase
	productUC usecase.ProductUseCase
	orderUC   usecase.OrderUseCase
	messages  repository.MessageRepository
	users     repository.UserRepository
	apiKey    string
	log       *zerolog.Logger

	httpServer *http.Server
}

func NewServer(
	budgetUC usecase.BudgetUseCase,
	productUC usecase.ProductUseCase,
	orderUC usecase.OrderUseCase,
	messages repository.MessageRepository,
	users repository.UserRepository,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		budgetUC:  budgetUC,
		productUC: productUC,
		orderUC:   orderUC,
		messages:  messages,
		users:     users,
		apiKey:    apiKey,
		log:       logger,
	}
}

// Router builds the chi router with the admin API behind bearer auth.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(traceID)
	r.Use(recoverer(s.log))
	r.Use(requestLog(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(bearerAuth(s.apiKey, s.log))
		r.Get("/budgets", s.listBudgets)
		r.Get("/budgets/{id}", s.getBudget)
		r.Get("/budgets/{id}/messages", s.listBudgetMessages)
		r.Get("/users", s.listUsers)
		r.Get("/users/{id}/orders", s.listUserOrders)
		r.Get("/products", s.listProducts)
	})
	return r
}

// Start serves until ctx is cancelled, then drains with a short grace period.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
