// Package api exposes the quote and offer engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
	"github.com/blessandsoul/project-x-sub001/internal/offer"
)

// QuoteCalculator is the slice of the quote engine the API needs.
type QuoteCalculator interface {
	Compute(ctx context.Context, vehicleID string, route model.RouteParams) ([]model.Quote, *model.Quote, error)
	Indicative() money.Cents
}

// OfferService is the slice of the offer engine the API needs.
type OfferService interface {
	Create(ctx context.Context, buyerID string, in offer.CreateInput) (*model.Offer, error)
	Get(ctx context.Context, actor offer.Actor, offerID string) (*model.Offer, error)
	List(ctx context.Context, actor offer.Actor, f offer.Filter) ([]model.Offer, error)
	Transition(ctx context.Context, actor offer.Actor, offerID string, target model.OfferStatus) (*model.Offer, error)
}

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins []string
	QuoteRPS       float64 // quote endpoint rate limit, requests per second
	QuoteBurst     int
}

// Server bundles the handlers and their dependencies.
type Server struct {
	quotes  QuoteCalculator
	offers  OfferService
	limiter *rate.Limiter
	opts    Options
}

// NewServer creates a Server. Zero QuoteRPS disables throttling.
func NewServer(quotes QuoteCalculator, offers OfferService, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{quotes: quotes, offers: offers, opts: opts}
	if opts.QuoteRPS > 0 {
		burst := opts.QuoteBurst
		if burst <= 0 {
			burst = int(opts.QuoteRPS)
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.QuoteRPS), burst)
	}
	return s
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Buyer-ID", "X-Provider-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.throttle).Post("/quotes", s.handleQuotes)

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", s.handleOfferCreate)
			r.Get("/", s.handleOfferList)
			r.Get("/{offerID}", s.handleOfferGet)
			r.Patch("/{offerID}", s.handleOfferTransition)
		})

		r.Route("/comparison", func(r chi.Router) {
			r.Post("/add", s.handleCompareAdd)
			r.Post("/remove", s.handleCompareRemove)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// throttle guards the quote endpoint: each request fans out to every
// provider, so it is the expensive one.
func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, retry shortly"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
