// Package httppresentation exposes the use cases over HTTP/JSON.
package httppresentation

import (
	"context"
	"net/http"
	"slices"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability/logctx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

const componentHTTPServer = "http_server"

// Services are the use cases the server routes to.
type Services struct {
	Auth       AuthService
	Listings   ListingService
	Orders     OrderService
	Deliveries DeliveryService
	Users      UserService
}

type Options struct {
	// Development adds error detail to error responses.
	Development bool
	// SecureCookies marks the jwt cookie Secure.
	SecureCookies  bool
	AllowedOrigins []string
	// Metrics, when set, is served on GET /metrics.
	Metrics http.Handler
	// Health, when set, backs GET /health; an error answers 503.
	Health func(ctx context.Context) error
}

type Server struct {
	svc      Services
	opts     Options
	log      observability.Logger
	tel      observability.Observability
	validate *validator.Validate

	reqCounter   observability.Counter   // http_requests_total{method,route,status}
	durHistogram observability.Histogram // http_request_duration_seconds{method,route,status}
}

func NewServer(svc Services, opts Options, tel observability.Observability) *Server {
	tel = observability.OrNop(tel)
	return &Server{
		svc:          svc,
		opts:         opts,
		log:          tel.Logger().With(observability.F("component", componentHTTPServer)),
		tel:          tel,
		validate:     newValidator(),
		reqCounter:   tel.Metrics().Counter(observability.MHTTPRequests),
		durHistogram: tel.Metrics().Histogram(observability.MHTTPRequestDuration),
	}
}

// Router builds the route table. Each route runs
// Trace → request logger → HTTP metrics → access log → recover → handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(s.corsOptions()))
	r.NotFound(s.instrument("unmatched", func(w http.ResponseWriter, r *http.Request) {
		s.writeFail(w, http.StatusNotFound, "can't find "+r.URL.Path+" on this server")
	}))
	r.MethodNotAllowed(s.instrument("unmatched", func(w http.ResponseWriter, r *http.Request) {
		s.writeFail(w, http.StatusMethodNotAllowed, "method "+r.Method+" is not allowed on "+r.URL.Path)
	}))

	s.handle(r, http.MethodGet, "/health", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	s.handle(r, http.MethodPost, "/register", s.handleRegister)
	s.handle(r, http.MethodPost, "/login", s.handleLogin)

	s.handle(r, http.MethodGet, "/products", s.handleListListings)
	s.handle(r, http.MethodGet, "/products/{id}", s.handleListingsByUser)
	s.handle(r, http.MethodPost, "/products/list", s.protect(s.handleCreateListing, user.RoleInventoryManager))
	s.handle(r, http.MethodPatch, "/products/{id}/price", s.protect(s.handleUpdatePrice, user.RoleInventoryManager))
	s.handle(r, http.MethodDelete, "/products/{id}", s.protect(s.handleUnlist, user.RoleInventoryManager))

	s.handle(r, http.MethodPost, "/orders/create", s.protect(s.handleCreateOrder))
	s.handle(r, http.MethodGet, "/orders/{id}", s.protect(s.handleGetOrder))

	s.handle(r, http.MethodPost, "/delivery/assign/{id}", s.handleAssignDelivery)
	s.handle(r, http.MethodPost, "/delivery/{id}", s.handleDeliveryStatus)
	s.handle(r, http.MethodGet, "/delivery/{id}", s.handleDeliveryStatus)
	s.handle(r, http.MethodGet, "/delivery/person/{id}", s.handleDeliveriesForPerson)
	s.handle(r, http.MethodPatch, "/delivery/{id}/status", s.protect(s.handleUpdateDeliveryStatus, user.RoleDeliveryPerson))

	s.handle(r, http.MethodGet, "/users", s.protect(s.handleListUsers))
	s.handle(r, http.MethodGet, "/users/{id}", s.handleGetUser)

	return r
}

func (s *Server) handle(r chi.Router, method, route string, h http.HandlerFunc) {
	r.Method(method, route, s.instrument(route, h))
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	wrapped := s.withTrace(
		ObservabilityMiddleware(
			s.log,
			func(r *http.Request) string { return r.Header.Get(headerRequestID) },
			s.tel,
		)(
			s.withHTTPMetrics(
				s.withAccessLog(
					s.withRecover(h),
				),
			),
		),
	)
	return func(w http.ResponseWriter, r *http.Request) {
		wrapped.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), route)))
	}
}

// corsOptions reflects the request origin when every origin is allowed, since
// browsers reject a literal "*" on credentialed responses.
func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", headerRequestID, "Traceparent", "Tracestate"},
		ExposedHeaders:   []string{headerRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(opts.AllowedOrigins) == 0 || slices.Contains(opts.AllowedOrigins, "*") {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	}
	return opts
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			logctx.FromOr(r.Context(), s.log).Warn("health_check_failed", observability.F("error", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
