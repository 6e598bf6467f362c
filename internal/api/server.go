package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/nova-migration/migrate-go/internal/agui"
	"github.com/nova-migration/migrate-go/internal/temporal/querier"
)

// Server is the HTTP API server for prompt migration runs.
type Server struct {
	querier querier.WorkflowQuerier
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server with the given querier, CORS origins and OIDC
// settings. When OIDC is enabled the issuer is discovered up front, so an
// unreachable issuer fails startup rather than the first request.
func New(q querier.WorkflowQuerier, corsOrigins []string, oidcCfg OIDCConfig) (*Server, error) {
	s := &Server{querier: q, mux: http.NewServeMux()}
	s.routes()

	var h http.Handler = s.mux
	if oidcCfg.Enabled {
		provider, err := oidc.NewProvider(context.Background(), oidcCfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("api: oidc discovery for %s: %w", oidcCfg.IssuerURL, err)
		}
		h = oidcAuth(provider, oidcCfg.Audience)(h)
	}
	s.handler = requestID(logging(cors(corsOrigins, h)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/migrations", s.handleStartMigration)
	s.mux.HandleFunc("GET /api/v1/migrations", s.handleListMigrations)
	s.mux.HandleFunc("GET /api/v1/migrations/{id}", s.handleGetMigration)
	s.mux.HandleFunc("GET /api/v1/migrations/{id}/ui", s.handleGetMigrationUI)
	s.mux.HandleFunc("POST /api/v1/migrations/{id}/restart", s.handleRestartMigration)
	s.mux.HandleFunc("GET /api/v1/migrations/{id}/stream", agui.StreamHandler(s.querier, agui.DefaultConfig()))
}
