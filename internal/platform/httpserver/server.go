package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	ballotservice "campuselect/contexts/election-operations/ballot-service"
	candidacyservice "campuselect/contexts/election-operations/candidacy-service"
	resultsservice "campuselect/contexts/election-operations/results-service"
	_ "campuselect/internal/platform/httpserver/docs"

	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	validate  *validator.Validate
	ballots   ballotservice.Module
	candidacy candidacyservice.Module
	results   resultsservice.Module
}

func New(
	ballotsModule ballotservice.Module,
	candidacyModule candidacyservice.Module,
	resultsModule resultsservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		ballots:   ballotsModule,
		candidacy: candidacyModule,
		results:   resultsModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/v1/elections/{election_id}/participation", s.handleConfirmParticipation)
	s.mux.HandleFunc("GET /api/v1/elections/{election_id}/participation", s.handleParticipationStatus)
	s.mux.HandleFunc("GET /api/v1/elections/{election_id}/ballot-status", s.handleBallotStatus)
	s.mux.HandleFunc("POST /api/v1/elections/{election_id}/positions/{position_id}/ballots", s.handleCastBallot)

	s.mux.HandleFunc("POST /api/v1/candidates", s.handleAdmitCandidate)
	s.mux.HandleFunc("PUT /api/v1/candidates/{candidate_id}", s.handleReviseCandidate)
	s.mux.HandleFunc("POST /api/v1/candidates/validate", s.handleValidateCandidate)
	s.mux.HandleFunc("GET /api/v1/positions/{position_id}/candidates", s.handlePositionRoster)

	s.mux.HandleFunc("GET /api/v1/positions/{position_id}/results", s.handlePositionResults)
	s.mux.HandleFunc("GET /api/v1/elections/{election_id}/results", s.handleElectionResults)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
