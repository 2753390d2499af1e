package httpserver

import (
	"errors"
	"net/http"

	resultserrors "campuselect/contexts/election-operations/results-service/domain/errors"
	resultshttp "campuselect/contexts/election-operations/results-service/transport/http"
)

func writeResultsError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, resultshttp.ErrorResponse{Code: code, Message: message})
}

func writeResultsDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, resultserrors.ErrInvalidResultsInput):
		writeResultsError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, resultserrors.ErrPositionNotFound),
		errors.Is(err, resultserrors.ErrElectionNotFound):
		writeResultsError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, resultserrors.ErrPositionMisconfigured):
		writeResultsError(w, http.StatusUnprocessableEntity, "position_misconfigured", err.Error())
	case errors.Is(err, resultserrors.ErrDataIntegrity):
		writeResultsError(w, http.StatusUnprocessableEntity, "data_integrity", err.Error())
	default:
		writeResultsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handlePositionResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.results.Handler.PositionResultsHandler(
		r.Context(),
		r.PathValue("position_id"),
		r.URL.Query().Get("department_id"),
	)
	if err != nil {
		writeResultsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleElectionResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.results.Handler.ElectionResultsHandler(
		r.Context(),
		r.PathValue("election_id"),
		r.URL.Query().Get("department_id"),
	)
	if err != nil {
		writeResultsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
