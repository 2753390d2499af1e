package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	candidacyerrors "campuselect/contexts/election-operations/candidacy-service/domain/errors"
	candidacyhttp "campuselect/contexts/election-operations/candidacy-service/transport/http"
)

func writeCandidacyError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, candidacyhttp.ErrorResponse{Code: code, Message: message})
}

func writeCandidacyDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, candidacyerrors.ErrInvalidCandidateInput):
		writeCandidacyError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, candidacyerrors.ErrCandidateNotFound),
		errors.Is(err, candidacyerrors.ErrElectionNotFound),
		errors.Is(err, candidacyerrors.ErrPositionNotFound),
		errors.Is(err, candidacyerrors.ErrVoterNotFound),
		errors.Is(err, candidacyerrors.ErrPartylistNotFound):
		writeCandidacyError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, candidacyerrors.ErrElectionLocked):
		writeCandidacyError(w, http.StatusConflict, "election_locked", err.Error())
	default:
		writeCandidacyError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// writeAdmission picks the status from the verdict: admitted writes the
// success status, a rejection writes 422 with the ordered violation list.
func writeAdmission(w http.ResponseWriter, successStatus int, resp candidacyhttp.AdmissionResponse) {
	if resp.Admitted {
		writeJSON(w, successStatus, resp)
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func (s *Server) handleAdmitCandidate(w http.ResponseWriter, r *http.Request) {
	var req candidacyhttp.AdmitCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCandidacyError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeCandidacyError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	resp, err := s.candidacy.Handler.AdmitCandidateHandler(r.Context(), req)
	if err != nil {
		writeCandidacyDomainError(w, err)
		return
	}
	writeAdmission(w, http.StatusCreated, resp)
}

func (s *Server) handleReviseCandidate(w http.ResponseWriter, r *http.Request) {
	var req candidacyhttp.ReviseCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCandidacyError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	resp, err := s.candidacy.Handler.ReviseCandidateHandler(r.Context(), r.PathValue("candidate_id"), req)
	if err != nil {
		writeCandidacyDomainError(w, err)
		return
	}
	writeAdmission(w, http.StatusOK, resp)
}

func (s *Server) handleValidateCandidate(w http.ResponseWriter, r *http.Request) {
	var req candidacyhttp.ValidateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCandidacyError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeCandidacyError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	resp, err := s.candidacy.Handler.ValidateCandidateHandler(r.Context(), req)
	if err != nil {
		writeCandidacyDomainError(w, err)
		return
	}
	// A dry run always answers 200; the verdict is in the body.
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePositionRoster(w http.ResponseWriter, r *http.Request) {
	resp, err := s.candidacy.Handler.PositionRosterHandler(r.Context(), r.PathValue("position_id"))
	if err != nil {
		writeCandidacyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
