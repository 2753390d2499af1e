package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	balloterrors "campuselect/contexts/election-operations/ballot-service/domain/errors"
	ballothttp "campuselect/contexts/election-operations/ballot-service/transport/http"
)

func writeBallotError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ballothttp.ErrorResponse{Code: code, Message: message})
}

func writeBallotDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, balloterrors.ErrInvalidBallotInput):
		writeBallotError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, balloterrors.ErrVoterNotFound),
		errors.Is(err, balloterrors.ErrElectionNotFound),
		errors.Is(err, balloterrors.ErrPositionNotFound):
		writeBallotError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, balloterrors.ErrVoterNotEligible):
		writeBallotError(w, http.StatusForbidden, "not_eligible", err.Error())
	case errors.Is(err, balloterrors.ErrParticipationRequired):
		writeBallotError(w, http.StatusForbidden, "participation_required", err.Error())
	case errors.Is(err, balloterrors.ErrParticipationNotRequired):
		writeBallotError(w, http.StatusConflict, "participation_not_required", err.Error())
	case errors.Is(err, balloterrors.ErrElectionNotVotable):
		writeBallotError(w, http.StatusConflict, "election_not_votable", err.Error())
	case errors.Is(err, balloterrors.ErrBallotNotYetOpen):
		writeBallotError(w, http.StatusConflict, "ballot_not_open", err.Error())
	case errors.Is(err, balloterrors.ErrBallotClosed):
		writeBallotError(w, http.StatusConflict, "ballot_closed", err.Error())
	case errors.Is(err, balloterrors.ErrAlreadyVoted):
		writeBallotError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, balloterrors.ErrCandidateNotOnBallot):
		writeBallotError(w, http.StatusUnprocessableEntity, "candidate_not_on_ballot", err.Error())
	case errors.Is(err, balloterrors.ErrBallotWindowMisconfigured):
		writeBallotError(w, http.StatusUnprocessableEntity, "ballot_window_misconfigured", err.Error())
	default:
		writeBallotError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// requireVoterID resolves the pre-authenticated voter identity. The gateway
// in front of this service owns authentication; an absent header is a
// misrouted request.
func requireVoterID(w http.ResponseWriter, r *http.Request) (string, bool) {
	voterID := strings.TrimSpace(r.Header.Get("X-Voter-Id"))
	if voterID == "" {
		writeBallotError(w, http.StatusUnauthorized, "unauthorized", "X-Voter-Id header is required")
		return "", false
	}
	return voterID, true
}

func (s *Server) handleConfirmParticipation(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireVoterID(w, r)
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.ConfirmParticipationHandler(r.Context(), voterID, r.PathValue("election_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleParticipationStatus(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireVoterID(w, r)
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.ParticipationStatusHandler(r.Context(), voterID, r.PathValue("election_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBallotStatus(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireVoterID(w, r)
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.BallotStatusHandler(r.Context(), voterID, r.PathValue("election_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastBallot(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireVoterID(w, r)
	if !ok {
		return
	}
	var req ballothttp.CastBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	resp, err := s.ballots.Handler.CastBallotHandler(
		r.Context(),
		voterID,
		r.PathValue("election_id"),
		r.PathValue("position_id"),
		req,
	)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}
