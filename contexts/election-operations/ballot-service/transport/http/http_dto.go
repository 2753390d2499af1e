package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastBallotRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
}

type CastBallotResponse struct {
	BallotID    string `json:"ballot_id"`
	ElectionID  string `json:"election_id"`
	PositionID  string `json:"position_id"`
	CandidateID string `json:"candidate_id"`
	SubmittedAt string `json:"submitted_at"`
}

type ConfirmParticipationResponse struct {
	ElectionID       string `json:"election_id"`
	VoterID          string `json:"voter_id"`
	Status           string `json:"status"`
	ConfirmedAt      string `json:"confirmed_at"`
	AlreadyConfirmed bool   `json:"already_confirmed"`
}

type ParticipationStatusResponse struct {
	ElectionID string `json:"election_id"`
	VoterID    string `json:"voter_id"`
	Status     string `json:"status"`
}

type PositionStatusItem struct {
	PositionID    string `json:"position_id"`
	Name          string `json:"name"`
	Order         int    `json:"order"`
	MaxVotes      int    `json:"max_votes"`
	State         string `json:"state,omitempty"`
	Blocked       bool   `json:"blocked"`
	BallotOpenAt  string `json:"ballot_open_at"`
	BallotCloseAt string `json:"ballot_close_at"`
}

type BallotStatusResponse struct {
	ElectionID     string               `json:"election_id"`
	ElectionType   string               `json:"election_type"`
	ElectionStatus string               `json:"election_status"`
	Participation  string               `json:"participation"`
	Positions      []PositionStatusItem `json:"positions"`
}
