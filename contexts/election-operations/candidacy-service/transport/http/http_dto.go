package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AdmitCandidateRequest struct {
	ElectionID  string `json:"election_id" validate:"required"`
	PositionID  string `json:"position_id" validate:"required"`
	VoterID     string `json:"voter_id" validate:"required"`
	PartylistID string `json:"partylist_id,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

type ReviseCandidateRequest struct {
	PositionID  string `json:"position_id,omitempty"`
	PartylistID string `json:"partylist_id,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

type ValidateCandidateRequest struct {
	EditingID   string `json:"editing_id,omitempty"`
	ElectionID  string `json:"election_id" validate:"required"`
	PositionID  string `json:"position_id" validate:"required"`
	VoterID     string `json:"voter_id" validate:"required"`
	PartylistID string `json:"partylist_id,omitempty"`
}

type RuleViolationItem struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type CandidateResponse struct {
	CandidateID     string `json:"candidate_id"`
	ElectionID      string `json:"election_id"`
	PositionID      string `json:"position_id"`
	VoterID         string `json:"voter_id"`
	PartylistID     string `json:"partylist_id,omitempty"`
	PartylistKey    string `json:"partylist_key"`
	CandidateNumber int    `json:"candidate_number"`
	Platform        string `json:"platform,omitempty"`
	FiledAt         string `json:"filed_at"`
}

type AdmissionResponse struct {
	Admitted   bool                `json:"admitted"`
	Candidate  *CandidateResponse  `json:"candidate,omitempty"`
	Violations []RuleViolationItem `json:"violations,omitempty"`
}

type RosterItemResponse struct {
	CandidateID     string `json:"candidate_id"`
	VoterID         string `json:"voter_id"`
	FullName        string `json:"full_name,omitempty"`
	CandidateNumber int    `json:"candidate_number"`
	PartylistID     string `json:"partylist_id,omitempty"`
	PartylistName   string `json:"partylist_name,omitempty"`
	Platform        string `json:"platform,omitempty"`
}

type RosterResponse struct {
	PositionID   string               `json:"position_id"`
	PositionName string               `json:"position_name"`
	ElectionID   string               `json:"election_id"`
	Items        []RosterItemResponse `json:"items"`
}
