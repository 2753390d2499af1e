package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CandidateTallyItem struct {
	CandidateID     string  `json:"candidate_id"`
	CandidateNumber int     `json:"candidate_number"`
	FullName        string  `json:"full_name,omitempty"`
	PartylistLabel  string  `json:"partylist_label,omitempty"`
	VoteCount       int     `json:"vote_count"`
	VotePercentage  float64 `json:"vote_percentage"`
	Rank            int     `json:"rank"`
	IsWinner        bool    `json:"is_winner"`
}

type PositionResultResponse struct {
	PositionID   string               `json:"position_id"`
	PositionName string               `json:"position_name"`
	ElectionID   string               `json:"election_id"`
	MaxVotes     int                  `json:"max_votes"`
	TotalVotes   int                  `json:"total_votes"`
	Scope        string               `json:"scope"`
	Tallies      []CandidateTallyItem `json:"tallies"`
}

type ElectionResultsResponse struct {
	ElectionID string                   `json:"election_id"`
	Scope      string                   `json:"scope"`
	Positions  []PositionResultResponse `json:"positions"`
}
