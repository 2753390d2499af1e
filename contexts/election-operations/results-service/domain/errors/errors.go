package errors

import "errors"

var (
	ErrInvalidResultsInput   = errors.New("invalid results input")
	ErrPositionNotFound      = errors.New("position not found")
	ErrElectionNotFound      = errors.New("election not found")
	ErrPositionMisconfigured = errors.New("position tally configuration is invalid")
	ErrDataIntegrity         = errors.New("ballot log references a candidate outside the roster")
)
