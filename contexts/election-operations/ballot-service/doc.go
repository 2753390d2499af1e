// Package ballotservice implements the voter-facing ballot workflow inside
// the election-operations context.
//
// The module owns ballot-state evaluation (eligibility, participation
// confirmation, voting time windows), the one-ballot-per-position cast
// operation, and ballot lifecycle event production through an outbox-backed
// relay. It keeps business rules in application/domain layers and isolates
// infrastructure concerns behind ports and adapters.
package ballotservice
