// Package resultsservice computes election results from the append-only
// ballot log: per-position tallies, ranks, and winner flags, globally or
// scoped to one department. Tallies are pure recomputations; a cache in
// front of them is invalidated by ballot.cast events.
package resultsservice
