// Package energy models a user's energy curve across the day and week and
// derives how well a meeting type fits a given moment. Profiles are produced
// from historical samples by an Analyzer and consumed read-only by the
// scheduling core; a default profile is substituted when none is known.
package energy
