// Package prediction provides the pluggable inputs of slot scoring that come
// from outside the energy model: how available the participants are and how
// well a slot groups with meetings already placed. Data must be fetched by
// the caller beforehand; implementations here never perform I/O.
package prediction
