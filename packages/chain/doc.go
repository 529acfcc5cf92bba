// Package chain runs ordered sequences of dependent HTTP requests.
// Values extracted from earlier responses accumulate in a per-run
// context and feed the variable scope of later steps. Steps execute
// strictly sequentially; a run owns its context and results exclusively.
package chain
