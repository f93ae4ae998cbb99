// Package engine runs matches: two players, a number of turns or a stopping
// probability, a noise level and a game.
//
// ARCHITECTURAL RULE: one round fully completes (both decisions, noise, both
// histories) before the next begins. A Match owns its random source, so
// independent matches may run concurrently; nothing else is shared apart from
// the deterministic cache and the event log, which are safe for concurrent use.
package engine
