// Package relay provides an in-memory, round-robin message relay that
// drives n independent protocol sessions through a full run: gather each
// session's outbound batch for a round, reshuffle it into per-recipient
// inbound batches using the same skip-self positional rule the sessions
// themselves use, and hand each session its next round's inbound. It
// exists for tests and the CLI; a real deployment relays bytes between
// actual network peers and never needs this package.
package relay
