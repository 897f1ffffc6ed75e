// Package driver implements the per-participant DKG and signing state
// machines: DkgSession and SignSession. Each is a single-threaded,
// cooperative round machine that consumes one inbound batch per call to
// Advance, performs the round's cryptographic step by delegating to
// internal/frost, and produces the next round's outbound batch via
// internal/codec. Every error the two state machines can produce is
// reported through the single Error type defined in this package.
package driver
