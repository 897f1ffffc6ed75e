// Package codec implements the envelope and batch wire format the driver
// exchanges with an untrusted relay: the two init envelopes (GroupInit,
// Init), the packed-batch framing used for every mid-protocol round, and
// the per-message-kind outbound helpers (serialize_bcast, serialize_uni,
// inflate) the state machines use to build outbound bytes. Encoding is
// CBOR throughout (github.com/fxamacker/cbor/v2), matching the wire
// format the rest of this lineage uses for round messages.
//
// This package knows nothing about FROST itself; the DKG/sign round
// payload shapes it defines (Round1PackageWire and friends) are plain
// byte-slice DTOs. internal/driver owns converting those to and from
// internal/frost's opaque scalar/point types.
package codec
