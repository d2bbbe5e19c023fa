// Package keys defines the key-material collaborators a completing context
// uses when the relier asked for encryption keys: the opaque account
// key-fetch capability ([Client]) and the relier-scoped derivation capability
// ([Deriver]), plus a default HKDF-SHA256 deriver.
//
// # Architecture boundaries
//
// This package owns key material shapes and derivation. It does NOT decide
// when keys are fetched, or what happens when token material is missing —
// that policy belongs to the broker.
package keys
