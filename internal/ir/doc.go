// Package ir provides the value types shared by every pagewin layer.
//
// Rows fetched from a backend, literals inside predicates and last-seen sort
// key values all travel as ir.Value. This package imports nothing internal,
// so every other package can depend on it.
//
// Key design constraints:
//   - NO float types: sort keys must compare exactly
//   - Compare follows SQLite's COLLATE BINARY ordering, so the in-memory
//     backend and the SQL backends agree on row order
//   - Canonical JSON (RFC 8785) is the only encoding used for cursor tokens
//     and fingerprints
package ir
