// Package store provides a SQLite-backed query executor for windowed
// reads over collection tables.
//
// Collection tables are created through CreateCollection, which also
// records their columns in a registry (schema.sql). The registry is what
// lets Fetch turn SQLite's untyped integers back into booleans and what
// makes unknown tables fail with ErrUnknownCollection instead of a driver
// error.
//
// # Query compilation
//
// Fetch and Count compile the query IR with querysql.SQLCompiler by
// default. WithCompiler swaps in another compiler, such as a goqu
// sqlite3 dialect, so both paths can be checked against the same data.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - one open connection: SQLite has a single writer
package store
