// Package harness runs windowed-read scenarios against every backend and
// checks that they agree.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: keyset_walk
//	description: "Walk published articles by title"
//	specs: ../specs                 # CUE collection specs, relative to the file
//	collection: Articles
//	fixture: ../fixtures/articles.yaml
//	backends: [memory, sqlite, goqu] # optional, default all
//	steps:
//	  - name: first
//	    request:
//	      filter: {status: published}
//	      sort: "title:asc"
//	      keyset: true
//	      size: 5
//	      shape: window
//	    expect:
//	      keys: [1, 17, 19, 11, 13]
//	      has_next: true
//	  - name: second
//	    follow: next                  # run the previous request at its next token
//	    expect:
//	      has_previous: true
//
// # Checks
//
// Each step's outcome (item keys, has_next, has_previous, total, tokens,
// error code) is checked against its expect clause on every backend, and
// every backend must produce the same outcomes as the first one. Only the
// fields present in expect are compared.
//
// # Deterministic Testing
//
// Every backend starts from the same fixture in a fresh store (in-memory
// SQLite for the sqlite and goqu backends), and cursor tokens are signed
// with the scenario name, so outcomes are reproducible and can be compared
// against golden files with RunWithGolden.
package harness
