// Package queryir provides an abstract query intermediate representation
// (IR) for windowed reads.
//
// The windowing policy never writes SQL. It rewrites a base Select (adding
// ORDER BY, LIMIT, OFFSET and keyset predicates) and hands the result to
// an executor, which compiles or evaluates it:
//
//	[window.Resolve] -> [Query IR] -> [querysql]   (SQLite text)
//	                               -> [querygoqu]  (sqlite3/postgres/mysql)
//	                               -> [memory]     (direct evaluation)
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method
// pattern. Only types in this package implement them, so backends can use
// exhaustive type switches:
//
//	switch p := queryir.Unwrap(pred).(type) {
//	case queryir.Equals:
//	case queryir.Compare:
//	case queryir.RowCompare:
//	case queryir.IsNull:
//	case queryir.And:
//	case queryir.Or:
//	}
//
// All literal values use ir.Value (no floats), so comparisons are exact
// and keyset values encode canonically into cursor tokens.
//
// PORTABLE FRAGMENT:
//
// Validate reports features that not every executor can run the same way:
// NULL literals, row-value comparisons, SELECT *, and LIMIT or OFFSET
// without ORDER BY.
package queryir
