// Package dialect holds the per-backend SQL text and connection conventions
// used by the key-value store.
//
// A Dialect knows three things about one relational engine:
//   - how to render the fixed statement table (existence check, DDL, point and
//     namespace reads, upsert, deletes) for a table name
//   - how to turn a backend descriptor into a database/sql DSN
//   - how to bind the upsert parameters, including the row timestamp
//
// # Statement Table
//
// Build renders every statement once per (dialect, table, naming) triple into
// an immutable Statements value. Parameters are always positional and always
// supplied in the order the text expects:
//
//	exists:     table, [schema]
//	get:        namespace, key
//	get_all:    namespace
//	keys:       namespace
//	set:        namespace, key, value, timestamp
//	remove:     namespace, key
//	remove_all: namespace
//
// # Table Schema
//
//	namespace   <= 50 chars, primary key part
//	key         <= 100 chars, primary key part
//	value       <= 4000 chars, text
//	timestamp   backend-native date-time
//
// Column names follow one of two naming schemes (kv_ prefixed or plain),
// selected per table with Naming.
package dialect
