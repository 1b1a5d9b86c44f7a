// Package store provides a SQLite-backed journal of translations.
//
// Every translate request the CLI handles can be recorded: the operation,
// a canonical description of its operands, whether it was applicable, the
// generated SQL with its parameters, and the evaluated result when one was
// computed.
//
// # Ordering
//
// Records are ordered by seq, a logical clock assigned at write time, with
// id as tiebreaker. Queries never order by wall time:
//
//	ORDER BY seq ASC, id COLLATE BINARY ASC
//
// # Fingerprints
//
// Requests are fingerprinted with SHA-256 over their canonical JSON (RFC
// 8785 key order, NFC strings) with domain separation, so the same request
// always has the same fingerprint regardless of map order or Unicode
// normalization.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
