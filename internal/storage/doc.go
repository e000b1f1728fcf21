// Package storage keeps a history of firing records in SQLite so runs can be
// inspected after the fact. It is optional: with no driver configured, Open
// returns a nil store and the rest of the program carries on without it.
package storage
