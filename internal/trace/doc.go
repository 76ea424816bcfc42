// Package trace provides durable storage for exchange logs.
//
// Every command sent over a debug connection, and the reply or fault it
// ended with, can be mirrored into a SQLite file keyed by (session, req_id).
// The log is append-mostly: a row is inserted when the command is sent and
// completed in place when its outcome is known. Sessions group exchanges by
// connection, so a failed render can be reconstructed command by command
// after the fact.
package trace
