// Package audit delivers download events to one or more assetgate.AuditSink
// destinations without holding up the response that produced them.
//
// Async is the entry point used by the HTTP layer: its Record never blocks and a
// single worker forwards events to the wrapped sink, logging failures. Log
// writes each event as a structured slog record and Multi fans an event out
// to several sinks.
package audit
