// Package internal contains the core implementation packages for workdeck.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the workdeck application shell.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - config: Configuration loading, defaults, and validation
//   - console: Bounded in-memory log buffer with capture and archiving
//   - dialogs: File picker and confirmation prompt abstractions
//   - errors: Structured error types shared across packages
//   - eventloop: Single-owner task loop for serialized state mutation
//   - logging: Structured logger teeing terminal output into the console
//   - recent: Recently opened file history backed by SQLite
//   - redact: Sensitive data redaction applied to all logged text
//   - server: Optional HTTP/WebSocket surface for log inspection
//   - settings: Persisted user settings with file-watch reload
//   - tabular: Tabular file import (CSV and friends) into typed tables
//   - workspace: Open workspace registry with lifecycle events
//
// # Inter-Package Communication
//
// Packages communicate through well-defined interfaces:
//
//   - The console buffer is the central sink; logging, stdio capture,
//     and the server all read from or write into it
//   - The workspace registry broadcasts lifecycle events to subscribers
//   - The event loop serializes all registry mutation onto one goroutine
//   - The redaction engine is consulted at ingest time so sensitive
//     values never reach storage or subscribers
//
// For detailed documentation, see the individual package documentation.
package internal
