// Package slog provides log/slog decorators for attrdump services.
package slog
