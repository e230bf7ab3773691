// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger wraps zerolog for the drive server.
//
// Every service method takes its logger from the request context with
// FromContext and tags entries with a "func" field naming the method, e.g.
//
//	log := logger.FromContext(ctx)
//	log.Err(err).Str("func", "*driveService.MoveFile").Stringer("file", id).Msg("error moving file")
//
// Long-lived components (stream actors, background workers) derive a
// Component logger once and attach it to the contexts they create.
package logger

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger embeds zerolog.Logger, so Debug, Info, Err and friends are called
// on it directly.
type Logger struct {
	zerolog.Logger
}

// NewLogger returns a JSON logger writing to stdout. Entries carry the role
// label, a timestamp and the calling function under "func". The global
// level starts at debug; see [SetLevel].
func NewLogger(role string) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	return &Logger{zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()}
}

// SetLevel sets the process-wide minimum level from its name ("debug",
// "info", "warn", ...). An empty name keeps the current level.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(parsed)
	return nil
}

// Nop returns a logger that discards everything. Tests use it.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// Component returns a child logger tagged with a "component" field.
func (l *Logger) Component(name string) *Logger {
	return &Logger{l.With().Str("component", name).Logger()}
}

// FromContext returns the logger attached to ctx with [Logger.WithContext].
// Without one, zerolog's default context logger is returned, never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// WithContext returns a copy of ctx carrying l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}
