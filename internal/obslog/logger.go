// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package obslog provides the structured logger every component of
// this runtime logs through.
//
// It is layered the same way the rest of this codebase's logging is:
// stderr by default (text, Unix-friendly for CLI usage), an optional
// file sink for long-running processes (tia serve), and a pluggable
// Exporter for shipping records to an external sink (e.g. alongside a
// sequence report upload).
//
// # Basic usage
//
//	log := obslog.New(obslog.Config{Service: "tia"})
//	log.Info("sequence starting", "mode", "impact_analysis", "suite", "main")
//	log.Error("ingestion failed", "error", err)
//
// # Thread safety
//
// Logger is safe for concurrent use; the underlying slog.Logger is
// thread-safe and file-sink writes are serialized by a mutex.
package obslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level mirrors the slog severity ladder.
type Level int

const (
	LevelDebug Level = iota - 1
	LevelInfo        // the zero value
	LevelWarn
	LevelError
)

func (l Level) toSlog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Record is what an Exporter receives: a single structured log entry.
type Record struct {
	Time    time.Time
	Level   Level
	Message string
	Attrs   map[string]any
}

// Exporter receives log records for enterprise/CI sinks (e.g. shipping
// ingestion warnings alongside an uploaded report). Export is called
// synchronously on the logging goroutine, so implementations must not
// block the caller.
type Exporter interface {
	Export(Record)
}

// Config configures a Logger. The zero value logs Info+ to stderr as
// text.
type Config struct {
	// Level sets the minimum severity logged.
	Level Level

	// LogDir enables file logging to {LogDir}/{Service}_{date}.log in
	// JSON, in addition to stderr. Supports "~" expansion.
	LogDir string

	// Service identifies the component; included as the "service"
	// attribute on every record.
	Service string

	// JSON forces JSON-formatted stderr output. File output is always
	// JSON, and while a file sink is open stderr output is JSON as well,
	// since both writers share one handler.
	JSON bool

	// Quiet disables stderr output entirely.
	Quiet bool

	// Exporter, if set, receives every record that passes the level
	// filter.
	Exporter Exporter
}

// Logger is the structured logger used throughout this runtime.
type Logger struct {
	slog     *slog.Logger
	level    Level
	exporter Exporter
	file     *os.File
	mu       sync.Mutex
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	var writers []io.Writer

	if !cfg.Quiet {
		writers = append(writers, os.Stderr)
	}

	var file *os.File
	if cfg.LogDir != "" {
		if f, err := openLogFile(cfg.LogDir, cfg.Service); err == nil {
			file = f
			writers = append(writers, f)
		}
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.Level.toSlog()}

	switch {
	case len(writers) == 0:
		handler = slog.NewTextHandler(io.Discard, opts)
	case cfg.JSON || file != nil:
		handler = slog.NewJSONHandler(io.MultiWriter(writers...), opts)
	default:
		handler = slog.NewTextHandler(io.MultiWriter(writers...), opts)
	}

	base := slog.New(handler)
	if cfg.Service != "" {
		base = base.With("service", cfg.Service)
	}

	return &Logger{slog: base, level: cfg.Level, exporter: cfg.Exporter, file: file}
}

// Default returns a Logger writing Info+ to stderr as text, matching
// typical CLI invocation.
func Default() *Logger {
	return New(Config{})
}

func openLogFile(dir, service string) (*os.File, error) {
	expanded := dir
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}

	if err := os.MkdirAll(expanded, 0o750); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	return os.OpenFile(filepath.Join(expanded, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
}

func (l *Logger) export(level Level, msg string, args []any) {
	if l.exporter == nil || level < l.level {
		return
	}
	attrs := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			attrs[key] = args[i+1]
		}
	}
	l.exporter.Export(Record{Time: time.Now(), Level: level, Message: msg, Attrs: attrs})
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
	l.export(LevelDebug, msg, args)
}

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
	l.export(LevelInfo, msg, args)
}

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
	l.export(LevelWarn, msg, args)
}

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
	l.export(LevelError, msg, args)
}

// Warnf implements the small Warnf-only interfaces (target.Warner,
// depmap.Warner, ...) that components accept so they don't need to
// import obslog directly.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// With returns a Logger that attaches the given key/value attrs to
// every subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), level: l.level, exporter: l.exporter, file: l.file}
}

// WithContext returns the logger unmodified; reserved for future
// context-scoped attribute propagation (e.g. trace/span IDs pulled
// from ctx) without changing every call site's signature.
func (l *Logger) WithContext(_ context.Context) *Logger {
	return l
}

// Close flushes and closes the file sink, if one is open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
