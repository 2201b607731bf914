// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lockfile provides an advisory, PID-tagged, staleness-aware
// file lock guarding concurrent sequence runs against the same suite
// workspace (§5 of the spec).
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// StaleAfter is the age past which a held lock is considered
// abandoned by a crashed process, mirroring the codebase's own
// lock-staleness window.
const StaleAfter = 1 * time.Hour

// Lock is a single advisory lock on one file path.
type Lock struct {
	path string
	file *os.File
}

// New builds a Lock at path. The containing directory is created on
// Acquire, not here.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Acquire takes a non-blocking exclusive lock, writing this process's
// PID and acquisition time into the file for later staleness checks.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0750); err != nil {
		return fmt.Errorf("%w: mkdir: %v", ErrAcquireFailed, err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0640)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrAcquireFailed, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if err == unix.EWOULDBLOCK {
			return ErrHeld
		}
		return fmt.Errorf("%w: flock: %v", ErrAcquireFailed, err)
	}

	if err := file.Truncate(0); err == nil {
		file.Seek(0, 0)
		fmt.Fprintf(file, "pid=%d\nacquired=%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
	}

	l.file = file
	return nil
}

// Release drops the lock and removes the lock file. Safe to call on an
// unacquired or already-released Lock.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	_ = os.Remove(l.path)
	return err
}

// IsStale reports whether the lock file at path is old enough, or its
// recorded holder PID dead enough, that it should be considered
// abandoned rather than actively held.
func IsStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > StaleAfter {
		return true
	}

	pid := holderPID(path)
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	if err := process.Signal(unix.Signal(0)); err != nil {
		return true
	}
	return false
}

// ForceRelease removes a lock file already confirmed stale via
// IsStale. Racy by nature: another process could acquire between the
// staleness check and this call.
func ForceRelease(path string) error {
	return os.Remove(path)
}

func holderPID(path string) int {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var pid int
	fmt.Sscanf(string(content), "pid=%d", &pid)
	return pid
}
