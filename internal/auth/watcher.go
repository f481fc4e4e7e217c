// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/taskchat-tui/internal/logging"
)

// CredentialsChange is what happened to the credentials file.
type CredentialsChange int

const (
	// CredentialsWritten means someone logged in (possibly as another user).
	CredentialsWritten CredentialsChange = iota
	// CredentialsRemoved means someone logged out.
	CredentialsRemoved
)

// String returns the change name.
func (c CredentialsChange) String() string {
	if c == CredentialsRemoved {
		return "removed"
	}
	return "written"
}

// Watcher reports changes to the credentials file made by other processes.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	events   chan CredentialsChange
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWatcher watches the credentials file at path. The parent directory is
// watched so the file may not exist yet and atomic renames are seen.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     filepath.Clean(path),
		watcher:  fw,
		debounce: debounce,
		events:   make(chan CredentialsChange, 1),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Events delivers one value per settled change. Values are dropped while the
// previous one is unread since the receiver re-reads the file anyway.
func (w *Watcher) Events() <-chan CredentialsChange {
	return w.events
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// An atomic save is a create, chmod and rename burst; settle first.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.emit()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.L().Warn("credentials watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) emit() {
	change := CredentialsWritten
	if _, err := os.Stat(w.path); errors.Is(err, os.ErrNotExist) {
		change = CredentialsRemoved
	}

	select {
	case w.events <- change:
	default:
	}
}
