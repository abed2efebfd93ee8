/*
 * Davplayer is a music player for WebDAV directories.
 * Copyright (C) 2020 Tero Vierimaa
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package task provides background tasks that can be started and stopped once.
package task

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Tasker is a background service.
type Tasker interface {
	Start() error
	Stop() error
}

// Task runs loop in a goroutine until Stop is called. Loop must return once StopChan is closed.
type Task struct {
	Name string

	lock     sync.Mutex
	running  bool
	loop     func()
	stopChan chan struct{}
	done     chan struct{}
}

// SetLoop sets function to run when task is started.
func (t *Task) SetLoop(loop func()) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.loop = loop
}

// StopChan is closed when task is requested to stop.
func (t *Task) StopChan() <-chan struct{} {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.stopChan == nil {
		t.stopChan = make(chan struct{})
	}
	return t.stopChan
}

// IsRunning returns true if task is running.
func (t *Task) IsRunning() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.running
}

// Start starts the loop.
func (t *Task) Start() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.running {
		return errors.New("task already running")
	}
	if t.loop == nil {
		return errors.New("task has no loop")
	}
	if t.stopChan == nil {
		t.stopChan = make(chan struct{})
	}
	t.done = make(chan struct{})
	t.running = true

	loop := t.loop
	done := t.done
	go func() {
		defer close(done)
		loop()
	}()
	logrus.Debugf("Task %s started", t.Name)
	return nil
}

// Stop closes StopChan and waits for loop to return.
func (t *Task) Stop() error {
	t.lock.Lock()
	if !t.running {
		t.lock.Unlock()
		return errors.New("task not running")
	}
	close(t.stopChan)
	done := t.done
	t.lock.Unlock()

	<-done

	t.lock.Lock()
	t.running = false
	t.stopChan = nil
	t.lock.Unlock()
	logrus.Debugf("Task %s stopped", t.Name)
	return nil
}
