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

package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"tryffel.net/go/davplayer/interfaces"
	"tryffel.net/go/davplayer/models"
)

type fakeLister struct {
	tracks []*models.Track
	err    error
}

func (f *fakeLister) ListDirectory(ctx context.Context) ([]*models.Track, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tracks, nil
}

// fakeFetcher returns track path as file content.
type fakeFetcher struct {
	lock    sync.Mutex
	gates   map[string]chan struct{}
	started map[string]chan struct{}
	errors  map[string]error
	calls   []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		gates:   map[string]chan struct{}{},
		started: map[string]chan struct{}{},
		errors:  map[string]error{},
	}
}

// block makes next fetch of path wait until release is called. Started is closed once fetch begins.
func (f *fakeFetcher) block(path string) (started <-chan struct{}, release func()) {
	f.lock.Lock()
	defer f.lock.Unlock()
	gate := make(chan struct{})
	start := make(chan struct{})
	f.gates[path] = gate
	f.started[path] = start
	return start, func() { close(gate) }
}

func (f *fakeFetcher) fail(path string, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err == nil {
		delete(f.errors, path)
	} else {
		f.errors[path] = err
	}
}

func (f *fakeFetcher) FetchFile(ctx context.Context, path string) ([]byte, error) {
	f.lock.Lock()
	f.calls = append(f.calls, path)
	gate := f.gates[path]
	delete(f.gates, path)
	if start, ok := f.started[path]; ok {
		close(start)
		delete(f.started, path)
	}
	err := f.errors[path]
	f.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return []byte(path), nil
}

func (f *fakeFetcher) fetchCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.calls)
}

type fakeEngine struct {
	lock sync.Mutex
	path string

	playing bool
	stopped bool
	closed  bool
	plays   int

	duration time.Duration
	position time.Duration
	volume   models.AudioVolume
	seeks    []time.Duration
	onEnded  func()

	usedAfterClose bool
}

func (f *fakeEngine) Play() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.playing = true
	f.plays++
}

func (f *fakeEngine) Pause() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.playing = false
}

func (f *fakeEngine) Stop() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.playing = false
	f.stopped = true
}

func (f *fakeEngine) Seek(position time.Duration) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.seeks = append(f.seeks, position)
	f.position = position
	return nil
}

func (f *fakeEngine) Duration() time.Duration {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.duration
}

func (f *fakeEngine) Position() time.Duration {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.closed {
		f.usedAfterClose = true
	}
	return f.position
}

func (f *fakeEngine) SetVolume(volume models.AudioVolume) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.volume = volume
}

func (f *fakeEngine) OnEnded(cb func()) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.onEnded = cb
}

func (f *fakeEngine) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.closed = true
	f.playing = false
	return nil
}

// end simulates track reaching its end.
func (f *fakeEngine) end() {
	f.lock.Lock()
	cb := f.onEnded
	f.lock.Unlock()
	if cb != nil {
		cb()
	}
}

func (f *fakeEngine) setPosition(position time.Duration) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.position = position
}

func (f *fakeEngine) isPlaying() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.playing
}

func (f *fakeEngine) isClosed() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.closed
}

func (f *fakeEngine) getVolume() models.AudioVolume {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.volume
}

func (f *fakeEngine) lastSeek() time.Duration {
	f.lock.Lock()
	defer f.lock.Unlock()
	if len(f.seeks) == 0 {
		return -1
	}
	return f.seeks[len(f.seeks)-1]
}

type fakeFactory struct {
	lock    sync.Mutex
	engines []*fakeEngine
	// file contents that fail to decode
	broken map[string]bool
	gates  map[string]chan struct{}
	// closed once decoding of path has started
	started map[string]chan struct{}
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		broken:  map[string]bool{},
		gates:   map[string]chan struct{}{},
		started: map[string]chan struct{}{},
	}
}

// block makes next engine for path wait until release is called. Engine is created after release.
func (f *fakeFactory) block(path string) (started <-chan struct{}, release func()) {
	f.lock.Lock()
	defer f.lock.Unlock()
	gate := make(chan struct{})
	start := make(chan struct{})
	f.gates[path] = gate
	f.started[path] = start
	return start, func() { close(gate) }
}

func (f *fakeFactory) NewEngine(data []byte, format interfaces.AudioFormat) (interfaces.AudioEngine, error) {
	path := string(data)
	f.lock.Lock()
	gate := f.gates[path]
	delete(f.gates, path)
	if start, ok := f.started[path]; ok {
		close(start)
		delete(f.started, path)
	}
	f.lock.Unlock()
	if gate != nil {
		<-gate
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	if f.broken[path] {
		return nil, errors.New("invalid data")
	}
	e := &fakeEngine{path: path, duration: time.Second * 100}
	f.engines = append(f.engines, e)
	return e, nil
}

func (f *fakeFactory) all() []*fakeEngine {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]*fakeEngine, len(f.engines))
	copy(out, f.engines)
	return out
}

func (f *fakeFactory) last() *fakeEngine {
	engines := f.all()
	if len(engines) == 0 {
		return nil
	}
	return engines[len(engines)-1]
}

// live returns engines that are not closed.
func (f *fakeFactory) live() []*fakeEngine {
	out := []*fakeEngine{}
	for _, v := range f.all() {
		if !v.isClosed() {
			out = append(out, v)
		}
	}
	return out
}
