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
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"tryffel.net/go/davplayer/interfaces"
	"tryffel.net/go/davplayer/models"
)

// session is a single track being loaded or played. Session owns its engine and progress sampler,
// and both are released on teardown.
type session struct {
	lock       sync.Mutex
	generation uint64
	track      *models.Track
	// index in view when session was started
	index int

	state  models.AudioState
	engine interfaces.AudioEngine

	position time.Duration
	duration time.Duration
	progress float64

	stopSampling chan struct{}
	released     bool
}

func newSession(generation uint64, track *models.Track, index int) *session {
	return &session{
		generation: generation,
		track:      track,
		index:      index,
		state:      models.AudioStateLoading,
	}
}

// start takes ownership of engine and starts playback and progress sampling. onSample is called
// after every sample taken while playing.
func (s *session) start(engine interfaces.AudioEngine, interval time.Duration, onSample func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.released {
		// never happens under player lock, but don't leak engine if it does
		_ = engine.Close()
		return
	}
	s.engine = engine
	s.duration = engine.Duration()
	s.engine.Play()
	s.state = models.AudioStatePlaying
	s.stopSampling = make(chan struct{})
	go s.sampleLoop(interval, s.stopSampling, onSample)
}

func (s *session) sampleLoop(interval time.Duration, stop <-chan struct{}, onSample func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.sample() && onSample != nil {
				onSample()
			}
		}
	}
}

// sample reads position from engine. Returns false if session is not playing.
func (s *session) sample() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.state != models.AudioStatePlaying || s.engine == nil {
		return false
	}
	s.updatePosition()
	return true
}

// caller must hold lock
func (s *session) updatePosition() {
	s.position = s.engine.Position()
	s.progress = fraction(s.position, s.duration)
}

func (s *session) pause() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.state != models.AudioStatePlaying || s.engine == nil {
		return false
	}
	s.engine.Pause()
	s.updatePosition()
	s.state = models.AudioStatePaused
	return true
}

func (s *session) resume() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.state != models.AudioStatePaused || s.engine == nil {
		return false
	}
	s.engine.Play()
	s.state = models.AudioStatePlaying
	return true
}

// seek to fraction of duration. Fraction must be in [0,1].
func (s *session) seek(f float64) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.engine == nil || (s.state != models.AudioStatePlaying && s.state != models.AudioStatePaused) {
		return false
	}
	target := time.Duration(f * float64(s.duration))
	err := s.engine.Seek(target)
	if err != nil {
		logrus.Errorf("seek to %s: %v", target, err)
		return false
	}
	s.updatePosition()
	return true
}

func (s *session) setVolume(volume models.AudioVolume) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.engine != nil {
		s.engine.SetVolume(volume)
	}
}

func (s *session) getState() models.AudioState {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// snapshot returns state and last known progress.
func (s *session) snapshot() (state models.AudioState, position, duration time.Duration, progress float64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state, s.position, s.duration, s.progress
}

// teardown stops sampling, stops engine and releases it. State is set to final unless session
// has already been released. Teardown can be called multiple times.
func (s *session) teardown(final models.AudioState) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.state = final
	if final == models.AudioStateEnded {
		s.position = s.duration
		s.progress = 1
	}
	if s.stopSampling != nil {
		close(s.stopSampling)
		s.stopSampling = nil
	}
	if s.engine != nil {
		s.engine.Stop()
		err := s.engine.Close()
		if err != nil {
			logrus.Errorf("close audio engine: %v", err)
		}
		s.engine = nil
	}
}

// fraction returns position / duration clamped to [0,1]. Zero duration returns 0.
func fraction(position, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	return clampFraction(float64(position) / float64(duration))
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
