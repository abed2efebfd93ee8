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

// Package player contains playback logic for davplayer. Player owns at most one playback session, plays
// tracks from catalog view and advances to next track when a track ends.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"tryffel.net/go/davplayer/api"
	"tryffel.net/go/davplayer/config"
	"tryffel.net/go/davplayer/interfaces"
	"tryffel.net/go/davplayer/metrics"
	"tryffel.net/go/davplayer/models"
	"tryffel.net/go/davplayer/task"
)

// Options tune player behaviour.
type Options struct {
	// Volume is applied to first session.
	Volume models.AudioVolume
	// SkipOnError skips tracks that fail to load when advancing automatically.
	SkipOnError bool
	// ProgressInterval is how often progress is sampled while playing.
	ProgressInterval time.Duration
}

// OptionsFromConfig returns options from config.AppConfig.
func OptionsFromConfig() Options {
	return Options{
		Volume:           models.AudioVolume(config.AppConfig.Player.Volume),
		SkipOnError:      config.AppConfig.Player.SkipOnError,
		ProgressInterval: config.ProgressInterval,
	}
}

var _ interfaces.Player = (*Player)(nil)
var _ interfaces.EngineFactory = (*Speaker)(nil)

// Player implements interfaces.Player and task.Tasker. All indices are resolved against the live
// playlist at the time they are used.
type Player struct {
	task.Task

	lock *sync.RWMutex

	playlist interfaces.Playlist
	fetcher  api.Fetcher
	engines  interfaces.EngineFactory

	session *session
	// generation increments on every play and stop, in-flight loads with older generation are discarded
	generation uint64

	volume           models.AudioVolume
	skipOnError      bool
	progressInterval time.Duration

	lastAction models.AudioAction
	lastError  string

	statusCallbacks []func(status models.AudioStatus)

	songComplete chan uint64
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewPlayer creates new player. Player must be started before tracks advance automatically.
func NewPlayer(playlist interfaces.Playlist, fetcher api.Fetcher, engines interfaces.EngineFactory,
	opts Options) *Player {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = config.ProgressInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		lock:             &sync.RWMutex{},
		playlist:         playlist,
		fetcher:          fetcher,
		engines:          engines,
		volume:           opts.Volume.Clamp(),
		skipOnError:      opts.SkipOnError,
		progressInterval: opts.ProgressInterval,
		statusCallbacks:  make([]func(status models.AudioStatus), 0),
		songComplete:     make(chan uint64, 3),
		ctx:              ctx,
		cancel:           cancel,
	}
	p.Name = "Player"
	p.Task.SetLoop(p.loop)
	return p
}

// Start starts advancing tracks. Stopped player can be started again.
func (p *Player) Start() error {
	if p.IsRunning() {
		return errors.New("player already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.lock.Lock()
	p.cancel()
	p.ctx = ctx
	p.cancel = cancel
	p.lock.Unlock()
	return p.Task.Start()
}

func (p *Player) loop() {
	stop := p.StopChan()
	p.lock.RLock()
	ctx, cancel := p.ctx, p.cancel
	p.lock.RUnlock()
	for {
		select {
		case <-stop:
			cancel()
			p.StopMedia()
			return
		case generation := <-p.songComplete:
			logrus.Debug("song complete")
			go p.trackEnded(ctx, generation)
		}
	}
}

// notify song has completed. Called by engine, never under player lock.
func (p *Player) songCompleted(generation uint64) {
	p.lock.RLock()
	done := p.ctx.Done()
	p.lock.RUnlock()
	select {
	case p.songComplete <- generation:
	case <-done:
	}
}

// Play starts playing track in given view index. Existing session is stopped before new track
// is downloaded. If index is not in view, nothing is done and models.ErrIndexOutOfRange is returned.
// If another Play or StopMedia is called before track is loaded, ErrSuperseded is returned and
// loaded track is discarded.
func (p *Player) Play(ctx context.Context, index int) error {
	_, err := p.play(ctx, index, models.AudioActionPlay)
	return err
}

func (p *Player) play(ctx context.Context, index int, action models.AudioAction) (uint64, error) {
	p.lock.Lock()
	track, err := p.playlist.TrackAt(index)
	if err != nil {
		p.lock.Unlock()
		logrus.Debugf("ignore play: %v", err)
		return 0, err
	}

	p.generation++
	generation := p.generation
	if p.session != nil {
		p.session.teardown(models.AudioStateStopped)
	}
	s := newSession(generation, track, index)
	p.session = s
	p.lastAction = action
	p.lastError = ""
	p.lock.Unlock()

	logrus.Infof("Play %s (%d)", track.Name, index)
	p.flushStatus()

	start := time.Now()
	data, err := p.fetcher.FetchFile(ctx, track.Path)
	metrics.TrackFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return generation, p.abort(s, "fetch_error", api.NewRemoteError("fetch", track.Path, err))
	}
	metrics.TrackFetchBytes.Add(float64(len(data)))
	if !p.isCurrent(s) {
		metrics.PlaybackSessionsTotal.WithLabelValues("superseded").Inc()
		logrus.Debugf("discard downloaded track %s, superseded", track.Name)
		return generation, ErrSuperseded
	}

	format, err := interfaces.TrackAudioFormat(track)
	if err != nil {
		return generation, p.abort(s, "engine_error", &EngineConstructionError{Path: track.Path, Err: err})
	}
	engine, err := p.engines.NewEngine(data, format)
	if err != nil {
		return generation, p.abort(s, "engine_error",
			&EngineConstructionError{Path: track.Path, Format: format, Err: err})
	}

	p.lock.Lock()
	if p.session != s || p.generation != generation {
		p.lock.Unlock()
		if err := engine.Close(); err != nil {
			logrus.Errorf("close superseded engine: %v", err)
		}
		metrics.PlaybackSessionsTotal.WithLabelValues("superseded").Inc()
		logrus.Debugf("discard decoded track %s, superseded", track.Name)
		return generation, ErrSuperseded
	}
	engine.SetVolume(p.volume)
	engine.OnEnded(func() {
		p.songCompleted(generation)
	})
	s.start(engine, p.progressInterval, p.progressUpdated)
	p.lock.Unlock()

	metrics.PlaybackSessionsTotal.WithLabelValues("started").Inc()
	p.flushStatus()
	return generation, nil
}

// abort failed load. If session is still current, player returns to having no session.
func (p *Player) abort(s *session, outcome string, err error) error {
	p.lock.Lock()
	if p.session != s {
		p.lock.Unlock()
		metrics.PlaybackSessionsTotal.WithLabelValues("superseded").Inc()
		logrus.Debugf("ignore failure of superseded track %s: %v", s.track.Name, err)
		return ErrSuperseded
	}
	s.teardown(models.AudioStateStopped)
	p.session = nil
	p.lastAction = models.AudioActionError
	p.lastError = err.Error()
	p.lock.Unlock()

	metrics.PlaybackSessionsTotal.WithLabelValues(outcome).Inc()
	logrus.Errorf("play %s: %v", s.track.Name, err)
	p.flushStatus()
	return err
}

func (p *Player) isCurrent(s *session) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.session == s && p.generation == s.generation
}

func (p *Player) currentGeneration() uint64 {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.generation
}

// trackEnded plays next track if session with given generation is still current.
func (p *Player) trackEnded(ctx context.Context, generation uint64) {
	p.lock.Lock()
	s := p.session
	if s == nil || s.generation != generation || p.generation != generation {
		p.lock.Unlock()
		logrus.Debugf("ignore end of superseded session %d", generation)
		return
	}
	s.teardown(models.AudioStateEnded)
	next, ok := p.relativeIndex(s, 1)
	p.lastAction = models.AudioActionEnded
	p.lock.Unlock()

	logrus.Infof("Track %s ended", s.track.Name)
	p.flushStatus()
	if !ok {
		return
	}
	p.advance(ctx, next, generation)
}

// advance plays index. If track cannot be loaded and skipping is enabled, following tracks are tried
// until one plays, every track has been tried once, or someone else starts playback.
func (p *Player) advance(ctx context.Context, index int, generation uint64) {
	attempts := p.playlist.Len()
	for i := 0; i < attempts; i++ {
		if p.currentGeneration() != generation {
			return
		}
		var err error
		generation, err = p.play(ctx, index, models.AudioActionNext)
		if err == nil {
			return
		}
		if errors.Is(err, ErrSuperseded) || errors.Is(err, models.ErrIndexOutOfRange) || ctx.Err() != nil {
			return
		}
		if !p.skipOnError {
			return
		}
		n := p.playlist.Len()
		if n == 0 {
			return
		}
		logrus.Warningf("Skip track %d: %v", index, err)
		metrics.AutoAdvanceSkipsTotal.Inc()
		index = (index + 1) % n
	}
	logrus.Errorf("No playable tracks after %d attempts", attempts)
}

// relativeIndex resolves session track against live playlist and returns index offset from it,
// wrapping around both ends. If track is no longer visible, offset is counted from the index the
// track had when it was started. Caller must hold lock.
func (p *Player) relativeIndex(s *session, offset int) (int, bool) {
	n := p.playlist.Len()
	if n == 0 {
		return 0, false
	}
	current := p.playlist.IndexOf(s.track.Path)
	if current < 0 {
		current = s.index
		if offset > 0 {
			// next track has moved to the slot of removed track
			offset--
		}
	}
	i := (current + offset) % n
	if i < 0 {
		i += n
	}
	return i, true
}

// Next plays next track in view.
func (p *Player) Next(ctx context.Context) error {
	return p.skip(ctx, 1, models.AudioActionNext)
}

// Previous plays previous track in view.
func (p *Player) Previous(ctx context.Context) error {
	return p.skip(ctx, -1, models.AudioActionPrevious)
}

func (p *Player) skip(ctx context.Context, offset int, action models.AudioAction) error {
	p.lock.RLock()
	s := p.session
	if s == nil {
		p.lock.RUnlock()
		return ErrNoSession
	}
	index, ok := p.relativeIndex(s, offset)
	p.lock.RUnlock()
	if !ok {
		return fmt.Errorf("skip: %w", models.ErrIndexOutOfRange)
	}
	_, err := p.play(ctx, index, action)
	return err
}

// Pause pauses audio. If audio is not playing, do nothing.
func (p *Player) Pause() {
	p.lock.Lock()
	changed := p.session != nil && p.session.pause()
	if changed {
		p.lastAction = models.AudioActionPlayPause
	}
	p.lock.Unlock()
	if changed {
		logrus.Info("Pause audio")
		p.flushStatus()
	}
}

// Resume continues paused audio. If audio is not paused, do nothing.
func (p *Player) Resume() {
	p.lock.Lock()
	changed := p.session != nil && p.session.resume()
	if changed {
		p.lastAction = models.AudioActionPlayPause
	}
	p.lock.Unlock()
	if changed {
		logrus.Info("Continue audio")
		p.flushStatus()
	}
}

// PlayPause toggles pause based on session state.
func (p *Player) PlayPause() {
	p.lock.RLock()
	state := models.AudioStateStopped
	if p.session != nil {
		state = p.session.getState()
	}
	p.lock.RUnlock()

	switch state {
	case models.AudioStatePlaying:
		p.Pause()
	case models.AudioStatePaused:
		p.Resume()
	}
}

// StopMedia stops playback and cancels loading tracks.
func (p *Player) StopMedia() {
	p.lock.Lock()
	p.generation++
	had := p.session != nil
	if had {
		p.session.teardown(models.AudioStateStopped)
		p.session = nil
	}
	p.lastAction = models.AudioActionStop
	p.lock.Unlock()
	if had {
		logrus.Info("Stop audio")
		p.flushStatus()
	}
}

// SeekFraction seeks to fraction of track. Fraction is clamped to [0,1]. If there is no audio, do nothing.
func (p *Player) SeekFraction(f float64) {
	f = clampFraction(f)
	p.lock.Lock()
	changed := p.session != nil && p.session.seek(f)
	if changed {
		p.lastAction = models.AudioActionSeek
	}
	p.lock.Unlock()
	if changed {
		logrus.Debugf("Seek to %.3f", f)
		p.flushStatus()
	}
}

// SetVolume sets volume to given level. Volume is applied to current session if any,
// and to all sessions started later.
func (p *Player) SetVolume(volume models.AudioVolume) {
	volume = volume.Clamp()
	p.lock.Lock()
	p.volume = volume
	if p.session != nil {
		p.session.setVolume(volume)
	}
	p.lastAction = models.AudioActionSetVolume
	p.lock.Unlock()
	logrus.Debugf("Set volume to %.1f %%", volume)
	p.flushStatus()
}

// Volume returns current volume.
func (p *Player) Volume() models.AudioVolume {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.volume
}

// Status returns current status. Index is resolved against live playlist and is -1 if track is not visible.
func (p *Player) Status() models.AudioStatus {
	p.lock.RLock()
	defer p.lock.RUnlock()
	status := models.AudioStatus{
		State:  models.AudioStateStopped,
		Action: p.lastAction,
		Index:  -1,
		Volume: p.volume,
		Error:  p.lastError,
	}
	if p.session == nil {
		return status
	}
	s := p.session
	status.State, status.Position, status.Duration, status.Progress = s.snapshot()
	status.Track = s.track
	status.Index = p.playlist.IndexOf(s.track.Path)
	return status
}

// AddStatusCallback adds a callback that gets called every time status is changed, or after progress
// has been sampled.
func (p *Player) AddStatusCallback(cb func(status models.AudioStatus)) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.statusCallbacks = append(p.statusCallbacks, cb)
}

func (p *Player) flushStatus() {
	p.flush(p.Status())
}

// progress sampled
func (p *Player) progressUpdated() {
	status := p.Status()
	status.Action = models.AudioActionTimeUpdate
	p.flush(status)
}

func (p *Player) flush(status models.AudioStatus) {
	p.lock.RLock()
	callbacks := make([]func(status models.AudioStatus), len(p.statusCallbacks))
	copy(callbacks, p.statusCallbacks)
	p.lock.RUnlock()
	for _, v := range callbacks {
		v(status)
	}
}
