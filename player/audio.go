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
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"
	"tryffel.net/go/davplayer/config"
	"tryffel.net/go/davplayer/interfaces"
	"tryffel.net/go/davplayer/models"
)

// Speaker creates audio engines that play through local speaker. Speaker implements interfaces.EngineFactory.
// Speaker is initialized once on first engine.
type Speaker struct {
	lock       sync.Mutex
	sampleRate beep.SampleRate
	initDone   bool
}

// NewSpeaker creates a new speaker. There should be only one speaker per process.
func NewSpeaker() *Speaker {
	return &Speaker{
		sampleRate: beep.SampleRate(config.AudioSamplingRate),
	}
}

func (s *Speaker) init() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.initDone {
		return nil
	}
	err := speaker.Init(s.sampleRate, s.sampleRate.N(config.AudioBufferPeriod))
	if err != nil {
		return fmt.Errorf("init speaker: %v", err)
	}
	s.initDone = true
	return nil
}

// NewEngine decodes data and returns engine that is ready to play.
func (s *Speaker) NewEngine(data []byte, format interfaces.AudioFormat) (interfaces.AudioEngine, error) {
	err := s.init()
	if err != nil {
		return nil, err
	}

	streamer, songFormat, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Track samplerate: %d Hz", songFormat.SampleRate.N(time.Second))

	e := &beepEngine{
		streamer: streamer,
		format:   songFormat,
		ctrl: &beep.Ctrl{
			Paused: true,
		},
		volume: &effects.Volume{
			Base:   config.AudioVolumeLogBase,
			Volume: config.AudioMaxVolumedB,
			Silent: false,
		},
	}

	var stream beep.Streamer = streamer
	if songFormat.SampleRate != s.sampleRate {
		logrus.Debugf("Resampling stream from %d Hz to %d Hz", songFormat.SampleRate.N(time.Second),
			s.sampleRate.N(time.Second))
		stream = beep.Resample(4, songFormat.SampleRate, s.sampleRate, streamer)
	}
	e.ctrl.Streamer = beep.Seq(stream, beep.Callback(e.streamCompleted))
	e.volume.Streamer = e.ctrl
	return e, nil
}

// memoryFile is in-memory file content. Mp3 decoder needs io.Seeker to seek.
type memoryFile struct {
	*bytes.Reader
}

func (m *memoryFile) Close() error {
	return nil
}

// decode file content.
func decode(data []byte, format interfaces.AudioFormat) (beep.StreamSeekCloser, beep.Format, error) {
	if len(data) == 0 {
		return nil, beep.Format{}, errors.New("empty file")
	}
	file := &memoryFile{Reader: bytes.NewReader(data)}

	var songFormat beep.Format
	var streamer beep.StreamSeekCloser
	var err error
	switch format {
	case interfaces.AudioFormatMp3:
		streamer, songFormat, err = mp3.Decode(file)
	case interfaces.AudioFormatFlac:
		streamer, songFormat, err = flac.Decode(file)
	case interfaces.AudioFormatWav:
		streamer, songFormat, err = wav.Decode(file)
	case interfaces.AudioFormatOgg:
		streamer, songFormat, err = vorbis.Decode(file)
	default:
		return nil, beep.Format{}, fmt.Errorf("unknown audio format: '%s'", format)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode %s: %v", format, err)
	}
	if streamer == nil {
		return nil, beep.Format{}, errors.New("empty streamer after decode")
	}
	return streamer, songFormat, nil
}

// beepEngine plays a single decoded track. Fields are guarded with speaker lock, since speaker reads
// them while streaming.
type beepEngine struct {
	streamer beep.StreamSeekCloser
	format   beep.Format

	// ctrl allows pause
	ctrl *beep.Ctrl
	// volume
	volume *effects.Volume

	started bool
	stopped bool
	ended   bool
	closed  bool
	onEnded func()
}

func (e *beepEngine) Play() {
	speaker.Lock()
	if e.stopped {
		speaker.Unlock()
		return
	}
	start := !e.started
	e.started = true
	e.ctrl.Paused = false
	speaker.Unlock()

	if start {
		speaker.Play(e.volume)
	}
}

func (e *beepEngine) Pause() {
	speaker.Lock()
	defer speaker.Unlock()
	e.ctrl.Paused = true
}

// Stop detaches engine from speaker. Speaker drops streamer once it returns no samples.
func (e *beepEngine) Stop() {
	speaker.Lock()
	defer speaker.Unlock()
	e.stopped = true
	e.ctrl.Paused = false
	e.ctrl.Streamer = nil
}

func (e *beepEngine) Seek(position time.Duration) error {
	speaker.Lock()
	defer speaker.Unlock()
	if e.closed {
		return errors.New("engine closed")
	}
	n := e.format.SampleRate.N(position)
	if n < 0 {
		n = 0
	}
	if length := e.streamer.Len(); n >= length && length > 0 {
		n = length - 1
	}
	return e.streamer.Seek(n)
}

func (e *beepEngine) Duration() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	return e.format.SampleRate.D(e.streamer.Len())
}

// Position returns how long current track has played
func (e *beepEngine) Position() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	if e.closed {
		return 0
	}
	position := e.streamer.Position()
	if position < 0 {
		return 0
	}
	return e.format.SampleRate.D(position)
}

// SetVolume sets volume to given level.
func (e *beepEngine) SetVolume(volume models.AudioVolume) {
	decibels := float64(volumeTodB(float64(volume)))
	logrus.Debugf("Set volume to %.1f %s -> %.2f Db", volume, "%", decibels)
	speaker.Lock()
	defer speaker.Unlock()

	// settings volume to 0 does not mute audio, set silent to true
	if decibels <= config.AudioMinVolumedB {
		e.volume.Silent = true
		e.volume.Volume = config.AudioMinVolumedB
	} else if decibels >= config.AudioMaxVolumedB {
		e.volume.Volume = config.AudioMaxVolumedB
		e.volume.Silent = false
	} else {
		e.volume.Silent = false
		e.volume.Volume = decibels
	}
}

func (e *beepEngine) OnEnded(cb func()) {
	speaker.Lock()
	defer speaker.Unlock()
	e.onEnded = cb
}

// streamCompleted is called by speaker while holding speaker lock.
func (e *beepEngine) streamCompleted() {
	if e.stopped || e.ended {
		return
	}
	e.ended = true
	logrus.Debug("audio stream complete")
	if e.onEnded != nil {
		go e.onEnded()
	}
}

func (e *beepEngine) Close() error {
	speaker.Lock()
	if e.closed {
		speaker.Unlock()
		return nil
	}
	e.closed = true
	e.stopped = true
	e.ctrl.Streamer = nil
	speaker.Unlock()

	err := e.streamer.Close()
	if err != nil && err != io.EOF {
		return fmt.Errorf("close streamer: %v", err)
	}
	logrus.Debug("closed streamer")
	return nil
}

// linear scaling with a & b coefficients
var volumeTodBA = float32(config.AudioMaxVolumedB-config.AudioMinVolumedB) /
	(config.AudioMaxVolume - config.AudioMinVolume)
var volumeTodBB = float32(config.AudioMinVolumedB - config.AudioMinVolume)

// Transform volume to db
func volumeTodB(volume float64) float32 {
	return volumeTodBA*float32(volume) + volumeTodBB
}
