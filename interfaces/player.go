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

package interfaces

import (
	"context"
	"time"

	"tryffel.net/go/davplayer/models"
)

// Player controls media playback. Current status is sent to status callbacks, if set. Multiple status callbacks
// can be set.
type Player interface {
	// Play starts playing track in given index of current catalog view.
	Play(ctx context.Context, index int) error
	// Pause pauses media that's currently playing. If none, do nothing.
	Pause()
	// Resume continues currently paused media.
	Resume()
	// PlayPause toggles pause
	PlayPause()
	// StopMedia stops playing media.
	StopMedia()
	// Next plays next track in view, wrapping to first one.
	Next(ctx context.Context) error
	// Previous plays previous track in view, wrapping to last one.
	Previous(ctx context.Context) error
	// SeekFraction seeks to given fraction of track duration, fraction is clamped to [0,1].
	SeekFraction(fraction float64)
	// SetVolume sets volume to given level in range of [0,100]
	SetVolume(volume models.AudioVolume)
	// Status returns current status.
	Status() models.AudioStatus
	// AddStatusCallback adds callback that get's called every time status has changed,
	// including playback progress
	AddStatusCallback(func(status models.AudioStatus))
}

// AudioEngine is a single decoded track that can be played. Engine is owned by exactly one
// playback session.
type AudioEngine interface {
	// Play starts or continues playback.
	Play()
	// Pause pauses playback.
	Pause()
	// Stop stops playback permanently. Ended callback is not called after Stop.
	Stop()
	// Seek sets position.
	Seek(position time.Duration) error
	// Duration returns total length of track.
	Duration() time.Duration
	// Position returns current position.
	Position() time.Duration
	// SetVolume sets volume in [0,100].
	SetVolume(volume models.AudioVolume)
	// OnEnded registers function that is called once when track reaches its end.
	OnEnded(func())
	// Close releases decoder resources. Calling Close multiple times is allowed.
	Close() error
}

// EngineFactory constructs engines from raw file content.
type EngineFactory interface {
	NewEngine(data []byte, format AudioFormat) (AudioEngine, error)
}
