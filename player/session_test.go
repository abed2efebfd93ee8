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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"tryffel.net/go/davplayer/models"
)

func TestFraction(t *testing.T) {
	tests := []struct {
		position time.Duration
		duration time.Duration
		want     float64
	}{
		{0, time.Minute, 0},
		{time.Second * 30, time.Minute, 0.5},
		{time.Minute, time.Minute, 1},
		{time.Minute * 2, time.Minute, 1},
		{-time.Second, time.Minute, 0},
		{time.Second, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fraction(tt.position, tt.duration), "%s / %s", tt.position, tt.duration)
	}
	assert.Equal(t, 0.0, clampFraction(math.NaN()))
	assert.Equal(t, 1.0, clampFraction(math.Inf(1)))
}

func TestSession_Teardown(t *testing.T) {
	s := newSession(1, &models.Track{Path: "/a.mp3"}, 0)
	engine := &fakeEngine{duration: time.Minute}
	s.start(engine, time.Millisecond, nil)
	assert.Equal(t, models.AudioStatePlaying, s.getState())

	s.teardown(models.AudioStateEnded)
	s.teardown(models.AudioStateStopped)

	state, position, _, progress := s.snapshot()
	assert.Equal(t, models.AudioStateEnded, state)
	assert.Equal(t, time.Minute, position)
	assert.Equal(t, 1.0, progress)
	assert.True(t, engine.isClosed())
	assert.False(t, s.pause())
	assert.False(t, s.resume())
	assert.False(t, s.seek(0.5))
	assert.False(t, s.sample())
}

func TestSession_StartAfterTeardownClosesEngine(t *testing.T) {
	s := newSession(1, &models.Track{Path: "/a.mp3"}, 0)
	s.teardown(models.AudioStateStopped)

	engine := &fakeEngine{}
	s.start(engine, time.Millisecond, nil)
	assert.True(t, engine.isClosed())
	assert.Equal(t, models.AudioStateStopped, s.getState())
}
