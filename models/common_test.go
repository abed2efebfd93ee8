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

package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		key       string
		direction string
		want      Sort
		wantErr   bool
	}{
		{key: "displayName", direction: "ascending", want: Sort{SortByName, SortAsc}},
		{key: "name", direction: "desc", want: Sort{SortByName, SortDesc}},
		{key: "basename", direction: "", want: Sort{SortByName, SortAsc}},
		{key: "LASTMODIFIED", direction: "Descending", want: Sort{SortByLastModified, SortDesc}},
		{key: "date", direction: "asc", want: Sort{SortByLastModified, SortAsc}},
		{key: "size", direction: "asc", wantErr: true},
		{key: "name", direction: "sideways", wantErr: true},
		{key: "", direction: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseSort(tt.key, tt.direction)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidSort, "%s %s", tt.key, tt.direction)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.NoError(t, got.Valid())
	}
	assert.NoError(t, DefaultSort.Valid())
}

func TestPaging(t *testing.T) {
	p := Paging{Page: 2, PageSize: 17}
	assert.Equal(t, 34, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(17))
	assert.Equal(t, 2, p.TotalPages(18))
	assert.Equal(t, 0, Paging{PageSize: 0}.TotalPages(10))
	assert.Equal(t, 1, Paging{PageSize: math.MaxInt64}.TotalPages(10))
}

func TestAudioVolume(t *testing.T) {
	assert.Equal(t, AudioVolume(100), AudioVolume(120).Clamp())
	assert.Equal(t, AudioVolume(0), AudioVolume(-1).Clamp())
	assert.Equal(t, AudioVolume(0), AudioVolume(math.NaN()).Clamp())
	assert.Equal(t, AudioVolume(55), AudioVolume(50).Add(5))
	assert.Equal(t, AudioVolume(0), AudioVolume(3).Add(-5))
	assert.True(t, AudioVolume(100).InRange())
	assert.False(t, AudioVolume(100.1).InRange())
}

func TestAudioStatus_JSON(t *testing.T) {
	status := AudioStatus{
		State:    AudioStatePaused,
		Action:   AudioActionPlayPause,
		Index:    3,
		Duration: time.Second,
		Volume:   50,
	}
	data, err := json.Marshal(status)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "paused", decoded["state"])
	assert.Equal(t, "play-pause", decoded["action"])
	assert.Equal(t, float64(3), decoded["index"])
	assert.NotContains(t, decoded, "track")
	assert.NotContains(t, decoded, "error")
}

func TestTrack_LastModifiedString(t *testing.T) {
	local := time.Date(2021, 3, 4, 5, 6, 7, 0, time.Local)
	track := &Track{Name: "a.mp3", LastModified: local}
	assert.Equal(t, "2021-03-04 05:06:07", track.LastModifiedString())
	assert.Equal(t, "", (&Track{}).LastModifiedString())
	assert.Equal(t, "a.mp3", track.String())
}

func TestAudioStatus_Unmarshal(t *testing.T) {
	status := AudioStatus{State: AudioStateLoading, Action: AudioActionNext, Index: 2}
	data, err := json.Marshal(status)
	require.NoError(t, err)

	decoded := AudioStatus{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, status, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"state":"flying"}`), &decoded))
}
