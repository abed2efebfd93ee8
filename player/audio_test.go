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
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tryffel.net/go/davplayer/interfaces"
)

// pcmWav returns 16-bit stereo wav file with given number of silent frames.
func pcmWav(t *testing.T, sampleRate uint32, frames int) []byte {
	t.Helper()
	const channels = 2
	const bits = 16
	dataSize := uint32(frames * channels * bits / 8)
	header := struct {
		Riff          [4]byte
		FileSize      uint32
		Wave          [4]byte
		Fmt           [4]byte
		FmtSize       uint32
		FormatType    uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BytesPerFrame uint16
		BitsPerSample uint16
		Data          [4]byte
		DataSize      uint32
	}{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      36 + dataSize,
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		FormatType:    1,
		Channels:      channels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * channels * bits / 8,
		BytesPerFrame: channels * bits / 8,
		BitsPerSample: bits,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, header))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := pcmWav(t, 44100, 4410)
	streamer, format, err := decode(data, interfaces.AudioFormatWav)
	require.NoError(t, err)
	defer streamer.Close()

	assert.Equal(t, 2, format.NumChannels)
	assert.Equal(t, 44100, format.SampleRate.N(time.Second))
	assert.Equal(t, 4410, streamer.Len())
	assert.Equal(t, time.Millisecond*100, format.SampleRate.D(streamer.Len()))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		format interfaces.AudioFormat
	}{
		{name: "empty", data: []byte{}, format: interfaces.AudioFormatWav},
		{name: "unknown format", data: []byte("abc"), format: interfaces.AudioFormat("aac")},
		{name: "no format", data: []byte("abc"), format: interfaces.AudioFormatNil},
		{name: "garbage wav", data: []byte("definitely not a wav file at all"), format: interfaces.AudioFormatWav},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streamer, _, err := decode(tt.data, tt.format)
			assert.Error(t, err)
			assert.Nil(t, streamer)
		})
	}
}

func TestVolumeTodB(t *testing.T) {
	assert.InDelta(t, 0, volumeTodB(100), 0.0001)
	assert.InDelta(t, -8, volumeTodB(0), 0.0001)
	assert.InDelta(t, -4, volumeTodB(50), 0.0001)
	assert.True(t, volumeTodB(20) < volumeTodB(21))
}
