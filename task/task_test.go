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

package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask(t *testing.T) {
	task := &Task{Name: "test"}
	assert.Error(t, task.Start(), "no loop")

	ticks := make(chan struct{})
	task.SetLoop(func() {
		stop := task.StopChan()
		close(ticks)
		<-stop
	})

	require.NoError(t, task.Start())
	<-ticks
	assert.True(t, task.IsRunning())
	assert.Error(t, task.Start(), "already running")

	require.NoError(t, task.Stop())
	assert.False(t, task.IsRunning())
	assert.Error(t, task.Stop(), "not running")
}

func TestTask_Restart(t *testing.T) {
	task := &Task{Name: "test"}
	runs := 0
	task.SetLoop(func() {
		runs++
		<-task.StopChan()
	})
	for i := 0; i < 2; i++ {
		require.NoError(t, task.Start())
		require.NoError(t, task.Stop())
	}
	assert.Equal(t, 2, runs)
}
