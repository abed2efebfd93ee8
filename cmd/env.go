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

package cmd

import (
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "list-env",
	Short: "List env variables",
	Long: `Any configuration variable can be set with environment variables. In addition,
it is also possible to define password for WebDAV server. This way it would be possible to use
Davplayer without persisting config file (with e.g. Docker). Davplayer will still create config file, nevertheless.

# Config overrides
DAVPLAYER_WEBDAV_URL
DAVPLAYER_WEBDAV_USERNAME
DAVPLAYER_WEBDAV_DIRECTORY
DAVPLAYER_WEBDAV_TIMEOUT_S
DAVPLAYER_WEBDAV_FETCH_LIMIT_MEM

DAVPLAYER_PLAYER_LOGFILE
DAVPLAYER_PLAYER_LOGLEVEL
DAVPLAYER_PLAYER_AUDIO_BUFFERING_MS
DAVPLAYER_PLAYER_VOLUME
DAVPLAYER_PLAYER_PROGRESS_INTERVAL_MS
DAVPLAYER_PLAYER_PAGE_SIZE
DAVPLAYER_PLAYER_SORT_KEY
DAVPLAYER_PLAYER_SORT_DIRECTION
DAVPLAYER_PLAYER_SKIP_ON_ERROR

DAVPLAYER_SERVER_LISTEN
DAVPLAYER_SERVER_ENABLE_METRICS

DAVPLAYER_CLIENT_ID

# Additional environment variables
DAVPLAYER_WEBDAV_PASSWORD

`,
}

func init() {
	rootCmd.AddCommand(envCmd)
}
