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

package api

import (
	"errors"
	"fmt"
)

// RemoteError is returned when listing or fetching from remote store fails.
type RemoteError struct {
	// Op is the failed operation, e.g. 'list' or 'fetch'.
	Op   string
	Path string
	Err  error
}

func (r *RemoteError) Error() string {
	return fmt.Sprintf("remote %s '%s': %v", r.Op, r.Path, r.Err)
}

func (r *RemoteError) Unwrap() error {
	return r.Err
}

// NewRemoteError wraps err. Nil err returns nil, and already wrapped errors are returned as is.
func NewRemoteError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return err
	}
	return &RemoteError{Op: op, Path: path, Err: err}
}

// IsRemoteError returns true if err is or wraps RemoteError.
func IsRemoteError(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr)
}
