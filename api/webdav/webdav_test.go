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

package webdav

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tryffel.net/go/davplayer/api"
	"tryffel.net/go/davplayer/config"
)

const multistatus = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/music/</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>music</d:displayname>
        <d:resourcetype><d:collection/></d:resourcetype>
        <d:getlastmodified>Mon, 02 Jan 2006 15:04:05 GMT</d:getlastmodified>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/music/b.mp3</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>b.mp3</d:displayname>
        <d:resourcetype/>
        <d:getcontentlength>4</d:getcontentlength>
        <d:getcontenttype>audio/mpeg</d:getcontenttype>
        <d:getetag>"etag-b"</d:getetag>
        <d:getlastmodified>Tue, 03 Jan 2006 15:04:05 GMT</d:getlastmodified>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/music/a.flac</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>a.flac</d:displayname>
        <d:resourcetype/>
        <d:getcontentlength>8</d:getcontentlength>
        <d:getcontenttype>audio/flac</d:getcontenttype>
        <d:getetag>"etag-a"</d:getetag>
        <d:getlastmodified>Wed, 04 Jan 2006 15:04:05 GMT</d:getlastmodified>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/music/notes.txt</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>notes.txt</d:displayname>
        <d:resourcetype/>
        <d:getcontentlength>10</d:getcontentlength>
        <d:getcontenttype>text/plain</d:getcontenttype>
        <d:getlastmodified>Wed, 04 Jan 2006 15:04:05 GMT</d:getlastmodified>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/music/albums/</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>albums</d:displayname>
        <d:resourcetype><d:collection/></d:resourcetype>
        <d:getlastmodified>Wed, 04 Jan 2006 15:04:05 GMT</d:getlastmodified>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case r.Method == "PROPFIND" && r.URL.Path == "/music/":
			w.Header().Set("Content-Type", "application/xml; charset=utf-8")
			w.WriteHeader(http.StatusMultiStatus)
			_, _ = w.Write([]byte(multistatus))
		case r.Method == http.MethodGet && r.URL.Path == "/music/b.mp3":
			_, _ = w.Write([]byte("ID3b"))
		case r.Method == http.MethodGet && r.URL.Path == "/music/a.flac":
			_, _ = w.Write([]byte("fLaC0000"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, url string, limitMem int) *WebDav {
	t.Helper()
	conf := &config.WebDav{
		Url:           url + "/music/",
		Directory:     "/",
		TimeoutS:      5,
		FetchLimitMem: limitMem,
	}
	client, err := NewWebDav(conf, "test-client")
	require.NoError(t, err)
	return client
}

func TestWebDav_ListDirectory(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL, 1)

	tracks, err := client.ListDirectory(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "b.mp3", tracks[0].Name)
	assert.Equal(t, "/b.mp3", tracks[0].Path)
	assert.Equal(t, "etag-b", tracks[0].ETag)
	assert.Equal(t, int64(4), tracks[0].Size)
	assert.Equal(t, "audio/mpeg", tracks[0].Mime)
	assert.True(t, tracks[0].LastModified.Equal(time.Date(2006, 1, 3, 15, 4, 5, 0, time.UTC)))

	assert.Equal(t, "a.flac", tracks[1].Name)
	assert.True(t, tracks[1].LastModified.After(tracks[0].LastModified))
}

func TestWebDav_FetchFile(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL, 1)

	data, err := client.FetchFile(context.Background(), "/b.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3b"), data)
}

func TestWebDav_FetchFileNotFound(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL, 1)

	_, err := client.FetchFile(context.Background(), "/missing.mp3")
	require.Error(t, err)
	assert.True(t, api.IsRemoteError(err))
}

func TestWebDav_ListDirectoryServerDown(t *testing.T) {
	server := newTestServer(t)
	url := server.URL
	server.Close()
	client := newTestClient(t, url, 1)

	_, err := client.ListDirectory(context.Background())
	require.Error(t, err)
	var remoteErr *api.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "list", remoteErr.Op)
}

func TestWebDav_ConnectionOk(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL, 1)
	assert.NoError(t, client.ConnectionOk(context.Background()))
}

func TestWebDav_CancelledContext(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchFile(ctx, "/b.mp3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	_, err = readLimited(strings.NewReader("123456"), 5)
	assert.True(t, errors.Is(err, ErrFileTooLarge))

	data, err = readLimited(strings.NewReader("123456"), 0)
	require.NoError(t, err)
	assert.Len(t, data, 6)
}

func TestWebDav_GetId(t *testing.T) {
	a, err := NewWebDav(&config.WebDav{Url: "http://localhost/music/", Directory: "/"}, "")
	require.NoError(t, err)
	b, err := NewWebDav(&config.WebDav{Url: "http://localhost/music/", Directory: "/rock"}, "")
	require.NoError(t, err)
	assert.NotEqual(t, a.GetId(), b.GetId())
	assert.Equal(t, a.GetId(), a.GetId())

	_, err = NewWebDav(&config.WebDav{}, "")
	assert.Error(t, err)
}
