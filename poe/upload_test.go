package poe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poekit/poekit/protocol"
)

func uploadServer(t *testing.T, capture func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			capture(r)
		}
		_, _ = io.WriteString(w, `{"attachment_url": "https://cdn.example.com/file", "mime_type": "text/plain", "size": 5}`)
	}))
}

func uploadClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := New("mybot", "secret", WithFileUploadURL(serverURL))
	require.NoError(t, err)
	return c
}

func TestClient_UploadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	var gotAuth, gotFilename, gotContentType string
	var gotContent []byte
	server := uploadServer(t, func(r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		gotFilename = header.Filename
		gotContentType = header.Header.Get("Content-Type")
		gotContent, err = io.ReadAll(file)
		require.NoError(t, err)
	})
	defer server.Close()

	resp, err := uploadClient(t, server.URL).UploadLocalFile(context.Background(), path, "text/plain")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/file", resp.AttachmentURL)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "note.txt", gotFilename)
	assert.Equal(t, "text/plain", gotContentType)
	assert.Equal(t, []byte("hello"), gotContent)
}

func TestClient_UploadLocalFile_DefaultMIMEType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	var gotContentType string
	server := uploadServer(t, func(r *http.Request) {
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		gotContentType = header.Header.Get("Content-Type")
	})
	defer server.Close()

	_, err := uploadClient(t, server.URL).UploadLocalFile(context.Background(), path, "")

	require.NoError(t, err)
	assert.Equal(t, defaultUploadMIMEType, gotContentType)
}

func TestClient_UploadLocalFile_Missing(t *testing.T) {
	server := uploadServer(t, nil)
	defer server.Close()

	_, err := uploadClient(t, server.URL).UploadLocalFile(context.Background(), "/does/not/exist", "")

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "/does/not/exist", uploadErr.Target)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClient_UploadRemoteFile(t *testing.T) {
	var gotDownloadURL string
	server := uploadServer(t, func(r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotDownloadURL = r.FormValue("download_url")
	})
	defer server.Close()

	resp, err := uploadClient(t, server.URL).UploadRemoteFile(context.Background(), "https://example.com/doc.pdf")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/file", resp.AttachmentURL)
	assert.Equal(t, "https://example.com/doc.pdf", gotDownloadURL)
}

func TestClient_UploadRemoteFile_InvalidURL(t *testing.T) {
	server := uploadServer(t, nil)
	defer server.Close()
	c := uploadClient(t, server.URL)

	for _, bad := range []string{"not-a-url", "/relative/path", ""} {
		_, err := c.UploadRemoteFile(context.Background(), bad)
		assert.ErrorIs(t, err, errInvalidDownloadURL, "url %q", bad)
	}
}

func TestClient_Upload_Dispatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	var sawDownloadURL bool
	server := uploadServer(t, func(r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		sawDownloadURL = r.FormValue("download_url") != ""
	})
	defer server.Close()
	c := uploadClient(t, server.URL)

	_, err := c.Upload(context.Background(), protocol.FileUploadRequest{File: path})
	require.NoError(t, err)
	assert.False(t, sawDownloadURL)

	_, err = c.Upload(context.Background(), protocol.FileUploadRequest{DownloadURL: "https://example.com/b"})
	require.NoError(t, err)
	assert.True(t, sawDownloadURL)
}

func TestClient_UploadBatch(t *testing.T) {
	dir := t.TempDir()
	var files []protocol.FileUploadRequest
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		files = append(files, protocol.FileUploadRequest{File: path})
	}

	server := uploadServer(t, nil)
	defer server.Close()

	responses, err := uploadClient(t, server.URL).UploadBatch(context.Background(), files)

	require.NoError(t, err)
	require.Len(t, responses, 3)
	for _, resp := range responses {
		assert.Equal(t, "https://cdn.example.com/file", resp.AttachmentURL)
	}
}

func TestClient_UploadBatch_FirstErrorWins(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte("ok"), 0o644))

	server := uploadServer(t, nil)
	defer server.Close()

	files := []protocol.FileUploadRequest{
		{File: filepath.Join(dir, "missing-one")},
		{File: good},
		{File: filepath.Join(dir, "missing-two")},
	}

	_, err := uploadClient(t, server.URL).UploadBatch(context.Background(), files)

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, filepath.Join(dir, "missing-one"), uploadErr.Target)
}

func TestClient_UploadBatch_Empty(t *testing.T) {
	server := uploadServer(t, nil)
	defer server.Close()

	responses, err := uploadClient(t, server.URL).UploadBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestClient_UploadGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.md"), []byte("c"), 0o644))

	var count atomic.Int32
	server := uploadServer(t, func(r *http.Request) { count.Add(1) })
	defer server.Close()

	responses, err := uploadClient(t, server.URL).UploadGlob(context.Background(), dir, "**/*.txt")

	require.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.Equal(t, int32(2), count.Load())
}

func TestClient_UploadGlob_BadPattern(t *testing.T) {
	server := uploadServer(t, nil)
	defer server.Close()

	_, err := uploadClient(t, server.URL).UploadGlob(context.Background(), t.TempDir(), "[")

	assert.Error(t, err)
}

func TestClient_Upload_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	_, err := uploadClient(t, server.URL).UploadLocalFile(context.Background(), path, "")

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
