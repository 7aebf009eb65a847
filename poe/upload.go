package poe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/poekit/poekit/protocol"
)

const defaultUploadMIMEType = "application/octet-stream"

var errInvalidDownloadURL = errors.New("download URL must be absolute")

// UploadLocalFile uploads a file from the local filesystem as a multipart
// form. An empty mimeType defaults to application/octet-stream.
func (c *Client) UploadLocalFile(ctx context.Context, path, mimeType string) (*protocol.FileUploadResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &UploadError{Target: path, Cause: err}
	}
	defer func() { _ = file.Close() }()

	if mimeType == "" {
		mimeType = defaultUploadMIMEType
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", mimeType)

	part, err := form.CreatePart(header)
	if err != nil {
		return nil, &UploadError{Target: path, Cause: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, &UploadError{Target: path, Cause: err}
	}
	if err := form.Close(); err != nil {
		return nil, &UploadError{Target: path, Cause: err}
	}

	return c.sendUpload(ctx, path, &body, form.FormDataContentType())
}

// UploadRemoteFile asks the service to fetch the file at downloadURL itself.
func (c *Client) UploadRemoteFile(ctx context.Context, downloadURL string) (*protocol.FileUploadResponse, error) {
	u, err := url.Parse(downloadURL)
	if err != nil {
		return nil, &UploadError{Target: downloadURL, Cause: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &UploadError{Target: downloadURL, Cause: errInvalidDownloadURL}
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("download_url", downloadURL); err != nil {
		return nil, &UploadError{Target: downloadURL, Cause: err}
	}
	if err := form.Close(); err != nil {
		return nil, &UploadError{Target: downloadURL, Cause: err}
	}

	return c.sendUpload(ctx, downloadURL, &body, form.FormDataContentType())
}

// Upload dispatches on the request: DownloadURL when set, local file
// otherwise.
func (c *Client) Upload(ctx context.Context, req protocol.FileUploadRequest) (*protocol.FileUploadResponse, error) {
	if req.DownloadURL != "" {
		return c.UploadRemoteFile(ctx, req.DownloadURL)
	}
	return c.UploadLocalFile(ctx, req.File, req.MimeType)
}

// UploadBatch uploads every file concurrently, one goroutine per file, and
// returns responses in input order. The first failure (in input order) is
// returned and the remaining results discarded; sibling uploads that already
// started are not cancelled.
func (c *Client) UploadBatch(ctx context.Context, files []protocol.FileUploadRequest) ([]protocol.FileUploadResponse, error) {
	if len(files) == 0 {
		return nil, nil
	}

	responses := make([]protocol.FileUploadResponse, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, req := range files {
		wg.Add(1)
		go func(i int, req protocol.FileUploadRequest) {
			defer wg.Done()
			resp, err := c.Upload(ctx, req)
			if err != nil {
				errs[i] = err
				return
			}
			responses[i] = *resp
		}(i, req)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return responses, nil
}

// UploadGlob uploads every file under dir matching a doublestar pattern
// (e.g. "**/*.png").
func (c *Client) UploadGlob(ctx context.Context, dir, pattern string) ([]protocol.FileUploadResponse, error) {
	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var files []protocol.FileUploadRequest
	for _, match := range matches {
		full := filepath.Join(dir, filepath.FromSlash(match))
		info, err := os.Stat(full)
		if err != nil {
			return nil, &UploadError{Target: full, Cause: err}
		}
		if info.IsDir() {
			continue
		}
		files = append(files, protocol.FileUploadRequest{File: full})
	}
	return c.UploadBatch(ctx, files)
}

func (c *Client) sendUpload(ctx context.Context, target string, body io.Reader, contentType string) (*protocol.FileUploadResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.fileUploadURL, body)
	if err != nil {
		return nil, &UploadError{Target: target, Cause: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+c.accessKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UploadError{Target: target, Cause: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &UploadError{Target: target, Cause: err}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &UploadError{
			Target: target,
			Cause:  &APIError{StatusCode: httpResp.StatusCode, Message: string(respBody)},
		}
	}

	var resp protocol.FileUploadResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &UploadError{Target: target, Cause: fmt.Errorf("parsing response: %w", err)}
	}

	c.logger.Debug("file uploaded", "target", target, "attachment_url", resp.AttachmentURL)
	return &resp, nil
}
