package publisher

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
)

// Media is a resolved media reference: exactly one of URL or LocalPath is
// set.
type Media struct {
	URL       string
	LocalPath string
}

func (m *Media) IsLocal() bool { return m != nil && m.LocalPath != "" }

// ResolveMedia classifies a raw media reference. A path that exists on disk
// wins over URL parsing, so relative upload paths keep working.
func ResolveMedia(ref string) (*Media, error) {
	if ref == "" {
		return nil, nil
	}

	if _, err := os.Stat(ref); err == nil {
		return &Media{LocalPath: ref}, nil
	}

	u, err := url.Parse(ref)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return &Media{URL: ref}, nil
	}

	return nil, fmt.Errorf("media reference %q is neither an existing file nor a http(s) url", ref)
}

// readLocal loads a local media file and sniffs its MIME type from the
// content, not the extension.
func readLocal(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return data, "application/octet-stream", nil
	}
	return data, kind.MIME.Value, nil
}

// multipartUpload builds a multipart body with one file part plus plain
// fields, returning the body and its content type.
func multipartUpload(fileField, fileName, mimeType string, file []byte, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file); err != nil {
		return nil, "", err
	}

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

// download fetches a remote media URL into a temp file and returns its path.
// The caller removes the file when done.
func download(client *http.Client, mediaURL string) (string, error) {
	resp, err := client.Get(mediaURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: status %d", mediaURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "redes-media-*"+filepath.Ext(mediaURL))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func removeTemp(path string) {
	_ = os.Remove(path)
}
