package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lixo88/Subtitleler/internal/config"
	"github.com/Lixo88/Subtitleler/internal/subtitle"
)

const uploadTimeout = 30 * time.Minute

// RemoteEngine posts audio to a whisper-compatible HTTP transcription
// service and decodes its segments/words JSON payload.
type RemoteEngine struct {
	url    string
	token  string
	lang   string
	client *http.Client
}

// NewRemoteEngine builds an engine for the service at cfg.APIURL.
func NewRemoteEngine(cfg config.Engine) (*RemoteEngine, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("remote engine requires api_url")
	}
	return &RemoteEngine{
		url:    cfg.APIURL,
		token:  cfg.APIToken,
		lang:   cfg.Language,
		client: &http.Client{Timeout: uploadTimeout},
	}, nil
}

// Name returns the engine name.
func (e *RemoteEngine) Name() string { return "remote" }

// Close is a no-op; the engine holds no persistent resources.
func (e *RemoteEngine) Close() error { return nil }

// progressReader wraps an io.Reader and reports upload progress.
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)
	if pr.callback != nil {
		pr.callback(pr.read, pr.total)
	}
	return n, err
}

// mimeFromExt returns the MIME type for common audio extensions.
func mimeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return "audio/mp3"
	case ".m4a":
		return "audio/m4a"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".aac":
		return "audio/aac"
	case ".opus":
		return "audio/opus"
	default:
		return "application/octet-stream"
	}
}

// Transcribe streams the file as a multipart upload and decodes the JSON
// transcript from the response.
func (e *RemoteEngine) Transcribe(ctx context.Context, filePath string, progress ProgressFunc) (*subtitle.Transcript, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	fileSize := stat.Size()

	// Build multipart form body using a pipe.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer mw.Close()

		if err := mw.WriteField("word_timestamps", "true"); err != nil {
			errCh <- err
			return
		}
		if e.lang != "" && strings.ToLower(e.lang) != "auto" {
			if err := mw.WriteField("language", e.lang); err != nil {
				errCh <- err
				return
			}
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(filePath)))
		h.Set("Content-Type", mimeFromExt(filepath.Ext(filePath)))
		part, err := mw.CreatePart(h)
		if err != nil {
			errCh <- err
			return
		}

		if _, err := io.Copy(part, f); err != nil {
			errCh <- err
			return
		}

		errCh <- nil
	}()

	// Estimate total size: file size + ~1KB form overhead.
	body := &progressReader{
		reader:   pr,
		total:    fileSize + 1024,
		callback: progress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		// Unblock the writer goroutine: the request body was never drained.
		pr.CloseWithError(err)
		<-errCh
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return nil, fmt.Errorf("multipart write error: %w", writeErr)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var transcript subtitle.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &transcript, nil
}
