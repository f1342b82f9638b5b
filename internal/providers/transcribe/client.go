package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"wingman/internal/domain"
)

const (
	// uploadFieldName and uploadFileName are fixed by the service contract.
	uploadFieldName = "audio_file"
	uploadFileName  = "record.wav"
)

// Client sends finalized audio clips to the transcription service.
//
// Transcribe never raises a renderable failure: the returned text is always
// usable, carrying the fixed fallback string when the service could not
// produce a transcript. The error return is the structured channel that tells
// a real failure apart from genuine fallback-looking text.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
}

// Transcribe posts the clip as multipart form content and returns the
// recognized text. One attempt per invocation; no retry.
func (c *Client) Transcribe(ctx context.Context, clip domain.AudioClip) (string, error) {
	body, contentType, err := encodeClip(clip)
	if err != nil {
		return domain.FallbackTranscript, fmt.Errorf("encode audio clip: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", body)
	if err != nil {
		return domain.FallbackTranscript, fmt.Errorf("build transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.FallbackTranscript, fmt.Errorf("transcribe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.FallbackTranscript, fmt.Errorf("transcription service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.FallbackTranscript, fmt.Errorf("parse transcribe response: %w", err)
	}
	if strings.TrimSpace(parsed.Transcript) == "" {
		return domain.FallbackTranscript, fmt.Errorf("transcription service returned no transcript")
	}

	return parsed.Transcript, nil
}

func encodeClip(clip domain.AudioClip) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFieldName, uploadFileName))
	if clip.MIMEType != "" {
		header.Set("Content-Type", clip.MIMEType)
	}

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(clip.Data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, mw.FormDataContentType(), nil
}
