package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadFile posts the file as multipart form data and returns the hosted
// URL. onProgress, when non-nil, receives the fraction of the request body
// already sent, in [0, 1]. No token is required by the upload endpoint.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader, onProgress func(float64)) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("gateway: create multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("gateway: read upload source: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("gateway: finish multipart: %w", err)
	}

	body := io.Reader(bytes.NewReader(buf.Bytes()))
	if onProgress != nil {
		body = &progressReader{r: body, total: int64(buf.Len()), report: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploadFile", body)
	if err != nil {
		return "", fmt.Errorf("gateway: create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = int64(buf.Len())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway: upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gateway: read upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RemoteError{Status: resp.StatusCode, Message: serverMessage(respBody)}
	}

	var result struct {
		FileURL string `json:"fileUrl"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &DecodeError{Endpoint: "/uploadFile", Err: err}
	}

	c.log.Debug().Str("file", filename).Str("url", result.FileURL).Msg("uploaded file")
	return result.FileURL, nil
}

// progressReader reports cumulative read progress as a fraction of total.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	report func(float64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.sent += int64(n)
		p.report(float64(p.sent) / float64(p.total))
	}
	return n, err
}
