package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gatepass-server-go/internal/platform/config"
	"gatepass-server-go/internal/platform/errors"
	"gatepass-server-go/internal/platform/logging"
)

// Uploader pushes photos to the external image-hosting capability and
// returns the stable URL the host assigns. A nil Uploader (no endpoint
// configured) means photos are persisted inline.
type Uploader struct {
	endpoint string
	apiKey   string
	folder   string
	client   *http.Client
	logger   *logging.Logger
}

// NewUploader returns nil when no endpoint is configured.
func NewUploader(cfg config.UploadConfig, logger *logging.Logger) *Uploader {
	if cfg.Endpoint == "" {
		return nil
	}
	return &Uploader{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		folder:   cfg.Folder,
		client:   &http.Client{Timeout: cfg.Timeout.Std()},
		logger:   logger,
	}
}

type uploadRequest struct {
	Folder string `json:"folder"`
	Format string `json:"format"`
	Data   []byte `json:"data"` // base64 via encoding/json
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload sends the photo and returns its hosted URL. Failures of any kind
// surface as upstream errors; the caller performs no retries.
func (u *Uploader) Upload(ctx context.Context, photo *Photo) (string, error) {
	body, err := json.Marshal(uploadRequest{
		Folder: u.folder,
		Format: photo.Format,
		Data:   photo.Data,
	})
	if err != nil {
		return "", errors.Wrap(errors.KindUpstream, "image.upload", "failed to encode upload request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errors.KindUpstream, "image.upload", "failed to build upload request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.KindUpstream, "image.upload", "image host unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.New(errors.KindUpstream, "image.upload",
			fmt.Sprintf("image host rejected upload: status %d", resp.StatusCode))
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(errors.KindUpstream, "image.upload", "failed to decode upload response", err)
	}
	if decoded.URL == "" {
		return "", errors.New(errors.KindUpstream, "image.upload", "image host returned no url")
	}

	u.logger.InfoTag("UPLOAD", "photo uploaded (%d bytes)", len(photo.Data))
	return decoded.URL, nil
}
