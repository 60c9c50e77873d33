package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotConfigured signals that no background-removal endpoint was configured.
var ErrNotConfigured = errors.New("imaging: no removal endpoint configured")

// Variants holds both processed renditions of one product photo.
type Variants struct {
	TransparentPNG []byte
	WhiteJPEG      []byte
}

// Remover strips photo backgrounds through a rembg-compatible HTTP service.
// The HTTP session behind it is built once, on first use, and reused for every
// call until Close.
type Remover struct {
	endpoint string
	timeout  time.Duration
	logger   zerolog.Logger

	once   sync.Once
	client *http.Client
}

// NewRemover constructs the remover. The session is not touched until the
// first removal request.
func NewRemover(endpoint string, timeout time.Duration, logger zerolog.Logger) *Remover {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Remover{
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  timeout,
		logger:   logger.With().Str("component", "imaging").Logger(),
	}
}

// session 延迟初始化底层 HTTP 会话, 只执行一次。
func (r *Remover) session() *http.Client {
	r.once.Do(func() {
		r.logger.Debug().Str("endpoint", r.endpoint).Msg("initialising background removal session")
		r.client = &http.Client{
			Timeout: r.timeout,
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	})
	return r.client
}

// Close releases pooled connections. Safe to call even if no removal ever ran.
func (r *Remover) Close() {
	if r.client != nil {
		r.client.CloseIdleConnections()
	}
}

// Remove sends one image to the removal service and returns the transparent
// PNG cutout.
func (r *Remover) Remove(ctx context.Context, image []byte) ([]byte, error) {
	if r.endpoint == "" {
		return nil, ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "photo")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "image/png")

	resp, err := r.session().Do(req)
	if err != nil {
		return nil, fmt.Errorf("background removal request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("background removal failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return payload, nil
}

// ProcessPhoto produces both listing renditions of a product photo: the
// transparent cutout and a white-backed JPEG.
func (r *Remover) ProcessPhoto(ctx context.Context, original []byte) (*Variants, error) {
	transparent, err := r.Remove(ctx, original)
	if err != nil {
		return nil, err
	}

	cutout, err := png.Decode(bytes.NewReader(transparent))
	if err != nil {
		return nil, fmt.Errorf("decode cutout: %w", err)
	}

	white, err := EncodeJPEG(AddWhiteBackground(cutout))
	if err != nil {
		return nil, err
	}

	return &Variants{TransparentPNG: transparent, WhiteJPEG: white}, nil
}
