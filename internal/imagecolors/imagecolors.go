// Package imagecolors fetches a remote image and reports its dominant palette colors.
package imagecolors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/jason-s-yu/squadup/internal/palette"
	"github.com/jason-s-yu/squadup/internal/upstream"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxColors is the number of colors returned for an image.
const MaxColors = 3

var (
	// ErrBadURL covers a missing, unparsable or non-http(s) image URL.
	ErrBadURL = errors.New("invalid image url")
	// ErrUpstream covers transport failures and non-2xx responses from the image host.
	ErrUpstream = errors.New("failed to fetch image")
	// ErrNotImage is returned when the upstream content type is not image/*.
	ErrNotImage = errors.New("url does not point to an image")
	// ErrDecode is returned when the body cannot be decoded or yields no colors.
	ErrDecode = errors.New("failed to process image")
)

// Getter is the slice of the upstream client the service needs.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*upstream.Response, error)
}

type Service struct {
	client  Getter
	options palette.Options
}

func NewService(client Getter, opts palette.Options) *Service {
	return &Service{client: client, options: opts}
}

// ValidateURL checks that raw is an absolute http or https URL.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: url parameter is required", ErrBadURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https urls are supported", ErrBadURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrBadURL)
	}
	return u, nil
}

// Extract returns up to MaxColors #rrggbb colors of the image at rawURL in
// Vibrant, Muted, DarkVibrant, DarkMuted, LightVibrant, LightMuted order.
func (s *Service) Extract(ctx context.Context, rawURL string) ([]string, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: upstream status %d", ErrUpstream, resp.StatusCode)
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(resp.ContentType)), "image/") {
		return nil, fmt.Errorf("%w: content type %q", ErrNotImage, resp.ContentType)
	}

	img, format, err := image.Decode(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	p, err := palette.Extract(img, s.options)
	if err != nil {
		return nil, fmt.Errorf("%w: %s image: %v", ErrDecode, format, err)
	}
	return p.Hex(MaxColors), nil
}
