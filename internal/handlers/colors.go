package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jason-s-yu/squadup/internal/imagecolors"
	"github.com/sirupsen/logrus"
)

// ColorExtractor reports the dominant colors of a remote image.
type ColorExtractor interface {
	Extract(ctx context.Context, rawURL string) ([]string, error)
}

type colorsResponse struct {
	Colors []string `json:"colors"`
	Error  string   `json:"error,omitempty"`
}

// ImageColorsHandler serves GET /api/image-colors?url=<image url>.
// Failures always carry an empty colors array next to the error.
func ImageColorsHandler(logger *logrus.Logger, ex ColorExtractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("url")
		if _, err := imagecolors.ValidateURL(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, colorsResponse{Colors: []string{}, Error: err.Error()})
			return
		}

		colors, err := ex.Extract(r.Context(), raw)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, imagecolors.ErrBadURL) {
				status = http.StatusBadRequest
			}
			logger.WithError(err).WithField("url", raw).Warn("image color extraction failed")
			writeJSON(w, status, colorsResponse{Colors: []string{}, Error: err.Error()})
			return
		}
		if colors == nil {
			colors = []string{}
		}
		writeJSON(w, http.StatusOK, colorsResponse{Colors: colors})
	}
}
