// Package palette picks representative colors from an image: k-means
// clustering via prominentcolor, then Vibrant-style swatch classification.
package palette

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/EdlinOrg/prominentcolor"
)

// ErrNoColors is returned when an image has no usable (opaque, non-background) pixels.
var ErrNoColors = errors.New("no usable pixels in image")

// Swatch is one clustered color with the number of sampled pixels it represents.
type Swatch struct {
	R, G, B    uint8
	Population int
}

func (s Swatch) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", s.R, s.G, s.B)
}

// Options tune Extract. Zero values pick the defaults.
type Options struct {
	MaxColors      int  // cluster count, default 16
	MaxDimension   int  // resize to this width when larger, default 128, negative disables
	KeepBackground bool // skip prominentcolor's white/black/green background masks
}

func (o Options) withDefaults() Options {
	if o.MaxColors <= 0 {
		o.MaxColors = 16
	}
	if o.MaxDimension == 0 {
		o.MaxDimension = 128
	}
	return o
}

// Swatches clusters img into at most opts.MaxColors colors, most populous first.
func Swatches(img image.Image, opts Options) ([]Swatch, error) {
	opts = opts.withDefaults()

	var size uint
	if opts.MaxDimension > 0 && img.Bounds().Dx() > opts.MaxDimension {
		size = uint(opts.MaxDimension)
	}
	var masks []prominentcolor.ColorBackgroundMask
	if !opts.KeepBackground {
		masks = prominentcolor.GetDefaultMasks()
	}

	items, err := prominentcolor.KmeansWithAll(opts.MaxColors, img, prominentcolor.ArgumentNoCropping|prominentcolor.ArgumentAverageMean, size, masks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoColors, err)
	}

	out := make([]Swatch, 0, len(items))
	for _, it := range items {
		if it.Cnt <= 0 {
			continue
		}
		out = append(out, Swatch{
			R:          uint8(it.Color.R),
			G:          uint8(it.Color.G),
			B:          uint8(it.Color.B),
			Population: it.Cnt,
		})
	}
	if len(out) == 0 {
		return nil, ErrNoColors
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Population > out[j].Population })
	return out, nil
}

// Extract builds the Vibrant palette of img.
func Extract(img image.Image, opts Options) (Palette, error) {
	swatches, err := Swatches(img, opts)
	if err != nil {
		return Palette{}, err
	}
	p := classify(swatches)
	fillEmpty(&p)
	return p, nil
}
