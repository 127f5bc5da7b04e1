package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	targetDarkLuma          = 0.26
	maxDarkLuma             = 0.45
	minLightLuma            = 0.55
	targetLightLuma         = 0.74
	minNormalLuma           = 0.3
	targetNormalLuma        = 0.5
	maxNormalLuma           = 0.7
	targetMutesSaturation   = 0.3
	maxMutesSaturation      = 0.4
	targetVibrantSaturation = 1.0
	minVibrantSaturation    = 0.35

	weightSaturation = 3.0
	weightLuma       = 6.5
	weightPopulation = 0.5
)

// Palette holds one swatch per category; categories the image cannot fill are nil.
type Palette struct {
	Vibrant      *Swatch
	Muted        *Swatch
	DarkVibrant  *Swatch
	DarkMuted    *Swatch
	LightVibrant *Swatch
	LightMuted   *Swatch
}

// Ordered returns the non-nil swatches in preference order:
// Vibrant, Muted, DarkVibrant, DarkMuted, LightVibrant, LightMuted.
func (p Palette) Ordered() []Swatch {
	out := make([]Swatch, 0, 6)
	for _, s := range []*Swatch{p.Vibrant, p.Muted, p.DarkVibrant, p.DarkMuted, p.LightVibrant, p.LightMuted} {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// Hex returns up to n colors of Ordered as #rrggbb. n <= 0 returns all of them.
func (p Palette) Hex(n int) []string {
	ordered := p.Ordered()
	if n > 0 && len(ordered) > n {
		ordered = ordered[:n]
	}
	out := make([]string, len(ordered))
	for i, s := range ordered {
		out[i] = s.Hex()
	}
	return out
}

// HSL returns hue in degrees, saturation and lightness in [0, 1].
func (s Swatch) HSL() (h, sat, l float64) {
	return colorful.Color{R: float64(s.R) / 255, G: float64(s.G) / 255, B: float64(s.B) / 255}.Hsl()
}

type target struct {
	slot                      func(*Palette) **Swatch
	minLuma, tgtLuma, maxLuma float64
	minSat, tgtSat, maxSat    float64
}

var targets = []target{
	{func(p *Palette) **Swatch { return &p.Vibrant }, minNormalLuma, targetNormalLuma, maxNormalLuma, minVibrantSaturation, targetVibrantSaturation, 1},
	{func(p *Palette) **Swatch { return &p.LightVibrant }, minLightLuma, targetLightLuma, 1, minVibrantSaturation, targetVibrantSaturation, 1},
	{func(p *Palette) **Swatch { return &p.DarkVibrant }, 0, targetDarkLuma, maxDarkLuma, minVibrantSaturation, targetVibrantSaturation, 1},
	{func(p *Palette) **Swatch { return &p.Muted }, minNormalLuma, targetNormalLuma, maxNormalLuma, 0, targetMutesSaturation, maxMutesSaturation},
	{func(p *Palette) **Swatch { return &p.LightMuted }, minLightLuma, targetLightLuma, 1, 0, targetMutesSaturation, maxMutesSaturation},
	{func(p *Palette) **Swatch { return &p.DarkMuted }, 0, targetDarkLuma, maxDarkLuma, 0, targetMutesSaturation, maxMutesSaturation},
}

func classify(swatches []Swatch) Palette {
	maxPop := 0
	for _, s := range swatches {
		if s.Population > maxPop {
			maxPop = s.Population
		}
	}

	var p Palette
	used := make(map[int]bool)
	for _, t := range targets {
		best, bestScore := -1, 0.0
		for i, s := range swatches {
			if used[i] {
				continue
			}
			_, sat, l := s.HSL()
			if sat < t.minSat || sat > t.maxSat || l < t.minLuma || l > t.maxLuma {
				continue
			}
			score := weightedMean(
				invertDiff(sat, t.tgtSat), weightSaturation,
				invertDiff(l, t.tgtLuma), weightLuma,
				float64(s.Population)/float64(maxPop), weightPopulation,
			)
			if best < 0 || score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 {
			used[best] = true
			sw := swatches[best]
			*t.slot(&p) = &sw
		}
	}
	return p
}

// fillEmpty derives missing categories from found ones by moving lightness or saturation to the category target.
func fillEmpty(p *Palette) {
	if p.Vibrant == nil && p.DarkVibrant == nil && p.LightVibrant == nil {
		if p.DarkMuted != nil {
			p.DarkVibrant = derive(p.DarkMuted, -1, targetDarkLuma)
		}
		if p.LightMuted != nil {
			p.LightVibrant = derive(p.LightMuted, -1, targetLightLuma)
		}
	}
	switch {
	case p.Vibrant == nil && p.DarkVibrant != nil:
		p.Vibrant = derive(p.DarkVibrant, -1, targetNormalLuma)
	case p.Vibrant == nil && p.LightVibrant != nil:
		p.Vibrant = derive(p.LightVibrant, -1, targetNormalLuma)
	}
	if p.DarkVibrant == nil && p.Vibrant != nil {
		p.DarkVibrant = derive(p.Vibrant, -1, targetDarkLuma)
	}
	if p.LightVibrant == nil && p.Vibrant != nil {
		p.LightVibrant = derive(p.Vibrant, -1, targetLightLuma)
	}
	if p.Muted == nil && p.Vibrant != nil {
		p.Muted = derive(p.Vibrant, targetMutesSaturation, -1)
	}
	if p.DarkMuted == nil && p.DarkVibrant != nil {
		p.DarkMuted = derive(p.DarkVibrant, targetMutesSaturation, -1)
	}
	if p.LightMuted == nil && p.LightVibrant != nil {
		p.LightMuted = derive(p.LightVibrant, targetMutesSaturation, -1)
	}
}

// derive copies from's hue and replaces saturation and/or lightness when the argument is non-negative.
// Derived swatches have zero population.
func derive(from *Swatch, sat, light float64) *Swatch {
	h, s, l := from.HSL()
	if sat >= 0 {
		s = sat
	}
	if light >= 0 {
		l = light
	}
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return &Swatch{R: r, G: g, B: b}
}

func invertDiff(value, target float64) float64 {
	return 1 - math.Abs(value-target)
}

func weightedMean(values ...float64) float64 {
	var sum, weights float64
	for i := 0; i+1 < len(values); i += 2 {
		sum += values[i] * values[i+1]
		weights += values[i+1]
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}
