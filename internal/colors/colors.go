// Package colors derives theme colours from backdrop images using k-means
// clustering.
package colors

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/darkawower/reagentry/internal/theme"
)

// ErrNoPixels is returned for images without opaque pixels.
var ErrNoPixels = errors.New("no opaque pixels in image")

// Color represents an RGB color.
type Color struct {
	R, G, B uint8
}

// Hex returns the hex representation of the color.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Luminance returns the WCAG relative luminance in [0, 1].
func (c Color) Luminance() float64 {
	return 0.2126*linear(c.R) + 0.7152*linear(c.G) + 0.0722*linear(c.B)
}

// IsDark reports whether white text reads better on c than black text.
func (c Color) IsDark() bool {
	return Contrast(c, white) > Contrast(c, black)
}

// Contrast returns the WCAG contrast ratio between a and b, from 1 to 21.
func Contrast(a, b Color) float64 {
	la, lb := a.Luminance(), b.Luminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

func linear(v uint8) float64 {
	c := float64(v) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

var (
	white = Color{R: 0xff, G: 0xff, B: 0xff}
	black = Color{}

	fallbackLight = white
	fallbackDark  = Color{R: 0x0d, G: 0x11, B: 0x17}
)

// Fallback returns the built-in theme colour for t.
func Fallback(t theme.Theme) Color {
	return theme.Select(t, fallbackLight, fallbackDark)
}

// Swatch is a palette entry with the share of pixels it covers.
type Swatch struct {
	Color Color
	Share float64
}

// Analyzer extracts palettes from images.
type Analyzer struct {
	maxSide    int
	iterations int
	seed       int64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSampleSize bounds the longest side of the sampled image.
func WithSampleSize(px int) Option {
	return func(a *Analyzer) {
		if px > 0 {
			a.maxSide = px
		}
	}
}

// WithIterations caps k-means iterations.
func WithIterations(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.iterations = n
		}
	}
}

// WithSeed sets the centroid seed. The same seed gives the same palette.
func WithSeed(seed int64) Option {
	return func(a *Analyzer) {
		a.seed = seed
	}
}

// NewAnalyzer creates an analyzer with a fixed seed.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		maxSide:    200,
		iterations: 20,
		seed:       1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// File decodes the image at path and returns its palette.
func (a *Analyzer) File(path string, topN int) ([]Swatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return a.Reader(f, topN)
}

// Reader decodes an image (jpeg, png or webp) from r and returns its palette.
func (a *Analyzer) Reader(r io.Reader, topN int) ([]Swatch, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return a.Palette(img, topN)
}

// Palette returns up to topN swatches of img, most common first.
func (a *Analyzer) Palette(img image.Image, topN int) ([]Swatch, error) {
	if topN < 1 {
		topN = 1
	}

	pixels := samplePixels(img, a.maxSide)
	if len(pixels) == 0 {
		return nil, ErrNoPixels
	}

	clusters := a.cluster(pixels, topN)

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Share > clusters[j].Share
	})
	return clusters, nil
}

// Analyze returns the topN dominant colours of the image at path.
func Analyze(path string, topN int) ([]Color, error) {
	swatches, err := NewAnalyzer().File(path, topN)
	if err != nil {
		return nil, err
	}
	out := make([]Color, len(swatches))
	for i, s := range swatches {
		out[i] = s.Color
	}
	return out, nil
}

// Dominant returns the most common colour of the image at path.
func Dominant(path string) (Color, error) {
	colors, err := Analyze(path, 5)
	if err != nil {
		return Color{}, err
	}
	return colors[0], nil
}

// ThemeColor picks the browser theme-color for t from the backdrop at
// path: the most common palette colour whose darkness matches t. An empty
// path, an unreadable image or a palette without a matching colour yields
// Fallback(t); the error is returned alongside for logging.
func ThemeColor(path string, t theme.Theme) (Color, error) {
	if path == "" {
		return Fallback(t), nil
	}

	swatches, err := NewAnalyzer().File(path, 5)
	if err != nil {
		return Fallback(t), err
	}

	wantDark := t == theme.Dark
	for _, s := range swatches {
		if s.Color.IsDark() == wantDark {
			return s.Color, nil
		}
	}
	return Fallback(t), nil
}

// samplePixels scales img down so its longest side is at most maxSide
// (nearest neighbour) and returns the opaque pixels.
func samplePixels(img image.Image, maxSide int) []Color {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	step := 1.0
	if longest := max(w, h); longest > maxSide {
		step = float64(longest) / float64(maxSide)
	}
	sw, sh := int(float64(w)/step), int(float64(h)/step)

	pixels := make([]Color, 0, sw*sh)
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			r, g, bl, a := img.At(b.Min.X+int(float64(x)*step), b.Min.Y+int(float64(y)*step)).RGBA()
			if a < 0x8000 {
				continue
			}
			pixels = append(pixels, Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)})
		}
	}
	return pixels
}

// cluster runs k-means over pixels. Centroids start from seeded distinct
// pixels; empty clusters are dropped from the result.
func (a *Analyzer) cluster(pixels []Color, k int) []Swatch {
	centroids := a.seedCentroids(pixels, k)
	k = len(centroids)
	assign := make([]int, len(pixels))

	for iter := 0; iter < a.iterations; iter++ {
		for i, p := range pixels {
			assign[i] = nearest(p, centroids)
		}

		sums := make([][4]int, k)
		for i, p := range pixels {
			s := &sums[assign[i]]
			s[0] += int(p.R)
			s[1] += int(p.G)
			s[2] += int(p.B)
			s[3]++
		}

		moved := false
		for c := range centroids {
			n := sums[c][3]
			if n == 0 {
				continue
			}
			next := Color{R: uint8(sums[c][0] / n), G: uint8(sums[c][1] / n), B: uint8(sums[c][2] / n)}
			if next != centroids[c] {
				centroids[c] = next
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	for i, p := range pixels {
		assign[i] = nearest(p, centroids)
	}
	counts := make([]int, k)
	for _, c := range assign {
		counts[c]++
	}

	out := make([]Swatch, 0, k)
	for c, n := range counts {
		if n == 0 {
			continue
		}
		out = append(out, Swatch{Color: centroids[c], Share: float64(n) / float64(len(pixels))})
	}
	return out
}

func (a *Analyzer) seedCentroids(pixels []Color, k int) []Color {
	rng := rand.New(rand.NewSource(a.seed))
	seen := make(map[Color]bool, k)
	centroids := make([]Color, 0, k)
	for _, i := range rng.Perm(len(pixels)) {
		if len(centroids) == k {
			break
		}
		if p := pixels[i]; !seen[p] {
			seen[p] = true
			centroids = append(centroids, p)
		}
	}
	return centroids
}

func nearest(p Color, centroids []Color) int {
	best, bestDist := 0, math.MaxFloat64
	for i, c := range centroids {
		if d := distance(p, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// distance is the squared Euclidean distance in RGB space.
func distance(a, b Color) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return dr*dr + dg*dg + db*db
}
