// Package snapshot rasterizes a zone map dataset to a PNG image.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"

	"github.com/jengzang/zonemap-backend-go/internal/classify"
	"github.com/jengzang/zonemap-backend-go/internal/heatmap"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/jengzang/zonemap-backend-go/internal/spatial"
	"github.com/jengzang/zonemap-backend-go/internal/zonemap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Limits on the canvas size.
const (
	MaxWidth  = 4096
	MaxHeight = 4096
)

// ErrInvalidSize is returned for canvases outside 1..MaxWidth x 1..MaxHeight.
var ErrInvalidSize = errors.New("invalid snapshot size")

var (
	background   = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	labelColor   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	clusterColor = map[models.SizeTier]color.RGBA{
		models.TierSmall:  {0x25, 0x63, 0xeb, 0xff},
		models.TierMedium: {0xf5, 0x9e, 0x0b, 0xff},
		models.TierLarge:  {0xdc, 0x26, 0x26, 0xff},
	}
)

// Options controls the canvas. MaxZoom caps the fitted zoom.
type Options struct {
	Width   int
	Height  int
	MaxZoom int
}

// canvas maps lat/lng to image pixels for one fitted zoom.
type canvas struct {
	img        *image.RGBA
	zoom       int
	originX    float64
	originY    float64
	rasterizer *vector.Rasterizer
}

func (c *canvas) point(lat, lng float64) (float32, float32) {
	x, y := spatial.Project(lat, lng, c.zoom)
	return float32(x - c.originX), float32(y - c.originY)
}

// Render draws polygons filled with their band color, then the heat layer
// when present, then cluster markers with their member count.
func Render(ds zonemap.Dataset, opt Options) (*image.RGBA, error) {
	if opt.Width <= 0 || opt.Height <= 0 || opt.Width > MaxWidth || opt.Height > MaxHeight {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opt.Width, opt.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	if ds.Bounds == nil {
		return img, nil
	}

	b := *ds.Bounds
	zoom := spatial.FitZoom(b.South, b.West, b.North, b.East, opt.Width, opt.Height, opt.MaxZoom)
	center := spatial.BoundsCenter(b)
	cx, cy := spatial.Project(center.Lat, center.Lng, zoom)
	c := &canvas{
		img:        img,
		zoom:       zoom,
		originX:    cx - float64(opt.Width)/2,
		originY:    cy - float64(opt.Height)/2,
		rasterizer: vector.NewRasterizer(opt.Width, opt.Height),
	}

	for _, rz := range ds.Render {
		if len(rz.Vertices) < 3 {
			continue
		}
		fill, err := classify.ParseHex(rz.Style.Hex)
		if err != nil {
			fill = background
		}
		c.polygon(rz.Vertices, withAlpha(fill, 0x99))
	}

	if ds.Heat != nil {
		radius := float32(heatmap.Radius) / 2
		for _, p := range ds.Heat.Points {
			x, y := c.point(p.Lat, p.Lng)
			c.circle(x, y, radius, withAlpha(classify.ColorAt(p.Weight), 0x59))
		}
	}

	for _, cl := range ds.Clusters {
		x, y := c.point(cl.Centroid.Lat, cl.Centroid.Lng)
		c.circle(x, y, markerRadius(cl.Count), clusterColor[cl.Tier])
		if cl.Count > 1 {
			c.label(x, y, strconv.Itoa(cl.Count))
		}
	}
	return img, nil
}

// WritePNG renders ds and encodes it as PNG.
func WritePNG(w io.Writer, ds zonemap.Dataset, opt Options) error {
	img, err := Render(ds, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func (c *canvas) polygon(vertices []models.LatLng, col color.Color) {
	r := c.rasterizer
	r.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	x, y := c.point(vertices[0].Lat, vertices[0].Lng)
	r.MoveTo(x, y)
	for _, v := range vertices[1:] {
		x, y = c.point(v.Lat, v.Lng)
		r.LineTo(x, y)
	}
	r.ClosePath()
	r.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *canvas) circle(x, y, radius float32, col color.Color) {
	const segments = 32
	r := c.rasterizer
	r.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	r.MoveTo(x+radius, y)
	for i := 1; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		r.LineTo(x+radius*float32(math.Cos(a)), y+radius*float32(math.Sin(a)))
	}
	r.ClosePath()
	r.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *canvas) label(x, y float32, text string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot:  fixed.P(int(x)-width/2, int(y)+face.Ascent/2),
	}
	d.DrawString(text)
}

func markerRadius(count int) float32 {
	switch {
	case count > 10:
		return 20
	case count > 5:
		return 16
	case count > 1:
		return 13
	default:
		return 7
	}
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}
