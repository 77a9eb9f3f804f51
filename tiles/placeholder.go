package tiles

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PlaceholderProvider draws a labelled tile locally. It is shown while the
// real tile loads, when it fails, and for styles without a raster source.
type PlaceholderProvider struct {
	Background color.RGBA
	Label      string
}

func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{Background: color.RGBA{200, 220, 255, 255}}
}

func (p *PlaceholderProvider) GetTile(_ context.Context, tile Tile) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{p.Background}, image.Point{}, draw.Src)

	drawText(img, tile.Key(), 120)
	if p.Label != "" {
		drawText(img, p.Label, 160)
	}

	borderColor := color.RGBA{100, 100, 100, 255}
	borders := []image.Rectangle{
		image.Rect(0, 0, TileSize, 1),
		image.Rect(0, TileSize-1, TileSize, TileSize),
		image.Rect(0, 0, 1, TileSize),
		image.Rect(TileSize-1, 0, TileSize, TileSize),
	}
	for _, rect := range borders {
		draw.Draw(img, rect, &image.Uniform{borderColor}, image.Point{}, draw.Src)
	}
	return img, nil
}

func drawText(img *image.RGBA, text string, centerY int) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	textWidth := d.MeasureString(text).Round()
	textHeight := face.Metrics().Height.Round()

	padding := 6
	bg := image.Rect(
		(TileSize-textWidth)/2-padding,
		centerY-textHeight/2-padding,
		(TileSize+textWidth)/2+padding,
		centerY+textHeight/2+padding,
	)
	draw.Draw(img, bg, &image.Uniform{color.RGBA{255, 255, 255, 220}}, image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I((TileSize - textWidth) / 2),
		Y: fixed.I(centerY + textHeight/2 - 2),
	}
	d.DrawString(text)
}
