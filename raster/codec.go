package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// Encoding names a file format supported by Save.
type Encoding string

const (
	EncodingPNG  Encoding = "png"
	EncodingTIFF Encoding = "tiff"
)

// EncodingFromPath picks an encoding from the file extension.
func EncodingFromPath(path string) (Encoding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return EncodingPNG, nil
	case ".tif", ".tiff":
		return EncodingTIFF, nil
	default:
		return "", fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
}

// Ext returns the file extension for the encoding, including the dot.
func (e Encoding) Ext() string {
	if e == EncodingTIFF {
		return ".tiff"
	}
	return ".png"
}

// FromImage converts any image into a float buffer. Gray sources become
// single-channel, everything else RGBA with unassociated alpha.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	switch src.(type) {
	case *image.Gray, *image.Gray16:
		m := New(b, ComponentsAlpha)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := m.Row(y, b.Min.X, b.Max.X)
			for x := b.Min.X; x < b.Max.X; x++ {
				g := color.Gray16Model.Convert(src.At(x, y)).(color.Gray16)
				row[x-b.Min.X] = float32(g.Y) / 0xffff
			}
		}
		return m
	}

	m := New(b, ComponentsRGBA)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Row(y, b.Min.X, b.Max.X)
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(src.At(x, y)).(color.NRGBA64)
			i := (x - b.Min.X) * 4
			row[i] = float32(c.R) / 0xffff
			row[i+1] = float32(c.G) / 0xffff
			row[i+2] = float32(c.B) / 0xffff
			row[i+3] = float32(c.A) / 0xffff
		}
	}
	return m
}

// ToNRGBA64 quantizes the buffer to 16 bits per channel.
func (m *Image) ToNRGBA64() *image.NRGBA64 {
	out := image.NewNRGBA64(m.Rect)
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			out.SetNRGBA64(x, y, m.At(x, y).(color.NRGBA64))
		}
	}
	return out
}

// ToGray16 quantizes the first channel to 16-bit gray.
func (m *Image) ToGray16() *image.Gray16 {
	out := image.NewGray16(m.Rect)
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			out.SetGray16(x, y, color.Gray16{Y: toUint16(m.Value(x, y))})
		}
	}
	return out
}

// Encode writes m in the given encoding. Single-channel buffers are written
// as gray, the others as 16-bit NRGBA.
func Encode(w io.Writer, m *Image, enc Encoding) error {
	var img image.Image
	if m.Components == ComponentsAlpha {
		img = m.ToGray16()
	} else {
		img = m.ToNRGBA64()
	}

	switch enc {
	case EncodingPNG:
		return png.Encode(w, img)
	case EncodingTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("unsupported encoding %q", enc)
	}
}

// Save encodes m to path, picking the encoding from the extension.
func Save(path string, m *Image) error {
	enc, err := EncodingFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Encode(f, m, enc); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// Load decodes a PNG or TIFF file into a float buffer.
func Load(path string) (*Image, error) {
	enc, err := EncodingFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var src image.Image
	switch enc {
	case EncodingTIFF:
		src, err = tiff.Decode(f)
	default:
		src, err = png.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return FromImage(src), nil
}
