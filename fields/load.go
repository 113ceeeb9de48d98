package fields

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/lic/raster"
)

// LoadImages reads the X and Y component images. Stored values in [0,1]
// are mapped to [-1,1] so mid-gray is the zero vector. Values within
// zeroBand of mid-gray snap to exactly 0, so integer images can mark pixels
// where the field is undefined.
func LoadImages(pathX, pathY string) (vx, vy *raster.Image, err error) {
	vx, err = raster.Load(pathX)
	if err != nil {
		return nil, nil, fmt.Errorf("loading vector x: %w", err)
	}
	vy, err = raster.Load(pathY)
	if err != nil {
		return nil, nil, fmt.Errorf("loading vector y: %w", err)
	}
	if vx.Rect != vy.Rect {
		return nil, nil, fmt.Errorf("vector images differ in bounds: %v vs %v", vx.Rect, vy.Rect)
	}
	toSigned(vx)
	toSigned(vy)
	return vx, vy, nil
}

// zeroBand covers both 8-bit neighbours of mid-gray (127 and 128 map to
// -1/255 and +1/255) and every 16-bit level between them.
const zeroBand = 1.5 / 255

// toSigned maps the first channel of every pixel from [0,1] to [-1,1].
func toSigned(m *raster.Image) {
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			i := m.PixOffset(x, y)
			v := m.Pix[i]*2 - 1
			if math.Abs(float64(v)) < zeroBand {
				v = 0
			}
			m.Pix[i] = v
		}
	}
}

// VectorRecord is one CSV row: a pixel and its vector.
type VectorRecord struct {
	X  int     `csv:"x"`
	Y  int     `csv:"y"`
	UX float32 `csv:"ux"`
	UY float32 `csv:"uy"`
}

// LoadCSV reads sparse x,y,ux,uy rows into buffers covering bounds. Pixels
// without a row hold the zero vector; rows outside bounds are ignored.
func LoadCSV(path string, bounds image.Rectangle) (vx, vy *raster.Image, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []VectorRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return FromRecords(records, bounds)
}

// FromRecords rasterizes sparse records into buffers covering bounds.
func FromRecords(records []VectorRecord, bounds image.Rectangle) (vx, vy *raster.Image, err error) {
	if bounds.Empty() {
		return nil, nil, errors.New("empty field bounds")
	}
	vx = raster.New(bounds, raster.ComponentsAlpha)
	vy = raster.New(bounds, raster.ComponentsAlpha)

	used := 0
	for _, rec := range records {
		if !(image.Point{rec.X, rec.Y}.In(bounds)) {
			continue
		}
		vx.Pix[vx.PixOffset(rec.X, rec.Y)] = rec.UX
		vy.Pix[vy.PixOffset(rec.X, rec.Y)] = rec.UY
		used++
	}
	if used == 0 {
		return nil, nil, fmt.Errorf("no vector records inside %v", bounds)
	}
	return vx, vy, nil
}

// SaveCSV writes every pixel with a nonzero vector as a record.
func SaveCSV(path string, vx, vy *raster.Image) error {
	r := vx.Rect.Intersect(vy.Rect)
	var records []VectorRecord
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			ux, uy := vx.Value(x, y), vy.Value(x, y)
			if ux == 0 && uy == 0 {
				continue
			}
			records = append(records, VectorRecord{X: x, Y: y, UX: ux, UY: uy})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := gocsv.MarshalFile(&records, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
