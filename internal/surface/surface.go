// Package surface implements the damage-tracked pixel buffer owned by
// each window. Content producers write pixels and mark damage; the
// compositor snapshots the buffer and clears the damage flag after it
// has consumed it.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
)

// ErrAllocationFailed is returned when a surface (re)allocation is
// rejected. The surface keeps its previous storage in that case.
var ErrAllocationFailed = errors.New("surface allocation failed")

// Format identifies the pixel layout of a surface's storage.
type Format int

const (
	FormatRGBA8888 Format = iota
	FormatBGRA8888
	FormatRGB888
)

// BytesPerPixel returns the storage size of one pixel.
func (f Format) BytesPerPixel() int32 {
	if f == FormatRGB888 {
		return 3
	}
	return 4
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8888:
		return "rgba8888"
	case FormatBGRA8888:
		return "bgra8888"
	case FormatRGB888:
		return "rgb888"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// maxDimension bounds a single surface axis. 16Kx16K RGBA is already a
// 1GiB buffer; anything beyond this is treated as an allocation failure
// rather than letting make() take the process down.
const maxDimension = 16384

// Surface is a rectangular pixel buffer with a damage flag. All methods
// are safe for concurrent use; the lock is held only for the duration of
// a single copy, so one slow producer cannot stall readers of other
// surfaces.
type Surface struct {
	mu      sync.Mutex
	width   int32
	height  int32
	stride  int32
	format  Format
	data    []byte
	damaged bool
}

// New allocates a zeroed surface. The storage invariant
// len(data) == stride*height holds for the life of the surface.
func New(width, height int32, format Format) (*Surface, error) {
	data, stride, err := alloc(width, height, format)
	if err != nil {
		return nil, err
	}
	return &Surface{
		width:  width,
		height: height,
		stride: stride,
		format: format,
		data:   data,
	}, nil
}

func alloc(width, height int32, format Format) ([]byte, int32, error) {
	if width <= 0 || height <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid dimensions %dx%d", ErrAllocationFailed, width, height)
	}
	if width > maxDimension || height > maxDimension {
		return nil, 0, fmt.Errorf("%w: %dx%d exceeds maximum %d", ErrAllocationFailed, width, height, maxDimension)
	}
	stride := width * format.BytesPerPixel()
	return make([]byte, int(stride)*int(height)), stride, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Height returns the surface height in pixels.
func (s *Surface) Height() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// Stride returns the byte length of one row.
func (s *Surface) Stride() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stride
}

// Format returns the pixel format.
func (s *Surface) Format() Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// Damaged reports whether the surface changed since the compositor last
// consumed it.
func (s *Surface) Damaged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.damaged
}

// MarkDamaged flags the surface as changed. Producers call this after
// writing pixels through means other than Write/Fill.
func (s *Surface) MarkDamaged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.damaged = true
}

// ClearDamage resets the damage flag. Only the compositor calls this,
// after a composite pass that consumed the surface.
func (s *Surface) ClearDamage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.damaged = false
}

// Write copies a pixel block into the surface at (x, y) and marks it
// damaged. pix must be w*h pixels in the surface's format, tightly
// packed. The block is clipped against the surface bounds.
func (s *Surface) Write(x, y, w, h int32, pix []byte) error {
	bpp := s.format.BytesPerPixel()
	if int64(len(pix)) < int64(w)*int64(h)*int64(bpp) {
		return fmt.Errorf("pixel data too short: have %d bytes, need %d", len(pix), int64(w)*int64(h)*int64(bpp))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	srcStride := w * bpp
	for row := int32(0); row < h; row++ {
		dy := y + row
		if dy < 0 || dy >= s.height {
			continue
		}
		sx, dx := int32(0), x
		cw := w
		if dx < 0 {
			sx = -dx
			cw += dx
			dx = 0
		}
		if dx+cw > s.width {
			cw = s.width - dx
		}
		if cw <= 0 {
			continue
		}
		src := pix[row*srcStride+sx*bpp : row*srcStride+(sx+cw)*bpp]
		dst := s.data[dy*s.stride+dx*bpp:]
		copy(dst, src)
	}
	s.damaged = true
	return nil
}

// Fill sets every pixel to c and marks the surface damaged.
func (s *Surface) Fill(c color.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bpp := s.format.BytesPerPixel()
	px := make([]byte, bpp)
	switch s.format {
	case FormatBGRA8888:
		px[0], px[1], px[2], px[3] = c.B, c.G, c.R, c.A
	case FormatRGB888:
		px[0], px[1], px[2] = c.R, c.G, c.B
	default:
		px[0], px[1], px[2], px[3] = c.R, c.G, c.B, c.A
	}
	for y := int32(0); y < s.height; y++ {
		row := s.data[y*s.stride : y*s.stride+s.width*bpp]
		for x := int32(0); x < s.width; x++ {
			copy(row[x*bpp:], px)
		}
	}
	s.damaged = true
}

// Resize reallocates the surface storage. The new buffer is zeroed; old
// content is discarded. On failure the surface is left untouched.
func (s *Surface) Resize(width, height int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, stride, err := alloc(width, height, s.format)
	if err != nil {
		return err
	}
	s.width = width
	s.height = height
	s.stride = stride
	s.data = data
	s.damaged = true
	return nil
}

// Snapshot copies the surface content out as an RGBA image. The lock is
// held only for the copy, which is what bounds how long composition can
// block a producer.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, int(s.width), int(s.height)))
	switch s.format {
	case FormatRGBA8888:
		for y := int32(0); y < s.height; y++ {
			copy(img.Pix[int(y)*img.Stride:], s.data[y*s.stride:y*s.stride+s.width*4])
		}
	case FormatBGRA8888:
		for y := int32(0); y < s.height; y++ {
			src := s.data[y*s.stride:]
			dst := img.Pix[int(y)*img.Stride:]
			for x := int32(0); x < s.width; x++ {
				dst[x*4+0] = src[x*4+2]
				dst[x*4+1] = src[x*4+1]
				dst[x*4+2] = src[x*4+0]
				dst[x*4+3] = src[x*4+3]
			}
		}
	case FormatRGB888:
		for y := int32(0); y < s.height; y++ {
			src := s.data[y*s.stride:]
			dst := img.Pix[int(y)*img.Stride:]
			for x := int32(0); x < s.width; x++ {
				dst[x*4+0] = src[x*3+0]
				dst[x*4+1] = src[x*3+1]
				dst[x*4+2] = src[x*3+2]
				dst[x*4+3] = 0xff
			}
		}
	}
	return img
}

// ByteLen returns the allocated storage size.
func (s *Surface) ByteLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
