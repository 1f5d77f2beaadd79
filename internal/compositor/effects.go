package compositor

import (
	"fmt"
	"image"
)

// EffectKind identifies one post-composition effect. The declared order
// of the constants is the order the stack applies them in.
type EffectKind int

const (
	EffectBlur EffectKind = iota
	EffectGlow
	EffectShadow
	EffectTransparency
	EffectReflection
	EffectLiquid
)

// effectOrder is the fixed application order of the stack.
var effectOrder = []EffectKind{
	EffectBlur,
	EffectGlow,
	EffectShadow,
	EffectTransparency,
	EffectReflection,
	EffectLiquid,
}

func (k EffectKind) String() string {
	switch k {
	case EffectBlur:
		return "blur"
	case EffectGlow:
		return "glow"
	case EffectShadow:
		return "shadow"
	case EffectTransparency:
		return "transparency"
	case EffectReflection:
		return "reflection"
	case EffectLiquid:
		return "liquid"
	default:
		return fmt.Sprintf("effect(%d)", int(k))
	}
}

// ParseEffectKind maps an effect name to its kind.
func ParseEffectKind(name string) (EffectKind, error) {
	for _, k := range effectOrder {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown effect %q", name)
}

// Effect transforms the composed frame in place. Implementations read
// the current target image and their parameter list and write back into
// the target.
type Effect interface {
	Name() string
	Apply(img *image.RGBA, params []float64) error
}

// unimplementedEffect is the explicit stand-in for a declared effect
// with no concrete implementation. Applying it fails with
// ErrEffectNotImplemented so the pipeline reports it instead of
// pretending it ran.
type unimplementedEffect struct {
	kind EffectKind
}

func (e unimplementedEffect) Name() string {
	return e.kind.String()
}

func (e unimplementedEffect) Apply(img *image.RGBA, params []float64) error {
	return fmt.Errorf("%s: %w", e.kind, ErrEffectNotImplemented)
}

// newEffect returns the concrete implementation for a kind, or the
// unimplemented stand-in.
func newEffect(kind EffectKind) Effect {
	switch kind {
	case EffectBlur:
		return blurEffect{}
	case EffectGlow:
		return glowEffect{}
	case EffectShadow:
		return shadowEffect{}
	case EffectTransparency:
		return transparencyEffect{}
	default:
		return unimplementedEffect{kind: kind}
	}
}

// defaultParams returns the documented defaults used when an effect is
// enabled with no parameters set.
func defaultParams(kind EffectKind) []float64 {
	switch kind {
	case EffectBlur:
		return []float64{4} // radius in pixels
	case EffectGlow:
		return []float64{200, 4, 0.5} // brightness threshold, radius, intensity
	case EffectShadow:
		return []float64{64, 0.35} // band width in pixels, strength
	case EffectTransparency:
		return []float64{0.85} // global opacity factor
	default:
		return nil
	}
}

// blurEffect applies a separable box blur, the cheap approximation of a
// Gaussian: one horizontal pass into a scratch buffer, one vertical
// pass back into the target.
type blurEffect struct{}

func (blurEffect) Name() string { return EffectBlur.String() }

func (blurEffect) Apply(img *image.RGBA, params []float64) error {
	radius := 4
	if len(params) > 0 && params[0] > 0 {
		radius = int(params[0])
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || radius == 0 {
		return nil
	}

	tmp := image.NewRGBA(b)
	boxBlurHorizontal(img, tmp, radius)
	boxBlurVertical(tmp, img, radius)
	return nil
}

func boxBlurHorizontal(src, dst *image.RGBA, radius int) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			var r, g, bl, a, n int
			for k := -radius; k <= radius; k++ {
				sx := x + k
				if sx < 0 || sx >= w {
					continue
				}
				r += int(row[sx*4+0])
				g += int(row[sx*4+1])
				bl += int(row[sx*4+2])
				a += int(row[sx*4+3])
				n++
			}
			out[x*4+0] = uint8(r / n)
			out[x*4+1] = uint8(g / n)
			out[x*4+2] = uint8(bl / n)
			out[x*4+3] = uint8(a / n)
		}
	}
}

func boxBlurVertical(src, dst *image.RGBA, radius int) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			var r, g, bl, a, n int
			for k := -radius; k <= radius; k++ {
				sy := y + k
				if sy < 0 || sy >= h {
					continue
				}
				i := sy*src.Stride + x*4
				r += int(src.Pix[i+0])
				g += int(src.Pix[i+1])
				bl += int(src.Pix[i+2])
				a += int(src.Pix[i+3])
				n++
			}
			i := y*dst.Stride + x*4
			dst.Pix[i+0] = uint8(r / n)
			dst.Pix[i+1] = uint8(g / n)
			dst.Pix[i+2] = uint8(bl / n)
			dst.Pix[i+3] = uint8(a / n)
		}
	}
}

// glowEffect extracts pixels above a brightness threshold, blurs them,
// and adds the result back onto the frame.
type glowEffect struct{}

func (glowEffect) Name() string { return EffectGlow.String() }

func (glowEffect) Apply(img *image.RGBA, params []float64) error {
	threshold, radius, intensity := 200.0, 4, 0.5
	if len(params) > 0 {
		threshold = params[0]
	}
	if len(params) > 1 && params[1] > 0 {
		radius = int(params[1])
	}
	if len(params) > 2 {
		intensity = params[2]
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	// Bright pass into a scratch image.
	bright := image.NewRGBA(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			lum := (int(img.Pix[i])*299 + int(img.Pix[i+1])*587 + int(img.Pix[i+2])*114) / 1000
			if float64(lum) >= threshold {
				j := y*bright.Stride + x*4
				copy(bright.Pix[j:j+4], img.Pix[i:i+4])
			}
		}
	}

	tmp := image.NewRGBA(b)
	boxBlurHorizontal(bright, tmp, radius)
	boxBlurVertical(tmp, bright, radius)

	// Additive blend back onto the frame.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			j := y*bright.Stride + x*4
			for c := 0; c < 3; c++ {
				v := int(img.Pix[i+c]) + int(float64(bright.Pix[j+c])*intensity)
				if v > 255 {
					v = 255
				}
				img.Pix[i+c] = uint8(v)
			}
		}
	}
	return nil
}

// shadowEffect darkens a band along the frame's edges, a full-frame
// approximation of per-window drop shadows.
type shadowEffect struct{}

func (shadowEffect) Name() string { return EffectShadow.String() }

func (shadowEffect) Apply(img *image.RGBA, params []float64) error {
	band, strength := 64, 0.35
	if len(params) > 0 && params[0] > 0 {
		band = int(params[0])
	}
	if len(params) > 1 {
		strength = params[1]
	}
	if strength < 0 {
		strength = 0
	} else if strength > 1 {
		strength = 1
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			edge := x
			if y < edge {
				edge = y
			}
			if w-1-x < edge {
				edge = w - 1 - x
			}
			if h-1-y < edge {
				edge = h - 1 - y
			}
			if edge >= band {
				continue
			}
			factor := 1 - strength*(1-float64(edge)/float64(band))
			i := y*img.Stride + x*4
			img.Pix[i+0] = uint8(float64(img.Pix[i+0]) * factor)
			img.Pix[i+1] = uint8(float64(img.Pix[i+1]) * factor)
			img.Pix[i+2] = uint8(float64(img.Pix[i+2]) * factor)
		}
	}
	return nil
}

// transparencyEffect scales the whole frame toward black by a global
// opacity factor.
type transparencyEffect struct{}

func (transparencyEffect) Name() string { return EffectTransparency.String() }

func (transparencyEffect) Apply(img *image.RGBA, params []float64) error {
	factor := 0.85
	if len(params) > 0 {
		factor = params[0]
	}
	if factor < 0 {
		factor = 0
	} else if factor > 1 {
		factor = 1
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = uint8(float64(img.Pix[i+0]) * factor)
		img.Pix[i+1] = uint8(float64(img.Pix[i+1]) * factor)
		img.Pix[i+2] = uint8(float64(img.Pix[i+2]) * factor)
	}
	return nil
}
