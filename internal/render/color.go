package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	rgbaPattern = regexp.MustCompile(`^rgba?\(\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)\s*(?:,\s*([\d.]+)\s*)?\)$`)
	hslPattern  = regexp.MustCompile(`^hsla?\(\s*([\d.]+)\s*,?\s*([\d.]+)%\s*,?\s*([\d.]+)%\s*(?:[,/]\s*([\d.]+)\s*)?\)$`)
)

// ParseColor understands the CSS color forms used for datasets: #rgb,
// #rrggbb, rgb(), rgba() and hsl() in comma or space syntax.
func ParseColor(css string) (drawing.Color, error) {
	css = strings.TrimSpace(strings.ToLower(css))
	switch {
	case strings.HasPrefix(css, "#"):
		return parseHex(css[1:])
	case strings.HasPrefix(css, "rgb"):
		m := rgbaPattern.FindStringSubmatch(css)
		if m == nil {
			return drawing.Color{}, fmt.Errorf("invalid rgb color %q", css)
		}
		return drawing.Color{
			R: channel(m[1]),
			G: channel(m[2]),
			B: channel(m[3]),
			A: alpha(m[4]),
		}, nil
	case strings.HasPrefix(css, "hsl"):
		m := hslPattern.FindStringSubmatch(css)
		if m == nil {
			return drawing.Color{}, fmt.Errorf("invalid hsl color %q", css)
		}
		h, _ := strconv.ParseFloat(m[1], 64)
		s, _ := strconv.ParseFloat(m[2], 64)
		l, _ := strconv.ParseFloat(m[3], 64)
		r, g, b := hslToRGB(h, s/100, l/100)
		return drawing.Color{R: r, G: g, B: b, A: alpha(m[4])}, nil
	default:
		return drawing.Color{}, fmt.Errorf("unsupported color %q", css)
	}
}

func parseHex(hex string) (drawing.Color, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return drawing.Color{}, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return drawing.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func channel(s string) uint8 {
	v, _ := strconv.ParseFloat(s, 64)
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func alpha(s string) uint8 {
	if s == "" {
		return 255
	}
	v, _ := strconv.ParseFloat(s, 64)
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360) / 360
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return v, v, v
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	conv := func(t float64) uint8 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 0.5:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(math.Round(v * 255))
	}
	return conv(h + 1.0/3), conv(h), conv(h - 1.0/3)
}
