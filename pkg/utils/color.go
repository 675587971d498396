package utils

import (
	"image/color"
	"math"
)

// HSLToRGBA 将 HSL 颜色转换为 RGBA
//
// 参数：
//   - h: 色相（度），任意值，按 360 取模
//   - s: 饱和度 [0, 1]
//   - l: 亮度 [0, 1]
//   - a: 透明度 [0, 1]
//
// 返回的颜色是预乘 alpha 的，可直接交给 ebiten 绘制。
func HSLToRGBA(h, s, l, a float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	s = Clamp(s, 0, 1)
	l = Clamp(l, 0, 1)
	a = Clamp(a, 0, 1)

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8(math.Round((r + m) * a * 255)),
		G: uint8(math.Round((g + m) * a * 255)),
		B: uint8(math.Round((b + m) * a * 255)),
		A: uint8(math.Round(a * 255)),
	}
}

// ScaleAlpha 按系数缩放预乘 alpha 颜色的透明度
func ScaleAlpha(c color.RGBA, k float64) color.RGBA {
	k = Clamp(k, 0, 1)
	return color.RGBA{
		R: uint8(math.Round(float64(c.R) * k)),
		G: uint8(math.Round(float64(c.G) * k)),
		B: uint8(math.Round(float64(c.B) * k)),
		A: uint8(math.Round(float64(c.A) * k)),
	}
}
