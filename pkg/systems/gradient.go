package systems

import (
	"image"
	"image/color"
	"math"

	"github.com/decker502/backdrop/pkg/config"
	"github.com/decker502/backdrop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

// gradientDownscale 静态渐变按 1/4 分辨率生成后拉伸，渐变本身足够平滑
const gradientDownscale = 4

// pulsePeriod 桌面端静态渐变的呼吸周期（秒，单程）
const pulsePeriod = 8.0

// BackgroundColor 所有场景共用的底色
var BackgroundColor = color.RGBA{R: 10, G: 10, B: 20, A: 255}

// gradientLayer 一层渐变：径向、锥形或线性
type gradientLayer struct {
	kind   string // radial | conic | linear
	cx, cy float64
	radius float64 // 相对对角线长度，渐变在此处完全透明
	from   color.NRGBA
	to     color.NRGBA // conic/linear 的终点颜色
	angle  float64     // linear 方向（弧度）
}

// gradientLayers 每种着色器对应的静态渐变，从底层到顶层
var gradientLayers = map[string][]gradientLayer{
	config.ShaderAurora: {
		{kind: "radial", cx: 0.4, cy: 0.4, radius: 0.5, from: color.NRGBA{236, 72, 153, 51}},
		{kind: "radial", cx: 0.8, cy: 0.2, radius: 0.5, from: color.NRGBA{147, 51, 234, 77}},
		{kind: "radial", cx: 0.2, cy: 0.8, radius: 0.5, from: color.NRGBA{120, 219, 255, 102}},
	},
	config.ShaderGalaxy: {
		{kind: "conic", cx: 0.5, cy: 0.5, from: color.NRGBA{120, 219, 255, 51}, to: color.NRGBA{236, 72, 153, 51}},
		{kind: "radial", cx: 0.5, cy: 0.5, radius: 0.7, from: color.NRGBA{147, 51, 234, 77}},
	},
	config.ShaderNebula: {
		{kind: "linear", angle: math.Pi / 4, from: color.NRGBA{147, 51, 234, 26}, to: color.NRGBA{120, 219, 255, 26}},
		{kind: "radial", cx: 0.7, cy: 0.3, radius: 0.6, from: color.NRGBA{59, 130, 246, 77}},
		{kind: "radial", cx: 0.3, cy: 0.7, radius: 0.6, from: color.NRGBA{236, 72, 153, 102}},
	},
}

// sample 返回该层在归一化坐标 (u, v) 处的颜色
func (l gradientLayer) sample(u, v, aspect float64) color.NRGBA {
	switch l.kind {
	case "radial":
		dx := (u - l.cx) * aspect
		dy := v - l.cy
		d := math.Hypot(dx, dy) / math.Hypot(aspect, 1)
		t := utils.Clamp(d/l.radius, 0, 1)
		c := l.from
		c.A = uint8(math.Round(float64(c.A) * (1 - t)))
		return c
	case "conic":
		a := math.Atan2(v-l.cy, u-l.cx)/(2*math.Pi) + 0.5
		// 起点和终点颜色相同，中间过渡到 to
		t := 1 - math.Abs(2*a-1)
		return lerpNRGBA(l.from, l.to, t)
	case "linear":
		t := utils.Clamp((u*math.Cos(l.angle)+v*math.Sin(l.angle))/(math.Cos(l.angle)+math.Sin(l.angle)), 0, 1)
		return lerpNRGBA(l.from, l.to, t)
	}
	return color.NRGBA{}
}

func lerpNRGBA(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(math.Round(utils.Lerp(float64(a.R), float64(b.R), t))),
		G: uint8(math.Round(utils.Lerp(float64(a.G), float64(b.G), t))),
		B: uint8(math.Round(utils.Lerp(float64(a.B), float64(b.B), t))),
		A: uint8(math.Round(utils.Lerp(float64(a.A), float64(b.A), t))),
	}
}

// RenderGradient 在 CPU 上生成指定着色器的静态渐变
//
// 低画质或移动设备上代替实时着色器。各层按 source-over 叠加在 BackgroundColor 上，
// 结果不透明。
func RenderGradient(shader string, w, h int) *image.RGBA {
	w, h = max(1, w), max(1, h)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	layers := gradientLayers[config.NormalizeShader(shader)]
	aspect := float64(w) / float64(h)

	for y := 0; y < h; y++ {
		v := (float64(y) + 0.5) / float64(h)
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5) / float64(w)
			r, g, b := float64(BackgroundColor.R), float64(BackgroundColor.G), float64(BackgroundColor.B)
			for _, l := range layers {
				c := l.sample(u, v, aspect)
				a := float64(c.A) / 255
				r = r*(1-a) + float64(c.R)*a
				g = g*(1-a) + float64(c.G)*a
				b = b*(1-a) + float64(c.B)*a
			}
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(math.Round(r)),
				G: uint8(math.Round(g)),
				B: uint8(math.Round(b)),
				A: 255,
			})
		}
	}
	return img
}

// PulseAlpha 静态渐变的呼吸透明度，在 [0.6, 1] 之间往返
func PulseAlpha(t float64) float64 {
	phase := math.Mod(t, 2*pulsePeriod) / pulsePeriod
	if phase > 1 {
		phase = 2 - phase
	}
	return utils.Lerp(1, 0.6, utils.EaseInOutCubic(phase))
}

// GradientSystem 缓存并绘制静态渐变
type GradientSystem struct {
	shader string
	w, h   int
	image  *ebiten.Image
}

// NewGradientSystem 创建渐变系统
func NewGradientSystem() *GradientSystem {
	return &GradientSystem{}
}

// Draw 绘制渐变，着色器或尺寸变化时重新生成
//
// 参数:
//   - dst: 目标图像
//   - shader: 着色器类型
//   - alpha: 整体透明度，移动端传 1（不做呼吸动画）
func (s *GradientSystem) Draw(dst *ebiten.Image, shader string, alpha float64) {
	b := dst.Bounds()
	w := max(1, b.Dx()/gradientDownscale)
	h := max(1, b.Dy()/gradientDownscale)
	if s.image == nil || s.shader != shader || s.w != w || s.h != h {
		if s.image != nil {
			s.image.Deallocate()
		}
		s.image = ebiten.NewImageFromImage(RenderGradient(shader, w, h))
		s.shader, s.w, s.h = shader, w, h
	}

	dst.Fill(BackgroundColor)
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(float64(b.Dx())/float64(w), float64(b.Dy())/float64(h))
	op.ColorScale.ScaleAlpha(float32(utils.Clamp(alpha, 0, 1)))
	dst.DrawImage(s.image, op)
}
