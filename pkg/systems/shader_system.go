package systems

import (
	"fmt"

	"github.com/decker502/backdrop/internal/shaders"
	"github.com/decker502/backdrop/pkg/quality"
	"github.com/hajimehoshi/ebiten/v2"
)

// RenderScale 返回着色器离屏渲染的分辨率比例
//
// high 全分辨率，medium 0.75，low 0.5，降低片元着色器的像素数。
func RenderScale(level quality.Level) float64 {
	switch level {
	case quality.High:
		return 1.0
	case quality.Medium:
		return 0.75
	default:
		return 0.5
	}
}

// ShaderParams 全屏着色器的 uniform 参数
type ShaderParams struct {
	Time      float64    // 动画时间（秒）
	Mouse     [2]float64 // 归一化指针位置 [0,1]，Y 轴向上
	Intensity float64    // 颜色强度，见 config.QualityConfig.ShaderIntensity
}

// ShaderSystem 以降采样离屏图像运行 aurora / nebula 片元着色器
type ShaderSystem struct {
	canvas *ebiten.Image
}

// NewShaderSystem 创建着色器系统
func NewShaderSystem() *ShaderSystem {
	return &ShaderSystem{}
}

// ensureCanvas 按目标尺寸和比例准备离屏图像，尺寸变化时重建
func (s *ShaderSystem) ensureCanvas(w, h int, scale float64) *ebiten.Image {
	cw := max(1, int(float64(w)*scale))
	ch := max(1, int(float64(h)*scale))
	if s.canvas != nil {
		b := s.canvas.Bounds()
		if b.Dx() == cw && b.Dy() == ch {
			return s.canvas
		}
		s.canvas.Deallocate()
	}
	s.canvas = ebiten.NewImage(cw, ch)
	return s.canvas
}

// Draw 运行指定着色器并把结果拉伸绘制到 dst
//
// 参数:
//   - dst: 目标图像
//   - name: shaders.Aurora 或 shaders.Nebula
//   - level: 画质档位，决定离屏分辨率
//   - p: uniform 参数
//
// 返回:
//   - error: 着色器编译失败时返回错误，调用方应降级为静态渐变
func (s *ShaderSystem) Draw(dst *ebiten.Image, name string, level quality.Level, p ShaderParams) error {
	sh, err := shaders.Load(name)
	if err != nil {
		return fmt.Errorf("shader system: %w", err)
	}

	b := dst.Bounds()
	scale := RenderScale(level)
	canvas := s.ensureCanvas(b.Dx(), b.Dy(), scale)
	canvas.Clear()

	cb := canvas.Bounds()
	op := &ebiten.DrawRectShaderOptions{}
	op.Uniforms = map[string]any{
		"Time":      float32(p.Time),
		"Mouse":     []float32{float32(p.Mouse[0]), float32(p.Mouse[1])},
		"Intensity": float32(p.Intensity),
	}
	canvas.DrawRectShader(cb.Dx(), cb.Dy(), sh, op)

	dop := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	dop.GeoM.Scale(float64(b.Dx())/float64(cb.Dx()), float64(b.Dy())/float64(cb.Dy()))
	dst.DrawImage(canvas, dop)
	return nil
}
