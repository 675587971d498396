package systems

import (
	"math"

	"github.com/decker502/backdrop/pkg/components"
	"github.com/decker502/backdrop/pkg/ecs"
	"github.com/decker502/backdrop/pkg/quality"
	"github.com/decker502/backdrop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// glowAlpha 辉光层相对线段本身的透明度
const glowAlpha = 0.25

// defaultLineOpacity 线段未设置不透明度时使用的值
const defaultLineOpacity = 0.05

// LineRenderSystem 绘制背景线段
//
// 每条线段画两遍：先画一条更宽更淡的辉光描边，再画本体。
// 辉光宽度为 max(1, 线宽 × MaxShadowMult)，glow 关闭时只画本体。
type LineRenderSystem struct {
	entityManager *ecs.EntityManager
}

// NewLineRenderSystem 创建线段渲染系统
func NewLineRenderSystem(em *ecs.EntityManager) *LineRenderSystem {
	return &LineRenderSystem{entityManager: em}
}

// LineStroke 一条线段的绘制参数，Draw 和测试共用
type LineStroke struct {
	X0, Y0, X1, Y1 float32
	Width          float32
	GlowWidth      float32
	Alpha          float64
}

// Stroke 计算线段在指定档位下的绘制参数
func Stroke(pos *components.PositionComponent, line *components.LineComponent, s quality.BackgroundSettings) LineStroke {
	opacity := line.Opacity
	if opacity <= 0 {
		opacity = defaultLineOpacity
	}
	return LineStroke{
		X0:        float32(pos.X),
		Y0:        float32(pos.Y),
		X1:        float32(pos.X + math.Cos(line.Angle)*line.Length),
		Y1:        float32(pos.Y + math.Sin(line.Angle)*line.Length),
		Width:     float32(line.Width),
		GlowWidth: float32(math.Max(1, line.Width*s.MaxShadowMult)),
		Alpha:     opacity * s.AlphaScale,
	}
}

// Draw 将所有线段画到 dst 上
//
// 参数:
//   - dst: 目标图像（背景场景的离屏画布）
//   - settings: 当前背景档位参数
//   - glow: 是否绘制辉光（跟随画质预设的后期处理开关）
//
// 返回:
//   - int: 实际绘制的线段数量
func (s *LineRenderSystem) Draw(dst *ebiten.Image, settings quality.BackgroundSettings, glow bool) int {
	if !settings.Enabled() {
		return 0
	}

	entities := ecs.GetEntitiesWith2[*components.PositionComponent, *components.LineComponent](s.entityManager)
	drawn := 0
	for _, id := range entities {
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		line, _ := ecs.GetComponent[*components.LineComponent](s.entityManager, id)

		st := Stroke(pos, line, settings)
		if st.Alpha <= 0 {
			continue
		}

		if glow && st.GlowWidth > st.Width {
			glowColor := utils.ScaleAlpha(line.Color, st.Alpha*glowAlpha)
			vector.StrokeLine(dst, st.X0, st.Y0, st.X1, st.Y1, st.GlowWidth, glowColor, true)
		}
		vector.StrokeLine(dst, st.X0, st.Y0, st.X1, st.Y1, st.Width, utils.ScaleAlpha(line.Color, st.Alpha), true)
		drawn++
	}
	return drawn
}
