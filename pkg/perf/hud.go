package perf

import (
	"image/color"

	"github.com/decker502/backdrop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const (
	hudFadeSeconds = 0.25
	hudPadding     = 8
	hudLineHeight  = 15
	hudWidth       = 190
	hudMargin      = 12
)

var hudBackground = color.RGBA{R: 10, G: 10, B: 20, A: 200}

// HUD 右上角的性能面板，显示/隐藏时带淡入淡出
type HUD struct {
	face     text.Face
	visible  bool
	progress float64 // 0 完全隐藏，1 完全显示
	drawOpts text.DrawOptions
}

// NewHUD 创建性能面板
func NewHUD(visible bool) *HUD {
	h := &HUD{
		face:    text.NewGoXFace(basicfont.Face7x13),
		visible: visible,
	}
	if visible {
		h.progress = 1
	}
	return h
}

// Toggle 切换显示状态，返回切换后的状态
func (h *HUD) Toggle() bool {
	h.visible = !h.visible
	return h.visible
}

// Visible 面板是否处于显示状态（淡出过程中返回 false）
func (h *HUD) Visible() bool {
	return h.visible
}

// Opacity 当前不透明度
func (h *HUD) Opacity() float64 {
	return utils.EaseOutCubic(h.progress)
}

// Update 推进淡入淡出动画
func (h *HUD) Update(deltaTime float64) {
	step := deltaTime / hudFadeSeconds
	if h.visible {
		h.progress = utils.Clamp(h.progress+step, 0, 1)
	} else {
		h.progress = utils.Clamp(h.progress-step, 0, 1)
	}
}

// Draw 绘制面板，完全隐藏时不绘制
func (h *HUD) Draw(screen *ebiten.Image, m Metrics) {
	alpha := h.Opacity()
	if alpha <= 0 {
		return
	}

	lines := m.Lines()
	w := float32(hudWidth)
	ht := float32(len(lines)*hudLineHeight + hudPadding*2)
	x := float32(screen.Bounds().Dx()) - w - hudMargin
	y := float32(hudMargin)

	vector.FillRect(screen, x, y, w, ht, utils.ScaleAlpha(hudBackground, alpha), false)

	for i, line := range lines {
		clr := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if i == 0 {
			// 帧率一行按分级着色
			clr = FPSTier(m.FPS).Color()
		}
		h.drawOpts.GeoM.Reset()
		h.drawOpts.GeoM.Translate(float64(x)+hudPadding, float64(y)+hudPadding+float64(i*hudLineHeight))
		h.drawOpts.ColorScale.Reset()
		h.drawOpts.ColorScale.ScaleWithColor(clr)
		h.drawOpts.ColorScale.ScaleAlpha(float32(alpha))
		text.Draw(screen, line, h.face, &h.drawOpts)
	}
}
