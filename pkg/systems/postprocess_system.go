package systems

import (
	"fmt"

	"github.com/decker502/backdrop/internal/shaders"
	"github.com/decker502/backdrop/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

// bloomThreshold 参与泛光的亮度阈值
const bloomThreshold = 0.9

// PostProcessSystem 泛光 + 暗角后期处理
//
// 用法：场景先把内容画到 Target() 返回的离屏图像，再调用 Apply 合成到屏幕。
type PostProcessSystem struct {
	buffer *ebiten.Image
}

// NewPostProcessSystem 创建后期处理系统
func NewPostProcessSystem() *PostProcessSystem {
	return &PostProcessSystem{}
}

// Target 返回与 w×h 同尺寸的已清空离屏图像
func (p *PostProcessSystem) Target(w, h int) *ebiten.Image {
	w, h = max(1, w), max(1, h)
	if p.buffer != nil {
		b := p.buffer.Bounds()
		if b.Dx() != w || b.Dy() != h {
			p.buffer.Deallocate()
			p.buffer = nil
		}
	}
	if p.buffer == nil {
		p.buffer = ebiten.NewImage(w, h)
	}
	p.buffer.Clear()
	return p.buffer
}

// Apply 把离屏内容经过后期着色器画到 dst
//
// 着色器不可用时直接拷贝离屏内容，画面保持可见。
func (p *PostProcessSystem) Apply(dst *ebiten.Image, params config.PostProcessParams) error {
	if p.buffer == nil {
		return nil
	}

	sh, err := shaders.Load(shaders.PostProcess)
	if err != nil {
		dst.DrawImage(p.buffer, nil)
		return fmt.Errorf("post-process: %w", err)
	}

	b := p.buffer.Bounds()
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = p.buffer
	op.Uniforms = map[string]any{
		"Bloom":            float32(params.Bloom),
		"Threshold":        float32(bloomThreshold),
		"VignetteOffset":   float32(params.VignetteOffset),
		"VignetteDarkness": float32(params.VignetteDarkness),
	}
	dst.DrawRectShader(b.Dx(), b.Dy(), sh, op)
	return nil
}
