package systems

import (
	"image"
	"image/color"
	"math"

	"github.com/decker502/backdrop/pkg/components"
	"github.com/decker502/backdrop/pkg/ecs"
	"github.com/decker502/backdrop/pkg/quality"
	"github.com/hajimehoshi/ebiten/v2"
)

// 星系相机参数
const (
	galaxyCameraDistance = 6.0  // 相机到星系中心的距离
	galaxyBaseTilt       = 0.45 // 基础俯视角（弧度），让星系盘呈椭圆
	galaxyStarAlpha      = 0.8
)

// GalaxyStarSize 返回星的屏幕尺寸（像素）：high 档 2px，其余 3px
func GalaxyStarSize(level quality.Level) float64 {
	if level == quality.High {
		return 2
	}
	return 3
}

// ProjectedStar 投影后的星
type ProjectedStar struct {
	X, Y    float64
	Scale   float64 // 透视缩放，越近越大
	Visible bool
}

// ProjectStar 将星系空间中的星投影到屏幕
//
// 星系绕 Y 轴旋转 t*0.1，绕 X 轴摆动 sin(t*0.05)*0.1，
// 再叠加固定俯视角，用简单透视投影到以画布中心为原点的屏幕。
func ProjectStar(star *components.StarComponent, t, width, height float64) ProjectedStar {
	x := math.Cos(star.Angle) * star.Radius
	y := star.Height
	z := math.Sin(star.Angle) * star.Radius

	// 绕 Y 轴自转
	ry := t * 0.1
	x, z = x*math.Cos(ry)+z*math.Sin(ry), -x*math.Sin(ry)+z*math.Cos(ry)

	// 绕 X 轴摆动加固定俯视角
	rx := math.Sin(t*0.05)*0.1 + galaxyBaseTilt
	y, z = y*math.Cos(rx)-z*math.Sin(rx), y*math.Sin(rx)+z*math.Cos(rx)

	depth := galaxyCameraDistance - z
	if depth <= 0.1 {
		return ProjectedStar{}
	}

	focal := math.Min(width, height) * 0.9
	scale := galaxyCameraDistance / depth
	return ProjectedStar{
		X:       width/2 + x/depth*focal,
		Y:       height/2 - y/depth*focal,
		Scale:   scale,
		Visible: true,
	}
}

// GalaxySystem 用批量三角形绘制粒子星系，叠加混合
type GalaxySystem struct {
	entityManager *ecs.EntityManager
	whiteImage    *ebiten.Image
	whiteSub      *ebiten.Image
	vertices      []ebiten.Vertex // 复用，避免每帧分配
	indices       []uint16
}

// NewGalaxySystem 创建星系渲染系统
func NewGalaxySystem(em *ecs.EntityManager) *GalaxySystem {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &GalaxySystem{
		entityManager: em,
		whiteImage:    white,
		whiteSub:      white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		vertices:      make([]ebiten.Vertex, 0, 8000),
		indices:       make([]uint16, 0, 12000),
	}
}

// additiveBlend 对应星光叠加：源和目标直接相加
var additiveBlend = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// maxStarsPerBatch uint16 索引每批最多 16383 个四边形
const maxStarsPerBatch = 65535 / 4

// Draw 绘制所有星
//
// 参数:
//   - dst: 目标图像
//   - t: 动画时间（秒），暂停时调用方保持不变
//   - level: 当前画质档位，决定星的尺寸
//
// 返回:
//   - int: 实际绘制（在相机前方）的星数量
func (s *GalaxySystem) Draw(dst *ebiten.Image, t float64, level quality.Level) int {
	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	size := GalaxyStarSize(level)

	s.vertices = s.vertices[:0]
	s.indices = s.indices[:0]
	drawn := 0

	flush := func() {
		if len(s.vertices) == 0 {
			return
		}
		op := &ebiten.DrawTrianglesOptions{Blend: additiveBlend}
		dst.DrawTriangles(s.vertices, s.indices, s.whiteSub, op)
		s.vertices = s.vertices[:0]
		s.indices = s.indices[:0]
	}

	for _, id := range ecs.GetEntitiesWith1[*components.StarComponent](s.entityManager) {
		star, _ := ecs.GetComponent[*components.StarComponent](s.entityManager, id)
		p := ProjectStar(star, t, w, h)
		if !p.Visible {
			continue
		}

		half := float32(size * p.Scale / 2)
		x, y := float32(p.X), float32(p.Y)
		r := float32(star.Color.R) / 255 * galaxyStarAlpha
		g := float32(star.Color.G) / 255 * galaxyStarAlpha
		bl := float32(star.Color.B) / 255 * galaxyStarAlpha

		base := uint16(len(s.vertices))
		for _, c := range [4][2]float32{{-half, -half}, {half, -half}, {-half, half}, {half, half}} {
			s.vertices = append(s.vertices, ebiten.Vertex{
				DstX: x + c[0], DstY: y + c[1],
				SrcX: 1.5, SrcY: 1.5,
				ColorR: r, ColorG: g, ColorB: bl, ColorA: galaxyStarAlpha,
			})
		}
		s.indices = append(s.indices, base, base+1, base+2, base+1, base+3, base+2)
		drawn++

		if drawn%maxStarsPerBatch == 0 {
			flush()
		}
	}
	flush()
	return drawn
}
