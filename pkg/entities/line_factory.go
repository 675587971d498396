package entities

import (
	"math"
	"math/rand"

	"github.com/decker502/backdrop/pkg/components"
	"github.com/decker502/backdrop/pkg/ecs"
	"github.com/decker502/backdrop/pkg/utils"
)

// 线条随机参数范围
const (
	LineMinLength  = 60.0
	LineMaxLength  = 180.0
	LineMinSpeed   = 0.4
	LineMaxSpeed   = 2.2
	LineMinWidth   = 1.0
	LineMaxWidth   = 4.0
	LineMinOpacity = 0.04
	LineMaxOpacity = 0.22

	LineMinHue       = 170.0
	LineMaxHue       = 250.0
	LineSaturation   = 0.85
	LineMinLightness = 0.40
	LineMaxLightness = 0.65
)

// between 返回 [lo, hi) 内的随机数
func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// NewLineEntity 在画布内随机位置创建一条线段
//
// 参数:
//   - em: EntityManager 实例
//   - rng: 随机源，测试中传入固定种子
//   - width, height: 画布尺寸
//
// 返回: 创建的实体ID
func NewLineEntity(em *ecs.EntityManager, rng *rand.Rand, width, height float64) ecs.EntityID {
	id := em.CreateEntity()

	em.AddComponent(id, &components.PositionComponent{
		X: rng.Float64() * width,
		Y: rng.Float64() * height,
	})

	hue := between(rng, LineMinHue, LineMaxHue)
	lightness := between(rng, LineMinLightness, LineMaxLightness)
	em.AddComponent(id, &components.LineComponent{
		Length:    between(rng, LineMinLength, LineMaxLength),
		Angle:     rng.Float64() * 2 * math.Pi,
		Width:     between(rng, LineMinWidth, LineMaxWidth),
		Opacity:   between(rng, LineMinOpacity, LineMaxOpacity),
		Hue:       hue,
		Lightness: lightness,
		Color:     utils.HSLToRGBA(hue, LineSaturation, lightness, 1),
	})

	em.AddComponent(id, &components.MotionComponent{
		Speed: between(rng, LineMinSpeed, LineMaxSpeed),
	})

	return id
}

// SyncLineCount 调整线段实体数量到 n
//
// 多出的线段按创建顺序从后往前移除，不足时补充新的随机线段，
// 已存在的线段保持原有位置，切换档位时画面不会整体跳变。
//
// 返回: 调整后的线段数量
func SyncLineCount(em *ecs.EntityManager, rng *rand.Rand, n int, width, height float64) int {
	if n < 0 {
		n = 0
	}
	ids := ecs.GetEntitiesWith1[*components.LineComponent](em)

	for i := len(ids); i < n; i++ {
		NewLineEntity(em, rng, width, height)
	}
	if len(ids) > n {
		for _, id := range ids[n:] {
			em.DestroyEntity(id)
		}
		em.RemoveMarkedEntities()
	}
	return n
}
