package entities

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/decker502/backdrop/pkg/components"
	"github.com/decker502/backdrop/pkg/ecs"
)

// GalaxyRadius 星系盘半径（星系空间单位）
const GalaxyRadius = 4.0

// GalaxyThickness 星系盘厚度
const GalaxyThickness = 0.5

// NewStarEntity 创建一颗随机分布在星系盘内的星
//
// 颜色随到中心的距离从青色过渡到淡紫色：R = 0.4+0.6d, G = 0.8-0.3d, B = 1。
func NewStarEntity(em *ecs.EntityManager, rng *rand.Rand) ecs.EntityID {
	id := em.CreateEntity()

	radius := rng.Float64() * GalaxyRadius
	d := radius / GalaxyRadius
	em.AddComponent(id, &components.StarComponent{
		Radius: radius,
		Angle:  rng.Float64() * 2 * math.Pi,
		Height: (rng.Float64() - 0.5) * GalaxyThickness,
		Color: color.RGBA{
			R: uint8(math.Round((0.4 + d*0.6) * 255)),
			G: uint8(math.Round((0.8 - d*0.3) * 255)),
			B: 255,
			A: 255,
		},
	})

	return id
}

// SyncStarCount 调整星的数量到 n，规则与 SyncLineCount 相同
func SyncStarCount(em *ecs.EntityManager, rng *rand.Rand, n int) int {
	if n < 0 {
		n = 0
	}
	ids := ecs.GetEntitiesWith1[*components.StarComponent](em)

	for i := len(ids); i < n; i++ {
		NewStarEntity(em, rng)
	}
	if len(ids) > n {
		for _, id := range ids[n:] {
			em.DestroyEntity(id)
		}
		em.RemoveMarkedEntities()
	}
	return n
}
