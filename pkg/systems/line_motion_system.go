package systems

import (
	"math"

	"github.com/decker502/backdrop/pkg/components"
	"github.com/decker502/backdrop/pkg/ecs"
	"github.com/decker502/backdrop/pkg/utils"
)

// LineMotionSystem 让背景线段沿自身方向匀速移动，越界后从对边出现
type LineMotionSystem struct {
	entityManager *ecs.EntityManager
}

// NewLineMotionSystem 创建线段运动系统
func NewLineMotionSystem(em *ecs.EntityManager) *LineMotionSystem {
	return &LineMotionSystem{entityManager: em}
}

// Update 推进一个渲染帧
//
// 速度以"每渲染帧"为单位，帧率限制器降低帧率时线段移动也相应变慢。
//
// 参数:
//   - width, height: 当前画布尺寸
func (s *LineMotionSystem) Update(width, height float64) {
	entities := ecs.GetEntitiesWith3[
		*components.PositionComponent,
		*components.LineComponent,
		*components.MotionComponent,
	](s.entityManager)

	for _, id := range entities {
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		line, _ := ecs.GetComponent[*components.LineComponent](s.entityManager, id)
		motion, _ := ecs.GetComponent[*components.MotionComponent](s.entityManager, id)

		pos.X += math.Cos(line.Angle) * motion.Speed
		pos.Y += math.Sin(line.Angle) * motion.Speed

		pos.X = utils.Wrap(pos.X, width)
		pos.Y = utils.Wrap(pos.Y, height)
	}
}
