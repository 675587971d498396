package components

// PositionComponent 实体在画布上的位置（逻辑像素）
type PositionComponent struct {
	X float64
	Y float64
}
