package components

import "image/color"

// StarComponent 粒子星系中的一颗星
//
// 位置用柱坐标表示：绕 Y 轴的角度、到中心的半径、垂直于盘面的高度。
// 单位是星系空间（半径 0-4），由 GalaxySystem 投影到屏幕。
type StarComponent struct {
	Radius float64
	Angle  float64
	Height float64
	Color  color.RGBA
}
