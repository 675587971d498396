package components

import "image/color"

// LineComponent 背景中的一条发光线段
//
// 线段以 PositionComponent 为起点，沿 Angle 方向延伸 Length。
// Color 是不含透明度的基础色，绘制时乘以 Opacity 与档位的 AlphaScale。
type LineComponent struct {
	Length  float64 // 长度（像素）
	Angle   float64 // 方向（弧度）
	Width   float64 // 线宽（像素）
	Opacity float64 // 基础不透明度

	Hue       float64 // 色相（度），保留以便调试面板显示
	Lightness float64 // 亮度 [0, 1]
	Color     color.RGBA
}

// MotionComponent 沿线段方向的匀速运动
type MotionComponent struct {
	Speed float64 // 每个渲染帧移动的像素数
}
