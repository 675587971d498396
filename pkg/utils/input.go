// Package utils 提供平台检测、存储目录、颜色和输入的通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// JustPressedTouchCount 返回本帧新按下的触摸点数量
// 移动端没有键盘，用多指点击代替快捷键
func JustPressedTouchCount() int {
	return len(inpututil.AppendJustPressedTouchIDs(nil))
}

// ActiveTouchCount 返回当前按下的触摸点数量
func ActiveTouchCount() int {
	return len(ebiten.AppendTouchIDs(nil))
}
