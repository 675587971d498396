package utils

import "math"

// 数值辅助函数
//
// 缓动函数接受进度 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
// 参考：https://easings.net/

// EaseOutCubic 三次方缓出，开始快结束慢（性能面板淡入）
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-Clamp(t, 0, 1), 3)
}

// EaseInOutCubic 三次方缓入缓出（静态渐变的色带过渡）
//
//	t < 0.5: f(t) = 4t³
//	t >= 0.5: f(t) = 1 - (-2t + 2)³ / 2
func EaseInOutCubic(t float64) float64 {
	t = Clamp(t, 0, 1)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Lerp 线性插值
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp 将 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Wrap 越过 [0, size] 任一端时绕回另一端
//
// 与取模不同，只在越界时跳转：线条完全离开画面一侧后才从另一侧出现。
func Wrap(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	if v < 0 {
		return size
	}
	if v > size {
		return 0
	}
	return v
}
