//go:build !mobile

package utils

import "os"

// MobileEmulateEnv 设为 1 时桌面端按移动设备处理（用于本地调试低端路径）
const MobileEmulateEnv = "BACKDROP_MOBILE_EMULATE"

// IsMobile 检测当前是否在移动设备上运行
// 桌面端编译时默认返回 false，可以通过 BACKDROP_MOBILE_EMULATE=1 强制启用移动模式
func IsMobile() bool {
	return os.Getenv(MobileEmulateEnv) == "1"
}
