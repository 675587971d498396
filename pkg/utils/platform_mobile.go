//go:build mobile

package utils

// MobileEmulateEnv 移动端构建中不起作用，保留以便两种构建共用同一个名字
const MobileEmulateEnv = "BACKDROP_MOBILE_EMULATE"

// IsMobile 移动端编译时总是返回 true
func IsMobile() bool {
	return true
}
