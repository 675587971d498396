package config

// 窗口与场景常量
const (
	// WindowWidth 桌面窗口默认宽度（逻辑像素）
	WindowWidth = 1280

	// WindowHeight 桌面窗口默认高度（逻辑像素）
	WindowHeight = 720

	// WindowTitle 窗口标题
	WindowTitle = "Backdrop"
)

// 场景名称
const (
	SceneBackdrop   = "backdrop"
	ScenePlayground = "playground"
)

// 着色器演示类型
const (
	ShaderAurora = "aurora"
	ShaderGalaxy = "galaxy"
	ShaderNebula = "nebula"
)

// ShaderTypes 按切换顺序列出所有着色器类型
var ShaderTypes = []string{ShaderAurora, ShaderGalaxy, ShaderNebula}

// NormalizeShader 返回合法的着色器名称，无法识别时返回 aurora
func NormalizeShader(name string) string {
	for _, s := range ShaderTypes {
		if s == name {
			return s
		}
	}
	return ShaderAurora
}

// NextShader 返回循环切换中的下一个着色器
func NextShader(name string) string {
	for i, s := range ShaderTypes {
		if s == name {
			return ShaderTypes[(i+1)%len(ShaderTypes)]
		}
	}
	return ShaderAurora
}
