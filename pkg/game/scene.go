package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a full-screen view (the line backdrop or the shader playground).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	// screen is the target image where the scene should be drawn.
	Draw(screen *ebiten.Image)
}

// Resizable 是一个可选接口，场景在视口尺寸变化时重新布局
//
// SceneManager 在尺寸变化和切换场景时调用 Resize。
type Resizable interface {
	Resize(width, height int)
}

// Disposable 是一个可选接口，场景被替换时释放 GPU 资源（离屏画布等）
type Disposable interface {
	Dispose()
}
