// Package shaders 内嵌 Kage 着色器源码并负责编译缓存
package shaders

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// 着色器名称
const (
	Aurora      = "aurora"
	Nebula      = "nebula"
	PostProcess = "postprocess"
)

var (
	//go:embed aurora.kage
	auroraSrc []byte

	//go:embed nebula.kage
	nebulaSrc []byte

	//go:embed postprocess.kage
	postProcessSrc []byte
)

var sources = map[string][]byte{
	Aurora:      auroraSrc,
	Nebula:      nebulaSrc,
	PostProcess: postProcessSrc,
}

var (
	mu       sync.Mutex
	compiled = map[string]*ebiten.Shader{}
)

// Source 返回着色器源码
func Source(name string) ([]byte, bool) {
	src, ok := sources[name]
	return src, ok
}

// Names 返回所有内嵌着色器名称
func Names() []string {
	return []string{Aurora, Nebula, PostProcess}
}

// Load 编译并缓存着色器，重复调用返回同一个实例
func Load(name string) (*ebiten.Shader, error) {
	mu.Lock()
	defer mu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}
	src, ok := sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown shader %q", name)
	}
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader %s: %w", name, err)
	}
	compiled[name] = s
	return s, nil
}
