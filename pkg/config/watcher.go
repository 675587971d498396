package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 连续保存时的合并间隔
const DefaultDebounce = 300 * time.Millisecond

// Watcher 监视外部画质配置文件，变化时重新加载并通过 Updates 投递
//
// 监视的是文件所在目录而不是文件本身：很多编辑器保存时先写临时文件再重命名，
// 直接监视文件会在第一次保存后丢失监视。
// 解析失败的配置只记录日志，不会投递，调用方继续使用上一份配置。
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	pending  time.Time // 最近一次未处理事件的时间，零值表示没有
	updates  chan *QualityConfig
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	reloads  int
	failures int
}

// NewWatcher 创建配置文件监视器
//
// 参数：
//   - path: 外部配置文件路径
//   - debounce: 合并间隔，非正数使用 DefaultDebounce
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: debounce,
		updates:  make(chan *QualityConfig, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start 开始监视，非阻塞
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Printf("[Config] Watching %s for changes", w.path)

	go w.run(ctx)
	return nil
}

// Stop 停止监视并等待事件循环退出，可重复调用
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		log.Printf("[Config] Error closing watcher: %v", err)
	}
}

// Updates 返回新配置的通道
//
// 通道容量为 1，消费者来不及读取时只保留最新一份。
func (w *Watcher) Updates() <-chan *QualityConfig {
	return w.updates
}

// Stats 返回成功重载次数与失败次数
func (w *Watcher) Stats() (reloads, failures int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads, w.failures
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := time.NewTicker(w.debounce / 3)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Config] Watcher error: %v", err)

		case now := <-tick.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name, err := filepath.Abs(event.Name)
	if err != nil {
		name = filepath.Clean(event.Name)
	}
	if name != w.path {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// flush 最近一次事件已经静默 debounce 之后才重新加载
func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	if w.pending.IsZero() || now.Sub(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	cfg, err := LoadQualityConfig(w.path)
	if err != nil {
		log.Printf("[Config] Reload of %s rejected: %v", w.path, err)
		w.mu.Lock()
		w.failures++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	log.Printf("[Config] Reloaded %s", w.path)

	// 丢弃尚未被读取的旧配置
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
}
