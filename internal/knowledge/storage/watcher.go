package storage

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Watcher 监视上传目录，文件变化经去抖后触发回调
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	logger   *logger.Logger
}

// NewWatcher 创建目录监视器
func NewWatcher(dir string, debounce time.Duration, lgr *logger.Logger) (*Watcher, error) {
	if lgr == nil {
		lgr = logger.L()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  w,
		dir:      dir,
		debounce: debounce,
		logger:   lgr.Named("watcher"),
	}, nil
}

// Run 阻塞直到 ctx 结束或监视器关闭
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context)) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.logger.Info("watching upload dir", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("upload dir changed",
				zap.String("file", filepath.Base(event.Name)),
				zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			onChange(ctx)
		}
	}
}

// Close 停止监视
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
