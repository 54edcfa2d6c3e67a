package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/template/types"
	"go.uber.org/zap"
)

// FileRepo 模板库，整体保存为一个 JSON 数组文件
type FileRepo struct {
	path    string
	mu      sync.RWMutex
	entries []*types.Entry
	logger  *logger.Logger
}

// NewFileRepo 加载模板文件。文件不存在、损坏或不是数组时从空列表开始。
func NewFileRepo(path string, lgr *logger.Logger) *FileRepo {
	if lgr == nil {
		lgr = logger.L()
	}
	r := &FileRepo{path: path, logger: lgr.Named("template_repo")}
	r.entries = r.load()
	return r
}

func (r *FileRepo) load() []*types.Entry {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Info("template file not found, starting empty", zap.String("path", r.path))
		return []*types.Entry{}
	}
	if err != nil {
		r.logger.Error("failed to read template file", zap.String("path", r.path), zap.Error(err))
		return []*types.Entry{}
	}

	var entries []*types.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		r.logger.Warn("template file is not a valid list, starting empty", zap.String("path", r.path), zap.Error(err))
		return []*types.Entry{}
	}

	validate := validator.New()
	valid := make([]*types.Entry, 0, len(entries))
	for i, e := range entries {
		if e == nil || validate.Struct(e) != nil {
			r.logger.Warn("dropping invalid template entry", zap.Int("index", i))
			continue
		}
		valid = append(valid, e)
	}
	return valid
}

func (r *FileRepo) save() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r.entries); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create template dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write template file: %w", err)
	}
	return os.Rename(tmp, r.path)
}

// List 返回全部模板（副本）
func (r *FileRepo) List() []*types.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*types.Entry, len(r.entries))
	for i, e := range r.entries {
		c := *e
		out[i] = &c
	}
	return out
}

// Get 按下标获取模板
func (r *FileRepo) Get(index int) (*types.Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.entries) {
		return nil, false
	}
	c := *r.entries[index]
	return &c, true
}

// Add 追加模板；模板与方法都完全相同时不重复添加，返回 false。
// 保存失败只记录日志，内存中的列表保持更新。
func (r *FileRepo) Add(_ context.Context, entry *types.Entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if *e == *entry {
			r.logger.Debug("template already exists", zap.String("question_template", entry.QuestionTemplate))
			return false
		}
	}

	c := *entry
	r.entries = append(r.entries, &c)
	if err := r.save(); err != nil {
		r.logger.Error("failed to save templates", zap.String("path", r.path), zap.Error(err))
	}
	r.logger.Info("template added", zap.String("question_template", entry.QuestionTemplate))
	return true
}
