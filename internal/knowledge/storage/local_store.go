package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// LocalStore 本地目录文件存储
type LocalStore struct {
	dir    string
	logger *logger.Logger
}

// NewLocalStore 创建本地存储，目录不存在时自动创建
func NewLocalStore(dir string, lgr *logger.Logger) (*LocalStore, error) {
	if lgr == nil {
		lgr = logger.L()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, logger: lgr.Named("local_store")}, nil
}

// Dir 存储目录
func (s *LocalStore) Dir() string {
	return s.dir
}

// path 只接受单层文件名，拒绝路径穿越
func (s *LocalStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: invalid name %q", ErrFileNotFound, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Put 保存文件
func (s *LocalStore) Put(_ context.Context, name string, content io.Reader, _ int64, contentType string) (*FileInfo, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(p)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Info("file saved", zap.String("name", name), zap.Int64("size", written))

	info, err := s.Stat(context.Background(), name)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		info.ContentType = contentType
	}
	return info, nil
}

// Open 打开文件
func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, *FileInfo, error) {
	info, err := s.Stat(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, info, nil
}

// Stat 获取文件元数据
func (s *LocalStore) Stat(_ context.Context, name string) (*FileInfo, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, name)
	}
	return toFileInfo(fi), nil
}

// List 列出目录下的普通文件（按名称排序），忽略隐藏文件和子目录
func (s *LocalStore) List(_ context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload dir: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, toFileInfo(fi))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func toFileInfo(fi os.FileInfo) *FileInfo {
	return &FileInfo{
		Name:        fi.Name(),
		Size:        fi.Size(),
		ModTime:     fi.ModTime(),
		ContentType: mime.TypeByExtension(filepath.Ext(fi.Name())),
	}
}
