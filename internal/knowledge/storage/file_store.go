package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrFileNotFound 文件不存在
var ErrFileNotFound = errors.New("file not found")

// FileStore 上传文件存储接口，文件名即对象键
type FileStore interface {
	// Put 保存文件，同名覆盖
	Put(ctx context.Context, name string, content io.Reader, size int64, contentType string) (*FileInfo, error)

	// Open 打开文件读取，调用方负责关闭
	Open(ctx context.Context, name string) (io.ReadCloser, *FileInfo, error)

	// Stat 获取文件元数据
	Stat(ctx context.Context, name string) (*FileInfo, error)

	// List 列出全部文件
	List(ctx context.Context) ([]*FileInfo, error)
}

// FileInfo 文件元数据
type FileInfo struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Exists 检查文件是否存在
func Exists(ctx context.Context, store FileStore, name string) (bool, error) {
	_, err := store.Stat(ctx, name)
	if errors.Is(err, ErrFileNotFound) {
		return false, nil
	}
	return err == nil, err
}
