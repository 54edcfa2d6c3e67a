package storage

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	pkgminio "github.com/lk2023060901/ai-notebook-backend/internal/pkg/minio"
	"go.uber.org/zap"
)

// MinIOStore MinIO 文件存储实现，对象键带固定前缀
type MinIOStore struct {
	client *pkgminio.Client
	prefix string
	logger *logger.Logger
}

// NewMinIOStore 创建 MinIO 文件存储
func NewMinIOStore(client *pkgminio.Client, prefix string, lgr *logger.Logger) *MinIOStore {
	if lgr == nil {
		lgr = logger.L()
	}
	return &MinIOStore{
		client: client,
		prefix: prefix,
		logger: lgr.Named("minio_store"),
	}
}

func (s *MinIOStore) key(name string) string {
	return s.prefix + name
}

func (s *MinIOStore) wrap(err error, name string) error {
	if pkgminio.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return err
}

// Put 上传文件
func (s *MinIOStore) Put(ctx context.Context, name string, content io.Reader, size int64, contentType string) (*FileInfo, error) {
	info, err := s.client.PutObject(ctx, s.key(name), content, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.Info("file uploaded successfully",
		zap.String("bucket", s.client.Bucket()),
		zap.String("key", info.Key),
		zap.Int64("size", info.Size))

	return &FileInfo{Name: name, Size: info.Size, ModTime: info.LastModified, ContentType: contentType}, nil
}

// Open 下载文件
func (s *MinIOStore) Open(ctx context.Context, name string) (io.ReadCloser, *FileInfo, error) {
	rc, info, err := s.client.GetObject(ctx, s.key(name))
	if err != nil {
		return nil, nil, s.wrap(err, name)
	}
	return rc, &FileInfo{Name: name, Size: info.Size, ModTime: info.LastModified, ContentType: info.ContentType}, nil
}

// Stat 获取文件元数据
func (s *MinIOStore) Stat(ctx context.Context, name string) (*FileInfo, error) {
	info, err := s.client.StatObject(ctx, s.key(name))
	if err != nil {
		return nil, s.wrap(err, name)
	}
	return &FileInfo{Name: name, Size: info.Size, ModTime: info.LastModified, ContentType: info.ContentType}, nil
}

// List 列出前缀下全部对象
func (s *MinIOStore) List(ctx context.Context) ([]*FileInfo, error) {
	objects, err := s.client.ListObjects(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	files := make([]*FileInfo, 0, len(objects))
	for _, obj := range objects {
		name := obj.Key[len(s.prefix):]
		if name == "" {
			continue
		}
		files = append(files, &FileInfo{Name: name, Size: obj.Size, ModTime: obj.LastModified, ContentType: obj.ContentType})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
