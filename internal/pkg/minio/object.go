package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ObjectInfo represents object metadata
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

func toObjectInfo(info minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
	}
}

// PutObject uploads an object into the configured bucket
func (c *Client) PutObject(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (ObjectInfo, error) {
	if err := c.checkClosed(); err != nil {
		return ObjectInfo{}, err
	}
	if objectName == "" {
		return ObjectInfo{}, WrapError("PutObject", ErrInvalidObjectName, c.config.Bucket, objectName)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	info, err := c.client.PutObject(ctx, c.config.Bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return ObjectInfo{}, WrapError("PutObject", err, c.config.Bucket, objectName)
	}

	c.logger.Info("object uploaded successfully",
		zap.String("bucket", c.config.Bucket),
		zap.String("object", objectName),
		zap.Int64("size", info.Size),
	)

	return ObjectInfo{Key: info.Key, Size: info.Size, LastModified: info.LastModified, ContentType: contentType}, nil
}

// GetObject opens an object for reading; the caller closes it
func (c *Client) GetObject(ctx context.Context, objectName string) (io.ReadCloser, ObjectInfo, error) {
	if err := c.checkClosed(); err != nil {
		return nil, ObjectInfo{}, err
	}

	obj, err := c.client.GetObject(ctx, c.config.Bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, WrapError("GetObject", err, c.config.Bucket, objectName)
	}
	// GetObject is lazy; Stat surfaces NoSuchKey
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, WrapError("GetObject", err, c.config.Bucket, objectName)
	}
	return obj, toObjectInfo(info), nil
}

// StatObject gets object metadata
func (c *Client) StatObject(ctx context.Context, objectName string) (ObjectInfo, error) {
	if err := c.checkClosed(); err != nil {
		return ObjectInfo{}, err
	}

	info, err := c.client.StatObject(ctx, c.config.Bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, WrapError("StatObject", err, c.config.Bucket, objectName)
	}
	return toObjectInfo(info), nil
}

// ListObjects lists every object under prefix
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	var objects []ObjectInfo
	for info := range c.client.ListObjects(ctx, c.config.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, WrapError("ListObjects", info.Err, c.config.Bucket, prefix)
		}
		objects = append(objects, toObjectInfo(info))
	}
	return objects, nil
}
