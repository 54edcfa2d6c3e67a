package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FilePersister 把快照保存为本地 JSON 文件
type FilePersister struct {
	path string
	now  func() time.Time
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path, now: time.Now}
}

// Path 快照文件路径
func (p *FilePersister) Path() string {
	return p.path
}

// Load 读取快照。文件损坏时重命名为 <path>.bak_<unix> 并返回 ErrCorruptSnapshot。
func (p *FilePersister) Load(_ context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", p.path, err)
	}

	snap, err := decodeSnapshot(raw)
	if err != nil {
		backup := fmt.Sprintf("%s.bak_%d", p.path, p.now().Unix())
		if renameErr := os.Rename(p.path, backup); renameErr != nil {
			return nil, fmt.Errorf("%w (backup failed: %v)", err, renameErr)
		}
		return nil, fmt.Errorf("%w (moved to %s)", err, backup)
	}
	return snap, nil
}

// Save 先写临时文件再原子替换
func (p *FilePersister) Save(_ context.Context, snap *Snapshot) error {
	raw, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
