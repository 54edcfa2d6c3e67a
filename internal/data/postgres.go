package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotPO 快照表，一个 name 对应一份快照
type SnapshotPO struct {
	Name      string `gorm:"primaryKey;size:128"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (SnapshotPO) TableName() string {
	return "notebook_snapshots"
}

// PostgresPersister 把快照保存在 PostgreSQL 的一行中
type PostgresPersister struct {
	db   *gorm.DB
	name string
	now  func() time.Time
}

func NewPostgresPersister(db *gorm.DB, name string) *PostgresPersister {
	return &PostgresPersister{db: db, name: name, now: time.Now}
}

// Load 行不存在时返回空快照；内容损坏时把该行改名为 <name>.bak_<unix>
func (p *PostgresPersister) Load(ctx context.Context) (*Snapshot, error) {
	var po SnapshotPO
	err := p.db.WithContext(ctx).Where("name = ?", p.name).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", p.name, err)
	}

	snap, err := decodeSnapshot([]byte(po.Payload))
	if err != nil {
		backup := fmt.Sprintf("%s.bak_%d", p.name, p.now().Unix())
		renameErr := p.db.WithContext(ctx).Model(&SnapshotPO{}).
			Where("name = ?", p.name).
			Update("name", backup).Error
		if renameErr != nil {
			return nil, fmt.Errorf("%w (backup failed: %v)", err, renameErr)
		}
		return nil, fmt.Errorf("%w (moved to %s)", err, backup)
	}
	return snap, nil
}

// Save upsert 快照行
func (p *PostgresPersister) Save(ctx context.Context, snap *Snapshot) error {
	raw, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	po := SnapshotPO{Name: p.name, Payload: string(raw), UpdatedAt: p.now()}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&po).Error
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", p.name, err)
	}
	return nil
}
