package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type kvEntry struct {
	Key   string `gorm:"column:entry_key;primaryKey;size:191"`
	Value []byte `gorm:"column:value;not null"`
}

func (kvEntry) TableName() string { return "kv_entries" }

type indexEntry struct {
	IndexKey string  `gorm:"column:index_key;primaryKey;size:64"`
	Member   string  `gorm:"column:member;primaryKey;size:191"`
	Score    float64 `gorm:"column:score;not null;index"`
}

func (indexEntry) TableName() string { return "index_entries" }

// SQLStore keeps the key/value and sorted-index layout in two tables so
// that sqlite and postgres deployments share the redis key scheme.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(dialector gorm.Dialector) (*SQLStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&kvEntry{}, &indexEntry{}); err != nil {
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) WriteBatch(ctx context.Context, b Batch) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range b.Values {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&kvEntry{Key: e.Key, Value: e.Value}).Error; err != nil {
				return err
			}
		}
		for _, idx := range b.Index {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&indexEntry{IndexKey: idx.Key, Member: idx.Member, Score: idx.Score}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

func (s *SQLStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var rows []kvEntry
	if err := s.db.WithContext(ctx).Where("entry_key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	byKey := make(map[string][]byte, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r.Value
	}
	for i, k := range keys {
		out[i] = byKey[k]
	}
	return out, nil
}

func (s *SQLStore) RevRange(ctx context.Context, key string, offset, limit int64) ([]string, error) {
	members := []string{}
	if limit == 0 {
		return members, nil
	}
	q := s.db.WithContext(ctx).Model(&indexEntry{}).
		Where("index_key = ?", key).
		Order("score DESC").
		Order("member DESC").
		Offset(int(offset))
	if limit > 0 {
		q = q.Limit(int(limit))
	}
	if err := q.Pluck("member", &members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (s *SQLStore) Count(ctx context.Context, key string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&indexEntry{}).Where("index_key = ?", key).Count(&n).Error
	return n, err
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
