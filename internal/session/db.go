package session

import (
	"context"
	"errors"
	"time"

	"readaloud_backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DBStore 把会话落到 class_sessions 表。单实例且没有 redis 时使用，
// 重启不丢会话。过期行由后台 Sweep 定时清理
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Create(ctx context.Context, studentID, classID string, ttl time.Duration) (*Session, error) {
	now := time.Now()
	row := &model.ClassSession{
		SessionToken: uuid.New().String(),
		StudentID:    studentID,
		ClassID:      classID,
		ExpiresAt:    now.Add(ttl),
		LastSeenAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return &Session{
		Token:     row.SessionToken,
		StudentID: row.StudentID,
		ClassID:   row.ClassID,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (s *DBStore) Get(ctx context.Context, token string) (*Session, error) {
	var row model.ClassSession
	err := s.db.WithContext(ctx).Where("session_token = ?", token).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if row.Expired(time.Now()) {
		return nil, nil
	}

	// 记录最后活跃时间，失败不影响本次鉴权
	s.db.WithContext(ctx).Model(&model.ClassSession{}).
		Where("id = ?", row.ID).
		Update("last_seen_at", time.Now())

	return &Session{
		Token:     row.SessionToken,
		StudentID: row.StudentID,
		ClassID:   row.ClassID,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (s *DBStore) Delete(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Where("session_token = ?", token).Delete(&model.ClassSession{}).Error
}

// Sweep 硬删除所有已过期会话行
func (s *DBStore) Sweep(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&model.ClassSession{})
	return res.RowsAffected, res.Error
}
