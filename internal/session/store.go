package session

import (
	"context"
	"time"
)

// Session 学生入班会话：一次 validate_student_access 成功后发出的
// 不透明令牌，把学生绑定到班级，限时有效
type Session struct {
	Token     string    `json:"token"`
	StudentID string    `json:"studentId"`
	ClassID   string    `json:"classId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store 会话存储。Get 对不存在或已过期的令牌一律返回 (nil, nil)，
// 过期是业务状态而不是错误
type Store interface {
	Create(ctx context.Context, studentID, classID string, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
