package model

import "time"

// swagger:model ClassSession
// ClassSession 学生入班会话：把一个学生绑定到一个班级的短时令牌，
// 过期行由后台任务清理
type ClassSession struct {
	UUIDBase
	SessionToken string    `gorm:"size:64;uniqueIndex;not null" json:"sessionToken"`
	StudentID    string    `gorm:"type:varchar(36);index;not null" json:"studentId"`
	ClassID      string    `gorm:"type:varchar(36);index;not null" json:"classId"`
	ExpiresAt    time.Time `gorm:"index;not null" json:"expiresAt"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
}

func (ClassSession) TableName() string {
	return "class_sessions"
}

func (s *ClassSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
