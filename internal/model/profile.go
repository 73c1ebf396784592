package model

import "time"

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model Profile
// Profile 统一的用户档案表：学生、教师、管理员共用一张表，
// role 决定哪些可选字段有意义（学生才有 class_id / visual_password_id）
type Profile struct {
	UUIDBase
	Email            *string  `gorm:"size:255;uniqueIndex" json:"email"`
	Username         *string  `gorm:"size:100;uniqueIndex" json:"username"`
	FullName         string   `gorm:"size:100;not null;uniqueIndex:uniq_class_student_name" json:"fullName"`
	Role             UserRole `gorm:"type:varchar(20);default:'student';index;uniqueIndex:uniq_class_student_name" json:"role"`
	PasswordHash     *string  `gorm:"size:100" json:"-"`
	// 同班同名同角色唯一，挡住并发首访重复建档；教师/管理员
	// class_id 为 NULL，不受该索引约束
	ClassID          *string  `gorm:"type:varchar(36);index;uniqueIndex:uniq_class_student_name" json:"classId"`
	VisualPasswordID *string  `gorm:"type:varchar(36)" json:"visualPasswordId"`
	IsActive         bool     `gorm:"default:true" json:"isActive"`
	LastLogin        *time.Time `json:"lastLogin"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) IsStudent() bool {
	return p.Role == Student
}
