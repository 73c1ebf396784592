package repository

import (
	"errors"

	"readaloud_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.db.Create(class).Error
}

func (r *ClassRepository) GetByID(id string) (*model.Class, error) {
	var class model.Class
	err := r.db.Where("id = ?", id).First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// GetByAccessToken 入班码查班级。大小写不敏感，前端随便输
func (r *ClassRepository) GetByAccessToken(token string) (*model.Class, error) {
	var class model.Class
	err := r.db.Where("UPPER(access_token) = UPPER(?)", token).First(&class).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *ClassRepository) AccessTokenExists(token string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Class{}).Where("access_token = ?", token).Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) Update(class *model.Class) error {
	return r.db.Save(class).Error
}

func (r *ClassRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Class{}).Error
}

func (r *ClassRepository) List(scope func(*gorm.DB) *gorm.DB) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.Scopes(scope).Order("created_at DESC").Find(&classes).Error
	return classes, err
}

// ListIDsByTeacher 教师名下所有班级 ID，登录解析身份时一次取出
func (r *ClassRepository) ListIDsByTeacher(teacherID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.Class{}).
		Where("teacher_id = ?", teacherID).
		Pluck("id", &ids).Error
	return ids, err
}

// ClassWithCounts 管理端班级总览行
type ClassWithCounts struct {
	model.Class
	StudentCount int64  `json:"student_count"`
	TeacherName  string `json:"teacher_name"`
	TeacherEmail string `json:"teacher_email"`
}

// ListWithCounts 班级列表附带学生数与教师信息，管理端总览用
func (r *ClassRepository) ListWithCounts(scope func(*gorm.DB) *gorm.DB) ([]ClassWithCounts, error) {
	var rows []ClassWithCounts
	err := r.db.Model(&model.Class{}).
		Scopes(scope).
		Select(`classes.*,
			(SELECT COUNT(*) FROM profiles p
				WHERE p.class_id = classes.id AND p.role = 'student'
				AND p.is_active = true AND p.deleted_at IS NULL) AS student_count,
			t.full_name AS teacher_name,
			t.email AS teacher_email`).
		Joins("LEFT JOIN profiles t ON t.id = classes.teacher_id").
		Order("classes.created_at DESC").
		Scan(&rows).Error
	return rows, err
}
