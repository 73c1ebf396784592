package repository

import (
	"errors"

	"readaloud_backend/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(profile *model.Profile) error {
	return r.db.Create(profile).Error
}

func (r *ProfileRepository) GetByID(id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByEmail(email string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Where("email = ?", email).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByUsername(username string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Where("username = ?", username).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindStudentByClassAndName 学生档案按 (班级, 姓名) 定位，
// 首次入班时不存在则由服务层创建
func (r *ProfileRepository) FindStudentByClassAndName(classID, fullName string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Where("class_id = ? AND full_name = ? AND role = ?", classID, fullName, model.Student).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) Update(profile *model.Profile) error {
	return r.db.Save(profile).Error
}

func (r *ProfileRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&model.Profile{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ProfileRepository) UpdateLastLogin(id string) error {
	return r.db.Model(&model.Profile{}).Where("id = ?", id).
		Update("last_login", gorm.Expr("NOW()")).Error
}

// CountActiveStudents 班级当前有效学生数，用于满员校验
func (r *ProfileRepository) CountActiveStudents(classID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Profile{}).
		Where("class_id = ? AND role = ? AND is_active = ?", classID, model.Student, true).
		Count(&count).Error
	return count, err
}

// List 带行级过滤的档案列表
func (r *ProfileRepository) List(scope func(*gorm.DB) *gorm.DB, page, limit int) ([]model.Profile, int64, error) {
	var profiles []model.Profile
	var total int64

	query := r.db.Model(&model.Profile{}).Scopes(scope)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&profiles).Error
	return profiles, total, err
}

func (r *ProfileRepository) ListStudentsByClass(classID string) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.Where("class_id = ? AND role = ?", classID, model.Student).
		Order("full_name ASC").
		Find(&profiles).Error
	return profiles, err
}
