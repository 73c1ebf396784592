package repository

import (
	"readaloud_backend/internal/model"

	"gorm.io/gorm"
)

type VisualPasswordRepository struct {
	db *gorm.DB
}

func NewVisualPasswordRepository(db *gorm.DB) *VisualPasswordRepository {
	return &VisualPasswordRepository{db: db}
}

// ListActive 登录界面的图形密码选项，公开可读
func (r *VisualPasswordRepository) ListActive() ([]model.VisualPassword, error) {
	var passwords []model.VisualPassword
	err := r.db.Where("is_active = ?", true).
		Order("display_order ASC").
		Find(&passwords).Error
	return passwords, err
}

func (r *VisualPasswordRepository) GetByID(id string) (*model.VisualPassword, error) {
	var vp model.VisualPassword
	err := r.db.Where("id = ?", id).First(&vp).Error
	if err != nil {
		return nil, err
	}
	return &vp, nil
}

func (r *VisualPasswordRepository) GetByName(name string) (*model.VisualPassword, error) {
	var vp model.VisualPassword
	err := r.db.Where("name = ? AND is_active = ?", name, true).First(&vp).Error
	if err != nil {
		return nil, err
	}
	return &vp, nil
}
