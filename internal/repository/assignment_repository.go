package repository

import (
	"readaloud_backend/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(assignment *model.Assignment) error {
	return r.db.Create(assignment).Error
}

func (r *AssignmentRepository) GetByID(id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.Where("id = ?", id).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepository) Update(assignment *model.Assignment) error {
	return r.db.Save(assignment).Error
}

func (r *AssignmentRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Assignment{}).Error
}

// List 带行级过滤的任务列表，可按班级再收窄
func (r *AssignmentRepository) List(scope func(*gorm.DB) *gorm.DB, classID string) ([]model.Assignment, error) {
	query := r.db.Model(&model.Assignment{}).Scopes(scope)
	if classID != "" {
		query = query.Where("assignments.class_id = ?", classID)
	}

	var assignments []model.Assignment
	err := query.Order("created_at DESC").Find(&assignments).Error
	return assignments, err
}
