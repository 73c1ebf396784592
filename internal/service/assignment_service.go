package service

import (
	"readaloud_backend/internal/authz"
	"readaloud_backend/internal/model"
	"readaloud_backend/internal/repository"
	"readaloud_backend/internal/util"
	"time"
)

type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
	classRepo      *repository.ClassRepository
}

func NewAssignmentService(assignmentRepo *repository.AssignmentRepository, classRepo *repository.ClassRepository) *AssignmentService {
	return &AssignmentService{assignmentRepo: assignmentRepo, classRepo: classRepo}
}

type CreateAssignmentInput struct {
	ClassID     string     `json:"classId" binding:"required"`
	StoryID     string     `json:"storyId" binding:"required"`
	StoryTitle  string     `json:"storyTitle"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	IsPublished bool       `json:"isPublished"`
}

func (s *AssignmentService) Create(actor authz.Identity, input CreateAssignmentInput) (*model.Assignment, error) {
	assignment := &model.Assignment{
		ClassID:     input.ClassID,
		StoryID:     input.StoryID,
		StoryTitle:  input.StoryTitle,
		Description: input.Description,
		DueDate:     input.DueDate,
		IsPublished: input.IsPublished,
	}
	if !authz.CanWriteAssignment(actor, assignment) {
		return nil, util.ErrPermissionDenied
	}

	// 班级必须真实存在，外键之外再挡一层
	if _, err := s.classRepo.GetByID(input.ClassID); err != nil {
		return nil, util.ErrClassNotFound
	}

	if err := s.assignmentRepo.Create(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) Get(actor authz.Identity, id string) (*model.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadAssignment(actor, assignment) {
		return nil, util.ErrPermissionDenied
	}
	return assignment, nil
}

func (s *AssignmentService) List(actor authz.Identity, classID string) ([]model.Assignment, error) {
	return s.assignmentRepo.List(authz.ScopeAssignments(actor), classID)
}

type UpdateAssignmentInput struct {
	StoryTitle  *string    `json:"storyTitle"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	IsPublished *bool      `json:"isPublished"`
}

func (s *AssignmentService) Update(actor authz.Identity, id string, input UpdateAssignmentInput) (*model.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteAssignment(actor, assignment) {
		return nil, util.ErrPermissionDenied
	}

	if input.StoryTitle != nil {
		assignment.StoryTitle = *input.StoryTitle
	}
	if input.Description != nil {
		assignment.Description = *input.Description
	}
	if input.DueDate != nil {
		assignment.DueDate = input.DueDate
	}
	if input.IsPublished != nil {
		assignment.IsPublished = *input.IsPublished
	}

	if err := s.assignmentRepo.Update(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) Delete(actor authz.Identity, id string) error {
	assignment, err := s.assignmentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !authz.CanWriteAssignment(actor, assignment) {
		return util.ErrPermissionDenied
	}
	return s.assignmentRepo.Delete(id)
}
