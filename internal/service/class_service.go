package service

import (
	"readaloud_backend/internal/authz"
	"readaloud_backend/internal/model"
	"readaloud_backend/internal/repository"
	"readaloud_backend/internal/util"
)

const accessTokenLength = 6

type ClassService struct {
	classRepo   *repository.ClassRepository
	profileRepo *repository.ProfileRepository
}

func NewClassService(classRepo *repository.ClassRepository, profileRepo *repository.ProfileRepository) *ClassService {
	return &ClassService{classRepo: classRepo, profileRepo: profileRepo}
}

type CreateClassInput struct {
	Name               string `json:"name" binding:"required"`
	GradeLevel         string `json:"gradeLevel"`
	MaxStudents        int    `json:"maxStudents"`
	AllowStudentAccess *bool  `json:"allowStudentAccess"`
}

func (s *ClassService) Create(actor authz.Identity, input CreateClassInput) (*model.Class, error) {
	if !actor.IsStaff() {
		return nil, util.ErrPermissionDenied
	}

	token, err := s.uniqueAccessToken()
	if err != nil {
		return nil, err
	}

	class := &model.Class{
		Name:               input.Name,
		GradeLevel:         input.GradeLevel,
		TeacherID:          actor.ProfileID,
		AccessToken:        token,
		AllowStudentAccess: true,
		IsActive:           true,
		MaxStudents:        input.MaxStudents,
	}
	if input.MaxStudents <= 0 {
		class.MaxStudents = 30
	}
	if input.AllowStudentAccess != nil {
		class.AllowStudentAccess = *input.AllowStudentAccess
	}

	if err := s.classRepo.Create(class); err != nil {
		return nil, err
	}
	return class, nil
}

// 入班码要求全库唯一，冲突就重摇
func (s *ClassService) uniqueAccessToken() (string, error) {
	for i := 0; i < 10; i++ {
		token := util.GenerateAccessToken(accessTokenLength)
		exists, err := s.classRepo.AccessTokenExists(token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}
	// 6 位 32 字符字母表，连撞 10 次基本不可能
	return util.GenerateAccessToken(accessTokenLength + 2), nil
}

func (s *ClassService) Get(actor authz.Identity, id string) (*model.Class, error) {
	class, err := s.classRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadClass(actor, class) {
		return nil, util.ErrPermissionDenied
	}
	return class, nil
}

func (s *ClassService) List(actor authz.Identity) ([]model.Class, error) {
	return s.classRepo.List(authz.ScopeClasses(actor))
}

type UpdateClassInput struct {
	Name               *string `json:"name"`
	GradeLevel         *string `json:"gradeLevel"`
	MaxStudents        *int    `json:"maxStudents"`
	AllowStudentAccess *bool   `json:"allowStudentAccess"`
	IsActive           *bool   `json:"isActive"`
}

func (s *ClassService) Update(actor authz.Identity, id string, input UpdateClassInput) (*model.Class, error) {
	class, err := s.classRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteClass(actor, class) {
		return nil, util.ErrPermissionDenied
	}

	if input.Name != nil {
		class.Name = *input.Name
	}
	if input.GradeLevel != nil {
		class.GradeLevel = *input.GradeLevel
	}
	if input.MaxStudents != nil {
		class.MaxStudents = *input.MaxStudents
	}
	if input.AllowStudentAccess != nil {
		class.AllowStudentAccess = *input.AllowStudentAccess
	}
	if input.IsActive != nil {
		class.IsActive = *input.IsActive
	}

	if err := s.classRepo.Update(class); err != nil {
		return nil, err
	}
	return class, nil
}

// RegenerateAccessToken 换入班码，旧码立即失效
func (s *ClassService) RegenerateAccessToken(actor authz.Identity, id string) (*model.Class, error) {
	class, err := s.classRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !authz.CanWriteClass(actor, class) {
		return nil, util.ErrPermissionDenied
	}

	token, err := s.uniqueAccessToken()
	if err != nil {
		return nil, err
	}
	class.AccessToken = token

	if err := s.classRepo.Update(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) Delete(actor authz.Identity, id string) error {
	class, err := s.classRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !authz.CanWriteClass(actor, class) {
		return util.ErrPermissionDenied
	}
	return s.classRepo.Delete(id)
}

func (s *ClassService) ListStudents(actor authz.Identity, classID string) ([]model.Profile, error) {
	class, err := s.classRepo.GetByID(classID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadClass(actor, class) {
		return nil, util.ErrPermissionDenied
	}
	return s.profileRepo.ListStudentsByClass(classID)
}

// SetStudentActive 教师停用/恢复本班学生
func (s *ClassService) SetStudentActive(actor authz.Identity, studentID string, active bool) error {
	student, err := s.profileRepo.GetByID(studentID)
	if err != nil {
		return err
	}
	if !authz.CanUpdateProfile(actor, student) {
		return util.ErrPermissionDenied
	}
	return s.profileRepo.UpdateFields(studentID, map[string]interface{}{"is_active": active})
}

// ListProfiles 档案列表。行级过滤决定可见范围：
// 管理员全量，教师只见自己和所带班级的学生
func (s *ClassService) ListProfiles(actor authz.Identity, page, limit int) ([]model.Profile, int64, error) {
	if !actor.IsStaff() {
		return nil, 0, util.ErrPermissionDenied
	}
	return s.profileRepo.List(authz.ScopeProfiles(actor), page, limit)
}

// ListWithCounts 管理端总览：班级 + 学生数 + 教师信息
func (s *ClassService) ListWithCounts(actor authz.Identity) ([]repository.ClassWithCounts, error) {
	if !actor.IsStaff() {
		return nil, util.ErrPermissionDenied
	}
	return s.classRepo.ListWithCounts(authz.ScopeClasses(actor))
}
