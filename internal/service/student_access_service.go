package service

import (
	"context"
	"time"

	"readaloud_backend/internal/model"
	"readaloud_backend/internal/session"
	"readaloud_backend/internal/util"
)

// 依赖收窄成小接口，场景测试不用起数据库
type classFinder interface {
	GetByAccessToken(token string) (*model.Class, error)
}

type studentDirectory interface {
	FindStudentByClassAndName(classID, fullName string) (*model.Profile, error)
	CountActiveStudents(classID string) (int64, error)
	Create(profile *model.Profile) error
	UpdateLastLogin(id string) error
}

// StudentAccessService 学生入班验证：入班码 + 姓名 + 图形密码。
// 首次入班即注册，之后图形密码必须与首次选择一致
type StudentAccessService struct {
	classes    classFinder
	students   studentDirectory
	sessions   session.Store
	sessionTTL time.Duration
}

func NewStudentAccessService(classes classFinder, students studentDirectory, sessions session.Store, sessionTTL time.Duration) *StudentAccessService {
	return &StudentAccessService{
		classes:    classes,
		students:   students,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// StudentAccessResult 验证通过后的会话与档案信息
type StudentAccessResult struct {
	Session    *session.Session
	Student    *model.Profile
	Class      *model.Class
	NewStudent bool
}

// Validate 完整入班流程。业务失败以哨兵错误返回，
// RPC 层统一转成 {success:false}
func (s *StudentAccessService) Validate(ctx context.Context, accessToken, studentName, visualPasswordID string) (*StudentAccessResult, error) {
	class, err := s.classes.GetByAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, util.ErrClassNotFound
	}
	if !class.IsActive || !class.AllowStudentAccess {
		return nil, util.ErrClassNotAccessible
	}

	student, err := s.students.FindStudentByClassAndName(class.ID, studentName)
	if err != nil {
		return nil, err
	}

	newStudent := false
	if student == nil {
		// 首次入班：校验容量后创建档案，绑定所选图形密码
		count, err := s.students.CountActiveStudents(class.ID)
		if err != nil {
			return nil, err
		}
		if class.MaxStudents > 0 && count >= int64(class.MaxStudents) {
			return nil, util.ErrClassFull
		}

		student = &model.Profile{
			FullName:         studentName,
			Role:             model.Student,
			ClassID:          &class.ID,
			VisualPasswordID: &visualPasswordID,
			IsActive:         true,
		}
		if err := s.students.Create(student); err != nil {
			// 两个首访并发时输者会撞 (class_id, full_name, role)
			// 唯一索引：重查一次，按赢者建好的档案走老学生流程
			existing, findErr := s.students.FindStudentByClassAndName(class.ID, studentName)
			if findErr != nil || existing == nil {
				return nil, err
			}
			student = existing
			if err := s.checkReturning(student, visualPasswordID); err != nil {
				return nil, err
			}
		} else {
			newStudent = true
		}
	} else {
		if err := s.checkReturning(student, visualPasswordID); err != nil {
			return nil, err
		}
	}

	sess, err := s.sessions.Create(ctx, student.ID, class.ID, s.sessionTTL)
	if err != nil {
		return nil, err
	}

	_ = s.students.UpdateLastLogin(student.ID)

	return &StudentAccessResult{
		Session:    sess,
		Student:    student,
		Class:      class,
		NewStudent: newStudent,
	}, nil
}

// checkReturning 老学生校验：停用即拒，图形密码必须与首次选择一致
func (s *StudentAccessService) checkReturning(student *model.Profile, visualPasswordID string) error {
	if !student.IsActive {
		return util.ErrStudentInactive
	}
	if student.VisualPasswordID == nil || *student.VisualPasswordID != visualPasswordID {
		return util.ErrWrongVisualPassword
	}
	return nil
}

// Logout 令牌即刻失效
func (s *StudentAccessService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
