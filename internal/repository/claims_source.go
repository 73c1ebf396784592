package repository

import (
	"readaloud_backend/internal/model"
)

// ClaimsRepo 身份解析的特权数据源：不经过任何行级过滤，
// 只在请求进入时解析一次身份用，之后的策略判定不再回到这里
type ClaimsRepo struct {
	profiles *ProfileRepository
	classes  *ClassRepository
}

func NewClaimsRepo(profiles *ProfileRepository, classes *ClassRepository) *ClaimsRepo {
	return &ClaimsRepo{profiles: profiles, classes: classes}
}

func (r *ClaimsRepo) StaffProfile(profileID string) (*model.Profile, error) {
	return r.profiles.GetByID(profileID)
}

func (r *ClaimsRepo) OwnedClassIDs(teacherID string) ([]string, error) {
	return r.classes.ListIDsByTeacher(teacherID)
}
