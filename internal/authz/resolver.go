package authz

import (
	"errors"

	"readaloud_backend/internal/model"
)

var ErrInactiveProfile = errors.New("profile is inactive")

// ClaimsSource 解析身份时的特权读取接口。
// 等价于旧库里的 security-definer 函数：以服务身份直读 profiles/classes，
// 不套任何行级过滤。只有 Resolver 允许持有它，策略函数拿不到
type ClaimsSource interface {
	StaffProfile(profileID string) (*model.Profile, error)
	OwnedClassIDs(teacherID string) ([]string, error)
}

type Resolver struct {
	src ClaimsSource
}

func NewResolver(src ClaimsSource) *Resolver {
	return &Resolver{src: src}
}

// ResolveStaff 把一个已通过 JWT 验证的教师/管理员 profile id
// 解析成完整 Identity。教师的班级清单在这里一次性取出，
// 之后的所有策略判定都不再回到数据库
func (r *Resolver) ResolveStaff(profileID string) (Identity, error) {
	profile, err := r.src.StaffProfile(profileID)
	if err != nil {
		return Anonymous(), err
	}
	if !profile.IsActive {
		return Anonymous(), ErrInactiveProfile
	}

	switch profile.Role {
	case model.Admin:
		return AdminIdentity(profile.ID), nil
	case model.Teacher:
		owned, err := r.src.OwnedClassIDs(profile.ID)
		if err != nil {
			return Anonymous(), err
		}
		return TeacherIdentity(profile.ID, owned), nil
	default:
		// 学生不走 JWT，只能通过会话令牌进来
		return Anonymous(), errors.New("profile role cannot authenticate with a staff token")
	}
}
