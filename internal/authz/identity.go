package authz

// Kind 请求方的身份类别
type Kind string

const (
	KindAnonymous Kind = "anonymous"
	KindStudent   Kind = "student_session"
	KindTeacher   Kind = "teacher"
	KindAdmin     Kind = "admin"
)

// Identity 一次请求解析出的完整身份主张。
// 解析只在认证中间件里发生一次（特权读取，不经过策略过滤）；
// 策略判定只读取这里的字段，过程中绝不允许再查库。
// 算主张和过滤行彻底分开，策略函数才不会在判定中
// 触发又一轮带策略的查询而自我递归
type Identity struct {
	Kind          Kind
	ProfileID     string
	ClassID       string   // 学生会话绑定的班级
	SessionToken  string   // 学生会话令牌
	OwnedClassIDs []string // 教师名下班级，解析时一次性取出
}

func Anonymous() Identity {
	return Identity{Kind: KindAnonymous}
}

func AdminIdentity(profileID string) Identity {
	return Identity{Kind: KindAdmin, ProfileID: profileID}
}

func TeacherIdentity(profileID string, ownedClassIDs []string) Identity {
	return Identity{Kind: KindTeacher, ProfileID: profileID, OwnedClassIDs: ownedClassIDs}
}

func StudentIdentity(profileID, classID, sessionToken string) Identity {
	return Identity{
		Kind:         KindStudent,
		ProfileID:    profileID,
		ClassID:      classID,
		SessionToken: sessionToken,
	}
}

func (id Identity) IsStaff() bool {
	return id.Kind == KindTeacher || id.Kind == KindAdmin
}

func (id Identity) Authenticated() bool {
	return id.Kind != KindAnonymous
}

// OwnsClass 教师是否拥有某个班级。只查内存中的主张，不触库
func (id Identity) OwnsClass(classID string) bool {
	if id.Kind != KindTeacher {
		return false
	}
	for _, owned := range id.OwnedClassIDs {
		if owned == classID {
			return true
		}
	}
	return false
}
