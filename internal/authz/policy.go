package authz

import (
	"strings"

	"readaloud_backend/internal/model"
)

// 行级策略。每张表上挂若干条宽容（permissive）策略，按 OR 叠加，
// 与 Postgres 合并 permissive policy 的语义一致：admin-bypass、
// owner-access、role-scoped-access 各自独立成条，而不是在一条策略里写分支。
// 所有判定都是纯函数：输入 Identity 和目标行，输出 bool，无任何 IO

type policy func(actor Identity) bool

func anyOf(actor Identity, policies ...policy) bool {
	for _, p := range policies {
		if p(actor) {
			return true
		}
	}
	return false
}

func adminBypass(a Identity) bool {
	return a.Kind == KindAdmin
}

// ---- profiles ----

func CanReadProfile(actor Identity, p *model.Profile) bool {
	return anyOf(actor,
		adminBypass,
		// 本人
		func(a Identity) bool { return a.Authenticated() && a.ProfileID == p.ID },
		// 教师可见自己班级的学生
		func(a Identity) bool {
			return p.ClassID != nil && a.OwnsClass(*p.ClassID)
		},
	)
}

func CanUpdateProfile(actor Identity, p *model.Profile) bool {
	return anyOf(actor,
		adminBypass,
		func(a Identity) bool { return a.Authenticated() && a.ProfileID == p.ID },
		// 教师可以停用/改名自己班级的学生档案
		func(a Identity) bool {
			return a.Kind == KindTeacher && p.Role == model.Student &&
				p.ClassID != nil && a.OwnsClass(*p.ClassID)
		},
	)
}

// 只有管理员能创建教师账号；教师只能在自己班里建学生档案
func CanCreateProfile(actor Identity, p *model.Profile) bool {
	return anyOf(actor,
		adminBypass,
		func(a Identity) bool {
			return a.Kind == KindTeacher && p.Role == model.Student &&
				p.ClassID != nil && a.OwnsClass(*p.ClassID)
		},
	)
}

// ---- classes ----

func CanReadClass(actor Identity, c *model.Class) bool {
	return anyOf(actor,
		adminBypass,
		func(a Identity) bool { return a.Kind == KindTeacher && c.TeacherID == a.ProfileID },
		// 学生会话可见自己所在的班级
		func(a Identity) bool { return a.Kind == KindStudent && a.ClassID == c.ID },
	)
}

func CanWriteClass(actor Identity, c *model.Class) bool {
	return anyOf(actor,
		adminBypass,
		func(a Identity) bool { return a.Kind == KindTeacher && c.TeacherID == a.ProfileID },
	)
}

// ---- assignments ----

func CanReadAssignment(actor Identity, asg *model.Assignment) bool {
	return anyOf(actor,
		adminBypass,
		func(a Identity) bool { return a.OwnsClass(asg.ClassID) },
		// 学生只能看到本班已发布的任务
		func(a Identity) bool {
			return a.Kind == KindStudent && a.ClassID == asg.ClassID && asg.IsPublished
		},
	)
}

func CanWriteAssignment(actor Identity, asg *model.Assignment) bool {
	return anyOf(actor,
		adminBypass,
		func(a Identity) bool { return a.OwnsClass(asg.ClassID) },
	)
}

// ---- recordings ----

func CanReadRecording(actor Identity, rec *model.Recording) bool {
	return anyOf(actor,
		adminBypass,
		func(a Identity) bool { return a.OwnsClass(rec.ClassID) },
		func(a Identity) bool { return a.Kind == KindStudent && a.ProfileID == rec.StudentID },
	)
}

// 学生只能提交属于自己的录音；教师评阅自己班级的
func CanWriteRecording(actor Identity, rec *model.Recording) bool {
	return anyOf(actor,
		adminBypass,
		func(a Identity) bool { return a.OwnsClass(rec.ClassID) },
		func(a Identity) bool {
			return a.Kind == KindStudent && a.ProfileID == rec.StudentID && a.ClassID == rec.ClassID
		},
	)
}

// ---- 存储路径 ----

// CanReadRecordingFile 录音文件按路径约定
// recordings/{student_id}/{assignment}-{attempt}-{ts}.ext 存放，
// 学生读取时第一段必须与自己的身份匹配。
// 教师/管理员不走路径规则，由调用方取出对应 Recording 行后
// 用 CanReadRecording 做行级判定
func CanReadRecordingFile(actor Identity, filePath string) bool {
	if actor.Kind == KindAdmin {
		return true
	}
	parts := strings.Split(strings.TrimPrefix(filePath, "recordings/"), "/")
	if len(parts) < 2 {
		return false
	}
	return actor.Kind == KindStudent && actor.ProfileID == parts[0]
}
