package authz

import "gorm.io/gorm"

// 列表查询的行级过滤。与 Postgres RLS 的 SELECT 策略等价：
// 越权查询得到空集，而不是错误。用法：db.Scopes(authz.ScopeRecordings(actor))

func denyAll(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

func ScopeProfiles(actor Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Kind {
		case KindAdmin:
			return db
		case KindTeacher:
			if len(actor.OwnedClassIDs) == 0 {
				return db.Where("profiles.id = ?", actor.ProfileID)
			}
			return db.Where("profiles.id = ? OR profiles.class_id IN ?", actor.ProfileID, actor.OwnedClassIDs)
		case KindStudent:
			return db.Where("profiles.id = ?", actor.ProfileID)
		default:
			return denyAll(db)
		}
	}
}

func ScopeClasses(actor Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Kind {
		case KindAdmin:
			return db
		case KindTeacher:
			return db.Where("classes.teacher_id = ?", actor.ProfileID)
		case KindStudent:
			return db.Where("classes.id = ?", actor.ClassID)
		default:
			return denyAll(db)
		}
	}
}

func ScopeAssignments(actor Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Kind {
		case KindAdmin:
			return db
		case KindTeacher:
			if len(actor.OwnedClassIDs) == 0 {
				return denyAll(db)
			}
			return db.Where("assignments.class_id IN ?", actor.OwnedClassIDs)
		case KindStudent:
			// 学生只能列出本班已发布的任务
			return db.Where("assignments.class_id = ? AND assignments.is_published = ?", actor.ClassID, true)
		default:
			return denyAll(db)
		}
	}
}

func ScopeRecordings(actor Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Kind {
		case KindAdmin:
			return db
		case KindTeacher:
			if len(actor.OwnedClassIDs) == 0 {
				return denyAll(db)
			}
			return db.Where("recordings.class_id IN ?", actor.OwnedClassIDs)
		case KindStudent:
			return db.Where("recordings.student_id = ?", actor.ProfileID)
		default:
			return denyAll(db)
		}
	}
}
