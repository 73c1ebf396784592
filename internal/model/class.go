package model

// swagger:model Class
// Class 教师名下的班级。access_token 是分享给学生的入班码
type Class struct {
	UUIDBase
	Name               string `gorm:"size:100;not null" json:"name"`
	GradeLevel         string `gorm:"size:50" json:"gradeLevel"`
	TeacherID          string `gorm:"type:varchar(36);index;not null" json:"teacherId"`
	AccessToken        string `gorm:"size:20;uniqueIndex;not null" json:"accessToken"`
	AllowStudentAccess bool   `gorm:"default:true" json:"allowStudentAccess"`
	IsActive           bool   `gorm:"default:true" json:"isActive"`
	MaxStudents        int    `gorm:"default:30" json:"maxStudents"`
}

func (Class) TableName() string {
	return "classes"
}
