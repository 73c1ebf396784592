package model

// swagger:model VisualPassword
// VisualPassword 低龄学生使用的图片密码目录（emoji + 名称 + 分类），
// 固定小目录，服务启动时播种
type VisualPassword struct {
	UUIDBase
	Name         string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Emoji        string `gorm:"size:10;not null" json:"emoji"`
	Category     string `gorm:"size:50" json:"category"`
	DisplayOrder int    `gorm:"default:0" json:"displayOrder"`
	IsActive     bool   `gorm:"default:true" json:"isActive"`
}

func (VisualPassword) TableName() string {
	return "visual_passwords"
}
