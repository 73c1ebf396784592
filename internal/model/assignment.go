package model

import "time"

// swagger:model Assignment
// Assignment 班级内的一次朗读任务。故事正文托管在内容服务，
// 这里只落库 story_id / story_title
type Assignment struct {
	UUIDBase
	ClassID     string     `gorm:"type:varchar(36);index;not null" json:"classId"`
	StoryID     string     `gorm:"size:100;not null" json:"storyId"`
	StoryTitle  string     `gorm:"size:255" json:"storyTitle"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	IsPublished bool       `gorm:"default:false;index" json:"isPublished"`
}

func (Assignment) TableName() string {
	return "assignments"
}
