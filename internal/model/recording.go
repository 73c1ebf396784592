package model

import "time"

type RecordingStatus string

const (
	RecordingUploaded   RecordingStatus = "uploaded"
	RecordingProcessing RecordingStatus = "processing"
	RecordingCompleted  RecordingStatus = "completed"
	RecordingFailed     RecordingStatus = "failed"
)

// swagger:model Recording
// Recording 学生的一次朗读录音提交（主表）。转写与评分字段
// 由后台转写任务异步回填
type Recording struct {
	UUIDBase
	StudentID       string          `gorm:"type:varchar(36);index;not null" json:"studentId"`
	ClassID         string          `gorm:"type:varchar(36);index;not null" json:"classId"`
	AssignmentID    *string         `gorm:"type:varchar(36);index" json:"assignmentId"`
	StoryID         string          `gorm:"size:100" json:"storyId"`
	Attempt         int             `gorm:"default:1" json:"attempt"`
	FilePath        string          `gorm:"size:512;not null" json:"filePath"`
	DurationSeconds float64         `json:"durationSeconds"`
	Status          RecordingStatus `gorm:"type:varchar(20);default:'uploaded';index" json:"status"`
	Transcript      string          `gorm:"type:text" json:"transcript"`
	Language        string          `gorm:"size:10" json:"language"`
	AccuracyScore   *float64        `json:"accuracyScore"`
	WordsPerMinute  *float64        `json:"wordsPerMinute"`
	PauseCount      *int            `json:"pauseCount"`
	FluencyScore    *float64        `json:"fluencyScore"`
	FeedbackData    string          `gorm:"type:text" json:"feedbackData"`
	Archived        bool            `gorm:"default:false;index" json:"archived"`
	SubmittedAt     time.Time       `json:"submittedAt"`
}

func (Recording) TableName() string {
	return "recordings"
}

// RecordingSubmission 历史遗留的提交表。提交 RPC 仍会双写一份瘦行，
// 评阅读取在主表无数据时回落到这里；新功能一律不依赖本表
type RecordingSubmission struct {
	UUIDBase
	RecordingID     *string   `gorm:"type:varchar(36);index" json:"recordingId"`
	StudentID       string    `gorm:"type:varchar(36);index;not null" json:"studentId"`
	ClassID         string    `gorm:"type:varchar(36);index;not null" json:"classId"`
	AssignmentID    *string   `gorm:"type:varchar(36)" json:"assignmentId"`
	StoryID         string    `gorm:"size:100" json:"storyId"`
	FilePath        string    `gorm:"size:512" json:"filePath"`
	DurationSeconds float64   `json:"durationSeconds"`
	Status          string    `gorm:"type:varchar(20)" json:"status"`
	Metadata        string    `gorm:"type:text" json:"metadata"`
	Archived        bool      `gorm:"default:false" json:"archived"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

func (RecordingSubmission) TableName() string {
	return "recording_submissions"
}
