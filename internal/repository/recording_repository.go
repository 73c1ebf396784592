package repository

import (
	"readaloud_backend/internal/model"

	"gorm.io/gorm"
)

type RecordingRepository struct {
	db *gorm.DB
}

func NewRecordingRepository(db *gorm.DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

func (r *RecordingRepository) Create(recording *model.Recording) error {
	return r.db.Create(recording).Error
}

func (r *RecordingRepository) GetByID(id string) (*model.Recording, error) {
	var recording model.Recording
	err := r.db.Where("id = ?", id).First(&recording).Error
	if err != nil {
		return nil, err
	}
	return &recording, nil
}

func (r *RecordingRepository) Update(recording *model.Recording) error {
	return r.db.Save(recording).Error
}

func (r *RecordingRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&model.Recording{}).Where("id = ?", id).Updates(fields).Error
}

func (r *RecordingRepository) UpdateStatus(id string, status model.RecordingStatus) error {
	return r.db.Model(&model.Recording{}).Where("id = ?", id).
		Update("status", status).Error
}

// NextAttempt 同一学生同一任务的下一次尝试序号
func (r *RecordingRepository) NextAttempt(studentID string, assignmentID *string) (int, error) {
	query := r.db.Model(&model.Recording{}).Where("student_id = ?", studentID)
	if assignmentID != nil {
		query = query.Where("assignment_id = ?", *assignmentID)
	} else {
		query = query.Where("assignment_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// List 带行级过滤的录音列表
func (r *RecordingRepository) List(scope func(*gorm.DB) *gorm.DB, classID, assignmentID string, page, limit int) ([]model.Recording, int64, error) {
	query := r.db.Model(&model.Recording{}).Scopes(scope).
		Where("recordings.archived = ?", false)
	if classID != "" {
		query = query.Where("recordings.class_id = ?", classID)
	}
	if assignmentID != "" {
		query = query.Where("recordings.assignment_id = ?", assignmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recordings []model.Recording
	err := query.Order("submitted_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&recordings).Error
	return recordings, total, err
}

// ClassRecordingRow 评阅列表行：录音 + 学生信息一次查出
type ClassRecordingRow struct {
	model.Recording
	StudentName     string  `json:"student_name"`
	StudentUsername *string `json:"student_username"`
}

// ListByClassWithStudents 教师评阅视图，JOIN 学生档案拿姓名
func (r *RecordingRepository) ListByClassWithStudents(scope func(*gorm.DB) *gorm.DB, classID string, limit int) ([]ClassRecordingRow, error) {
	query := r.db.Model(&model.Recording{}).
		Scopes(scope).
		Select("recordings.*, s.full_name AS student_name, s.username AS student_username").
		Joins("LEFT JOIN profiles s ON s.id = recordings.student_id").
		Where("recordings.class_id = ? AND recordings.archived = ?", classID, false).
		Order("recordings.submitted_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []ClassRecordingRow
	err := query.Scan(&rows).Error
	return rows, err
}

// ListPendingTranscription 启动时回捞：进程崩溃后滞留在
// uploaded/processing 状态的录音重新入队
func (r *RecordingRepository) ListPendingTranscription(limit int) ([]model.Recording, error) {
	var recordings []model.Recording
	err := r.db.Where("status IN ?", []model.RecordingStatus{
		model.RecordingUploaded, model.RecordingProcessing,
	}).Order("submitted_at ASC").Limit(limit).Find(&recordings).Error
	return recordings, err
}

// ---- 旧表双写 ----

func (r *RecordingRepository) CreateSubmission(submission *model.RecordingSubmission) error {
	return r.db.Create(submission).Error
}

func (r *RecordingRepository) UpdateSubmissionStatusByRecording(recordingID string, status string) error {
	return r.db.Model(&model.RecordingSubmission{}).
		Where("recording_id = ?", recordingID).
		Update("status", status).Error
}
