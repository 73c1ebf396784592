package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"readaloud_backend/internal/authz"
	"readaloud_backend/internal/model"
	"readaloud_backend/internal/repository"
	"readaloud_backend/internal/util"
	"readaloud_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// transcriptionQueue 提交成功后把转写任务丢进去，可以为 nil（转写关闭）
type transcriptionQueue interface {
	Enqueue(ctx context.Context, job TranscriptionJob) error
}

// 依赖收窄成小接口，提交链路的场景测试不用起数据库
type recordingStore interface {
	Create(recording *model.Recording) error
	GetByID(id string) (*model.Recording, error)
	UpdateFields(id string, fields map[string]interface{}) error
	NextAttempt(studentID string, assignmentID *string) (int, error)
	List(scope func(*gorm.DB) *gorm.DB, classID, assignmentID string, page, limit int) ([]model.Recording, int64, error)
	ListByClassWithStudents(scope func(*gorm.DB) *gorm.DB, classID string, limit int) ([]repository.ClassRecordingRow, error)
	CreateSubmission(submission *model.RecordingSubmission) error
}

type profileFinder interface {
	GetByID(id string) (*model.Profile, error)
}

type classGetter interface {
	GetByID(id string) (*model.Class, error)
}

type assignmentFinder interface {
	GetByID(id string) (*model.Assignment, error)
}

type RecordingService struct {
	recordingRepo  recordingStore
	profileRepo    profileFinder
	classRepo      classGetter
	assignmentRepo assignmentFinder
	storage        *StorageService
	queue          transcriptionQueue
	probeAudio     func(path string) (*util.AudioInfo, error)
}

func NewRecordingService(
	recordingRepo recordingStore,
	profileRepo profileFinder,
	classRepo classGetter,
	assignmentRepo assignmentFinder,
	storage *StorageService,
	queue transcriptionQueue,
) *RecordingService {
	return &RecordingService{
		recordingRepo:  recordingRepo,
		profileRepo:    profileRepo,
		classRepo:      classRepo,
		assignmentRepo: assignmentRepo,
		storage:        storage,
		queue:          queue,
		probeAudio:     util.GetAudioInfo,
	}
}

// SubmitInput 学生提交录音。Metadata 是前端透传的 JSON，
// 里面可带 expected_text / language，用于转写评分
type SubmitInput struct {
	AssignmentID    *string
	StoryID         string
	DurationSeconds float64
	Metadata        string
	Filename        string
	File            io.Reader
	Size            int64
}

type submitMetadata struct {
	ExpectedText string `json:"expected_text"`
	Language     string `json:"language"`
}

// Submit 学生提交录音：校验身份与文件，按约定路径落盘，
// 双写旧表，最后入转写队列
func (s *RecordingService) Submit(ctx context.Context, actor authz.Identity, input SubmitInput) (*model.Recording, error) {
	if actor.Kind != authz.KindStudent {
		return nil, util.ErrPermissionDenied
	}

	// 会话有效不代表档案还有效：教师可能已停用该学生
	student, err := s.profileRepo.GetByID(actor.ProfileID)
	if err != nil {
		return nil, util.ErrStudentInactive
	}
	if !student.IsActive || student.ClassID == nil || *student.ClassID != actor.ClassID {
		return nil, util.ErrStudentInactive
	}

	var meta submitMetadata
	if input.Metadata != "" {
		_ = json.Unmarshal([]byte(input.Metadata), &meta)
	}

	storyID := input.StoryID
	if input.AssignmentID != nil {
		assignment, err := s.assignmentRepo.GetByID(*input.AssignmentID)
		if err != nil {
			return nil, util.ErrAssignmentNotFound
		}
		if !authz.CanReadAssignment(actor, assignment) {
			return nil, util.ErrPermissionDenied
		}
		if storyID == "" {
			storyID = assignment.StoryID
		}
	}

	ext := strings.ToLower(filepath.Ext(input.Filename))
	if ext == "" {
		ext = ".webm"
	}
	if !util.AllowedAudioExt(ext) {
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}

	// 深度嗅探文件头。MediaRecorder 的 webm 会被识别成 video/webm，
	// 部分浏览器只给 octet-stream，这两类都放行
	var head bytes.Buffer
	mimeType, err := util.ValidateMimeType(io.TeeReader(input.File, &head),
		[]string{util.MimeAudio, "video/webm", util.MimeOctetStream})
	if err != nil {
		return nil, err
	}
	contentType := mimeType
	if !util.IsAudio(contentType) {
		contentType = "audio/webm"
	}
	body := io.MultiReader(&head, input.File)

	attempt, err := s.recordingRepo.NextAttempt(actor.ProfileID, input.AssignmentID)
	if err != nil {
		return nil, err
	}

	filePath := buildRecordingPath(actor.ProfileID, input.AssignmentID, storyID, attempt, ext)

	if _, err := s.storage.Upload(ctx, filePath, body, input.Size, contentType); err != nil {
		return nil, err
	}

	duration := input.DurationSeconds
	if provider, ok := s.storage.Provider.(*LocalStorageProvider); ok && s.probeAudio != nil {
		// 本地存储时用 ffmpeg 实测时长，防止客户端乱报
		if info, err := s.probeAudio(filepath.Join(provider.Config.LocalPath, filePath)); err == nil && info.Duration > 0 {
			duration = info.Duration
		}
	}

	recording := &model.Recording{
		StudentID:       actor.ProfileID,
		ClassID:         actor.ClassID,
		AssignmentID:    input.AssignmentID,
		StoryID:         storyID,
		Attempt:         attempt,
		FilePath:        filePath,
		DurationSeconds: duration,
		Status:          model.RecordingUploaded,
		Language:        meta.Language,
		SubmittedAt:     time.Now(),
	}
	if err := s.recordingRepo.Create(recording); err != nil {
		return nil, err
	}

	// 旧表双写，老后台还在读 recording_submissions
	submission := &model.RecordingSubmission{
		RecordingID:     &recording.ID,
		StudentID:       recording.StudentID,
		ClassID:         recording.ClassID,
		AssignmentID:    input.AssignmentID,
		StoryID:         storyID,
		FilePath:        filePath,
		DurationSeconds: duration,
		Status:          string(model.RecordingUploaded),
		Metadata:        input.Metadata,
		SubmittedAt:     recording.SubmittedAt,
	}
	if err := s.recordingRepo.CreateSubmission(submission); err != nil {
		logger.Log.Warn("legacy submission write failed",
			zap.String("recordingId", recording.ID), zap.Error(err))
	}

	if s.queue != nil {
		job := TranscriptionJob{
			RecordingID:  recording.ID,
			FilePath:     filePath,
			Language:     meta.Language,
			ExpectedText: meta.ExpectedText,
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			logger.Log.Error("enqueue transcription failed",
				zap.String("recordingId", recording.ID), zap.Error(err))
		}
	}

	return recording, nil
}

func buildRecordingPath(studentID string, assignmentID *string, storyID string, attempt int, ext string) string {
	key := storyID
	if assignmentID != nil {
		key = *assignmentID
	}
	if key == "" {
		key = "practice"
	}
	return fmt.Sprintf("recordings/%s/%s-%d-%d%s", studentID, key, attempt, time.Now().Unix(), ext)
}

func (s *RecordingService) Get(actor authz.Identity, id string) (*model.Recording, error) {
	recording, err := s.recordingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadRecording(actor, recording) {
		return nil, util.ErrPermissionDenied
	}
	return recording, nil
}

func (s *RecordingService) List(actor authz.Identity, classID, assignmentID string, page, limit int) ([]model.Recording, int64, error) {
	return s.recordingRepo.List(authz.ScopeRecordings(actor), classID, assignmentID, page, limit)
}

// ListClassWithStudents 评阅视图：某班全部录音带学生姓名
func (s *RecordingService) ListClassWithStudents(actor authz.Identity, classID string, limit int) ([]repository.ClassRecordingRow, error) {
	class, err := s.classRepo.GetByID(classID)
	if err != nil {
		return nil, util.ErrClassNotFound
	}
	if !authz.CanReadClass(actor, class) {
		return nil, util.ErrPermissionDenied
	}
	return s.recordingRepo.ListByClassWithStudents(authz.ScopeRecordings(actor), classID, limit)
}

// Status 转写进度轮询，前端提交后定时查
func (s *RecordingService) Status(actor authz.Identity, id string) (*model.Recording, error) {
	return s.Get(actor, id)
}

type ReviewInput struct {
	FeedbackData  *string  `json:"feedbackData"`
	AccuracyScore *float64 `json:"accuracyScore"` // 教师人工改分
	Archived      *bool    `json:"archived"`
}

// Review 教师评阅：写反馈、人工改分或归档
func (s *RecordingService) Review(actor authz.Identity, id string, input ReviewInput) (*model.Recording, error) {
	recording, err := s.recordingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() || !authz.CanWriteRecording(actor, recording) {
		return nil, util.ErrPermissionDenied
	}

	fields := map[string]interface{}{}
	if input.FeedbackData != nil {
		fields["feedback_data"] = *input.FeedbackData
	}
	if input.AccuracyScore != nil {
		fields["accuracy_score"] = *input.AccuracyScore
	}
	if input.Archived != nil {
		fields["archived"] = *input.Archived
	}
	if len(fields) == 0 {
		return recording, nil
	}

	if err := s.recordingRepo.UpdateFields(id, fields); err != nil {
		return nil, err
	}
	return s.recordingRepo.GetByID(id)
}

// OpenFile 回放音频。学生走路径规则，教师/管理员走行级判定
func (s *RecordingService) OpenFile(ctx context.Context, actor authz.Identity, id string) (io.ReadCloser, *model.Recording, error) {
	recording, err := s.recordingRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	allowed := authz.CanReadRecordingFile(actor, recording.FilePath)
	if !allowed && actor.IsStaff() {
		allowed = authz.CanReadRecording(actor, recording)
	}
	if !allowed {
		return nil, nil, util.ErrPermissionDenied
	}

	reader, err := s.storage.Open(ctx, recording.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return reader, recording, nil
}
