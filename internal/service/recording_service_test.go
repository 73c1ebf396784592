package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"readaloud_backend/internal/authz"
	"readaloud_backend/internal/model"
	"readaloud_backend/internal/repository"
	"readaloud_backend/internal/util"

	"gorm.io/gorm"
)

type fakeRecordingStore struct {
	attempt     int
	recordings  []*model.Recording
	submissions []*model.RecordingSubmission
}

func (f *fakeRecordingStore) Create(rec *model.Recording) error {
	rec.ID = fmt.Sprintf("rec-%d", len(f.recordings)+1)
	f.recordings = append(f.recordings, rec)
	return nil
}

func (f *fakeRecordingStore) GetByID(id string) (*model.Recording, error) {
	for _, r := range f.recordings {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRecordingStore) UpdateFields(id string, fields map[string]interface{}) error {
	return nil
}

func (f *fakeRecordingStore) NextAttempt(studentID string, assignmentID *string) (int, error) {
	return f.attempt, nil
}

func (f *fakeRecordingStore) List(scope func(*gorm.DB) *gorm.DB, classID, assignmentID string, page, limit int) ([]model.Recording, int64, error) {
	return nil, 0, nil
}

func (f *fakeRecordingStore) ListByClassWithStudents(scope func(*gorm.DB) *gorm.DB, classID string, limit int) ([]repository.ClassRecordingRow, error) {
	return nil, nil
}

func (f *fakeRecordingStore) CreateSubmission(sub *model.RecordingSubmission) error {
	f.submissions = append(f.submissions, sub)
	return nil
}

type fakeProfileFinder struct {
	profiles map[string]*model.Profile
}

func (f *fakeProfileFinder) GetByID(id string) (*model.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeClassGetter struct{}

func (f *fakeClassGetter) GetByID(id string) (*model.Class, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeAssignmentFinder struct {
	assignments map[string]*model.Assignment
}

func (f *fakeAssignmentFinder) GetByID(id string) (*model.Assignment, error) {
	if a, ok := f.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// memUploadProvider 进程内存储，记录上传内容和声明的 Content-Type
type memUploadProvider struct {
	uploads      map[string][]byte
	contentTypes map[string]string
}

func newMemUploadProvider() *memUploadProvider {
	return &memUploadProvider{
		uploads:      map[string][]byte{},
		contentTypes: map[string]string{},
	}
}

func (p *memUploadProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	p.uploads[filename] = data
	p.contentTypes[filename] = contentType
	return filename, nil
}

func (p *memUploadProvider) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	data, ok := p.uploads[filename]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", filename)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (p *memUploadProvider) Delete(ctx context.Context, filename string) error {
	delete(p.uploads, filename)
	return nil
}

func (p *memUploadProvider) GetURL(filename string) string {
	return "/" + filename
}

type capturedQueue struct {
	jobs []TranscriptionJob
}

func (q *capturedQueue) Enqueue(ctx context.Context, job TranscriptionJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

type submitFixture struct {
	svc      *RecordingService
	store    *fakeRecordingStore
	profiles *fakeProfileFinder
	provider *memUploadProvider
	queue    *capturedQueue
}

func newSubmitFixture() *submitFixture {
	classID := "class-1"
	profiles := &fakeProfileFinder{profiles: map[string]*model.Profile{
		"stu-1": {
			UUIDBase: model.UUIDBase{ID: "stu-1"},
			FullName: "Emma",
			Role:     model.Student,
			ClassID:  &classID,
			IsActive: true,
		},
	}}
	assignments := &fakeAssignmentFinder{assignments: map[string]*model.Assignment{
		"asg-1": {
			UUIDBase:    model.UUIDBase{ID: "asg-1"},
			ClassID:     "class-1",
			StoryID:     "story-7",
			IsPublished: true,
		},
		"asg-draft": {
			UUIDBase:    model.UUIDBase{ID: "asg-draft"},
			ClassID:     "class-1",
			StoryID:     "story-8",
			IsPublished: false,
		},
	}}

	store := &fakeRecordingStore{attempt: 3}
	provider := newMemUploadProvider()
	queue := &capturedQueue{}
	svc := NewRecordingService(store, profiles, &fakeClassGetter{}, assignments,
		&StorageService{Provider: provider}, queue)

	return &submitFixture{svc: svc, store: store, profiles: profiles, provider: provider, queue: queue}
}

func emmaIdentity() authz.Identity {
	return authz.StudentIdentity("stu-1", "class-1", "tok-1")
}

func webmInput(filename string) SubmitInput {
	// 超过嗅探窗口（512 字节），顺带验证 TeeReader 之后正文无损
	payload := bytes.Repeat([]byte{0x1a, 0x45, 0xdf, 0xa3}, 300)
	return SubmitInput{
		StoryID:         "story-7",
		DurationSeconds: 12.5,
		Filename:        filename,
		File:            bytes.NewReader(payload),
		Size:            int64(len(payload)),
	}
}

func TestSubmitRejectsNonStudent(t *testing.T) {
	f := newSubmitFixture()

	_, err := f.svc.Submit(context.Background(), authz.TeacherIdentity("t-1", []string{"class-1"}), webmInput("read.webm"))
	if !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestSubmitRejectsDeactivatedStudent(t *testing.T) {
	f := newSubmitFixture()
	// 会话还活着，但教师已在中途停用该学生
	f.profiles.profiles["stu-1"].IsActive = false

	_, err := f.svc.Submit(context.Background(), emmaIdentity(), webmInput("read.webm"))
	if !errors.Is(err, util.ErrStudentInactive) {
		t.Fatalf("err = %v, want ErrStudentInactive", err)
	}
	if len(f.store.recordings) != 0 || len(f.provider.uploads) != 0 {
		t.Error("rejected submission must not write anything")
	}
}

func TestSubmitRejectsClassMismatch(t *testing.T) {
	f := newSubmitFixture()
	// 学生被移到了别的班，旧会话的 class 绑定失效
	other := "class-9"
	f.profiles.profiles["stu-1"].ClassID = &other

	_, err := f.svc.Submit(context.Background(), emmaIdentity(), webmInput("read.webm"))
	if !errors.Is(err, util.ErrStudentInactive) {
		t.Fatalf("err = %v, want ErrStudentInactive", err)
	}
	if len(f.store.recordings) != 0 {
		t.Error("mismatched class must not create a recording")
	}
}

func TestSubmitRejectsUnknownExtension(t *testing.T) {
	f := newSubmitFixture()

	_, err := f.svc.Submit(context.Background(), emmaIdentity(), webmInput("notes.txt"))
	if err == nil {
		t.Fatal("txt upload accepted")
	}
	if len(f.provider.uploads) != 0 {
		t.Error("rejected file reached storage")
	}
}

func TestSubmitRejectsUnpublishedAssignment(t *testing.T) {
	f := newSubmitFixture()

	input := webmInput("read.webm")
	asgID := "asg-draft"
	input.AssignmentID = &asgID

	_, err := f.svc.Submit(context.Background(), emmaIdentity(), input)
	if !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestSubmitWritesBothTablesAndQueues(t *testing.T) {
	f := newSubmitFixture()

	input := webmInput("read.webm")
	input.Metadata = `{"expected_text":"the cat sat on the mat","language":"en"}`

	recording, err := f.svc.Submit(context.Background(), emmaIdentity(), input)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if recording.Status != model.RecordingUploaded {
		t.Errorf("status = %q", recording.Status)
	}
	if recording.Attempt != 3 {
		t.Errorf("attempt = %d, want 3", recording.Attempt)
	}
	if recording.ClassID != "class-1" || recording.StudentID != "stu-1" {
		t.Errorf("recording bound to %s/%s", recording.ClassID, recording.StudentID)
	}
	if recording.DurationSeconds != 12.5 {
		t.Errorf("duration = %v", recording.DurationSeconds)
	}
	if !strings.HasPrefix(recording.FilePath, "recordings/stu-1/story-7-3-") {
		t.Errorf("file path = %q", recording.FilePath)
	}

	// 嗅探用 TeeReader 读过一段，拼回后落盘内容必须完整
	if data := f.provider.uploads[recording.FilePath]; len(data) != 1200 {
		t.Errorf("stored %d bytes, want 1200", len(data))
	}

	// 旧表双写
	if len(f.store.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(f.store.submissions))
	}
	sub := f.store.submissions[0]
	if sub.RecordingID == nil || *sub.RecordingID != recording.ID {
		t.Error("legacy row not linked to the recording")
	}
	if sub.Metadata != input.Metadata {
		t.Error("legacy row lost the raw metadata")
	}

	// 转写任务带上期望文本
	if len(f.queue.jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(f.queue.jobs))
	}
	job := f.queue.jobs[0]
	if job.RecordingID != recording.ID || job.ExpectedText != "the cat sat on the mat" || job.Language != "en" {
		t.Errorf("job = %+v", job)
	}
}
