package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"readaloud_backend/internal/model"
	"readaloud_backend/internal/session"
	"readaloud_backend/internal/util"
)

type fakeClassFinder struct {
	classes map[string]*model.Class
}

func (f *fakeClassFinder) GetByAccessToken(token string) (*model.Class, error) {
	return f.classes[token], nil
}

type fakeStudentDirectory struct {
	students []*model.Profile
	nextID   int

	// 模拟并发首访：Create 撞唯一索引报错，赢者的档案在报错前已落库
	createErr  error
	raceWinner *model.Profile
}

func (f *fakeStudentDirectory) FindStudentByClassAndName(classID, fullName string) (*model.Profile, error) {
	for _, s := range f.students {
		if s.ClassID != nil && *s.ClassID == classID && s.FullName == fullName {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStudentDirectory) CountActiveStudents(classID string) (int64, error) {
	var n int64
	for _, s := range f.students {
		if s.ClassID != nil && *s.ClassID == classID && s.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeStudentDirectory) Create(profile *model.Profile) error {
	if f.createErr != nil {
		if f.raceWinner != nil {
			f.students = append(f.students, f.raceWinner)
			f.raceWinner = nil
		}
		return f.createErr
	}
	f.nextID++
	profile.ID = fmt.Sprintf("stu-%d", f.nextID)
	f.students = append(f.students, profile)
	return nil
}

func (f *fakeStudentDirectory) UpdateLastLogin(id string) error { return nil }

func newAccessFixture() (*StudentAccessService, *fakeStudentDirectory) {
	classes := &fakeClassFinder{classes: map[string]*model.Class{
		"ABC123": {
			UUIDBase:           model.UUIDBase{ID: "class-1"},
			Name:               "Grade 2 Reading",
			AccessToken:        "ABC123",
			AllowStudentAccess: true,
			IsActive:           true,
			MaxStudents:        2,
		},
		"CLOSED": {
			UUIDBase:           model.UUIDBase{ID: "class-2"},
			AccessToken:        "CLOSED",
			AllowStudentAccess: false,
			IsActive:           true,
			MaxStudents:        30,
		},
	}}
	students := &fakeStudentDirectory{}
	svc := NewStudentAccessService(classes, students, session.NewMemoryStore(), 8*time.Hour)
	return svc, students
}

func TestValidateFirstVisitCreatesStudent(t *testing.T) {
	svc, students := newAccessFixture()

	result, err := svc.Validate(context.Background(), "ABC123", "Emma", "vp-cat")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.NewStudent {
		t.Error("first visit should flag a new student")
	}
	if result.Session == nil || result.Session.Token == "" {
		t.Fatal("no session issued")
	}
	if result.Session.ClassID != "class-1" {
		t.Errorf("session class = %q", result.Session.ClassID)
	}
	if len(students.students) != 1 {
		t.Fatalf("students created = %d", len(students.students))
	}
	if vp := students.students[0].VisualPasswordID; vp == nil || *vp != "vp-cat" {
		t.Error("visual password not bound on first visit")
	}
}

func TestValidateReturningStudentPasswordCheck(t *testing.T) {
	svc, _ := newAccessFixture()
	ctx := context.Background()

	if _, err := svc.Validate(ctx, "ABC123", "Emma", "vp-cat"); err != nil {
		t.Fatalf("first visit: %v", err)
	}

	// 同一个图形密码可以再次进入
	result, err := svc.Validate(ctx, "ABC123", "Emma", "vp-cat")
	if err != nil {
		t.Fatalf("returning visit: %v", err)
	}
	if result.NewStudent {
		t.Error("returning visit must not create a new student")
	}

	// 换一个图形密码必须被拒
	_, err = svc.Validate(ctx, "ABC123", "Emma", "vp-dog")
	if !errors.Is(err, util.ErrWrongVisualPassword) {
		t.Fatalf("wrong password: err = %v", err)
	}
}

func TestValidateRejectsBadToken(t *testing.T) {
	svc, _ := newAccessFixture()

	_, err := svc.Validate(context.Background(), "NOPE99", "Emma", "vp-cat")
	if !errors.Is(err, util.ErrClassNotFound) {
		t.Fatalf("err = %v, want ErrClassNotFound", err)
	}
}

func TestValidateRejectsClosedClass(t *testing.T) {
	svc, _ := newAccessFixture()

	_, err := svc.Validate(context.Background(), "CLOSED", "Emma", "vp-cat")
	if !errors.Is(err, util.ErrClassNotAccessible) {
		t.Fatalf("err = %v, want ErrClassNotAccessible", err)
	}
}

func TestValidateRejectsFullClass(t *testing.T) {
	svc, _ := newAccessFixture()
	ctx := context.Background()

	if _, err := svc.Validate(ctx, "ABC123", "Emma", "vp-cat"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Validate(ctx, "ABC123", "Liam", "vp-dog"); err != nil {
		t.Fatal(err)
	}

	// MaxStudents = 2，第三个新学生进不来
	_, err := svc.Validate(ctx, "ABC123", "Noah", "vp-star")
	if !errors.Is(err, util.ErrClassFull) {
		t.Fatalf("err = %v, want ErrClassFull", err)
	}

	// 已在班的学生不受满员影响
	if _, err := svc.Validate(ctx, "ABC123", "Emma", "vp-cat"); err != nil {
		t.Fatalf("existing student blocked by capacity: %v", err)
	}
}

func TestValidateRejectsDeactivatedStudent(t *testing.T) {
	svc, students := newAccessFixture()
	ctx := context.Background()

	if _, err := svc.Validate(ctx, "ABC123", "Emma", "vp-cat"); err != nil {
		t.Fatal(err)
	}
	students.students[0].IsActive = false

	_, err := svc.Validate(ctx, "ABC123", "Emma", "vp-cat")
	if !errors.Is(err, util.ErrStudentInactive) {
		t.Fatalf("err = %v, want ErrStudentInactive", err)
	}
}

func TestValidateFirstVisitRaceReusesWinner(t *testing.T) {
	svc, students := newAccessFixture()
	classID := "class-1"
	vp := "vp-cat"
	students.createErr = errors.New(`duplicate key value violates unique constraint "uniq_class_student_name"`)
	students.raceWinner = &model.Profile{
		UUIDBase: model.UUIDBase{ID: "stu-winner"}, FullName: "Emma",
		Role: model.Student, ClassID: &classID, VisualPasswordID: &vp, IsActive: true,
	}

	result, err := svc.Validate(context.Background(), "ABC123", "Emma", "vp-cat")
	if err != nil {
		t.Fatalf("Validate after duplicate key: %v", err)
	}
	if result.NewStudent {
		t.Error("race loser must not report a new student")
	}
	if result.Student.ID != "stu-winner" {
		t.Errorf("student = %q, want the winner's profile", result.Student.ID)
	}
	if len(students.students) != 1 {
		t.Fatalf("profiles = %d, want exactly 1", len(students.students))
	}
}

func TestValidateFirstVisitRaceWrongPassword(t *testing.T) {
	// 输者选的图形密码和赢者绑定的不一致，按老学生规则拒绝
	svc, students := newAccessFixture()
	classID := "class-1"
	vp := "vp-cat"
	students.createErr = errors.New("duplicate key value violates unique constraint")
	students.raceWinner = &model.Profile{
		UUIDBase: model.UUIDBase{ID: "stu-winner"}, FullName: "Emma",
		Role: model.Student, ClassID: &classID, VisualPasswordID: &vp, IsActive: true,
	}

	_, err := svc.Validate(context.Background(), "ABC123", "Emma", "vp-dog")
	if !errors.Is(err, util.ErrWrongVisualPassword) {
		t.Fatalf("err = %v, want ErrWrongVisualPassword", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	store := session.NewMemoryStore()
	classes := &fakeClassFinder{classes: map[string]*model.Class{
		"ABC123": {UUIDBase: model.UUIDBase{ID: "class-1"}, AccessToken: "ABC123", AllowStudentAccess: true, IsActive: true, MaxStudents: 30},
	}}
	svc := NewStudentAccessService(classes, &fakeStudentDirectory{}, store, 8*time.Hour)
	ctx := context.Background()

	result, err := svc.Validate(ctx, "ABC123", "Emma", "vp-cat")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Logout(ctx, result.Session.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got, _ := store.Get(ctx, result.Session.Token); got != nil {
		t.Fatal("session still alive after logout")
	}
}
