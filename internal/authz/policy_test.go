package authz

import (
	"testing"

	"readaloud_backend/internal/model"
)

func strPtr(s string) *string { return &s }

func TestCanReadProfile(t *testing.T) {
	student := &model.Profile{
		UUIDBase: model.UUIDBase{ID: "stu-1"},
		Role:     model.Student,
		ClassID:  strPtr("class-1"),
	}

	cases := []struct {
		name  string
		actor Identity
		want  bool
	}{
		{"admin sees anyone", AdminIdentity("admin-1"), true},
		{"self", StudentIdentity("stu-1", "class-1", "tok"), true},
		{"other student", StudentIdentity("stu-2", "class-1", "tok"), false},
		{"owning teacher", TeacherIdentity("t-1", []string{"class-1"}), true},
		{"other teacher", TeacherIdentity("t-2", []string{"class-9"}), false},
		{"anonymous", Anonymous(), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanReadProfile(tc.actor, student); got != tc.want {
				t.Errorf("CanReadProfile = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanCreateProfile(t *testing.T) {
	newStudent := &model.Profile{
		Role:    model.Student,
		ClassID: strPtr("class-1"),
	}
	newTeacher := &model.Profile{Role: model.Teacher}

	if !CanCreateProfile(AdminIdentity("a"), newTeacher) {
		t.Error("admin should create teachers")
	}
	if CanCreateProfile(TeacherIdentity("t-1", []string{"class-1"}), newTeacher) {
		t.Error("teacher must not create teachers")
	}
	if !CanCreateProfile(TeacherIdentity("t-1", []string{"class-1"}), newStudent) {
		t.Error("teacher should create students in own class")
	}
	if CanCreateProfile(TeacherIdentity("t-2", []string{"class-9"}), newStudent) {
		t.Error("teacher must not create students in other classes")
	}
}

func TestCanReadAssignmentPublishedOnly(t *testing.T) {
	draft := &model.Assignment{ClassID: "class-1", IsPublished: false}
	published := &model.Assignment{ClassID: "class-1", IsPublished: true}

	student := StudentIdentity("stu-1", "class-1", "tok")
	if CanReadAssignment(student, draft) {
		t.Error("student must not read draft assignments")
	}
	if !CanReadAssignment(student, published) {
		t.Error("student should read published assignments of own class")
	}

	otherStudent := StudentIdentity("stu-2", "class-2", "tok")
	if CanReadAssignment(otherStudent, published) {
		t.Error("student must not read other classes' assignments")
	}

	teacher := TeacherIdentity("t-1", []string{"class-1"})
	if !CanReadAssignment(teacher, draft) {
		t.Error("owning teacher should read drafts")
	}
}

func TestCanWriteRecording(t *testing.T) {
	rec := &model.Recording{StudentID: "stu-1", ClassID: "class-1"}

	if !CanWriteRecording(StudentIdentity("stu-1", "class-1", "tok"), rec) {
		t.Error("student should write own recording")
	}
	if CanWriteRecording(StudentIdentity("stu-1", "class-2", "tok"), rec) {
		t.Error("session bound to another class must not write")
	}
	if CanWriteRecording(StudentIdentity("stu-2", "class-1", "tok"), rec) {
		t.Error("other student must not write")
	}
	if !CanWriteRecording(TeacherIdentity("t-1", []string{"class-1"}), rec) {
		t.Error("owning teacher should review")
	}
	if CanWriteRecording(Anonymous(), rec) {
		t.Error("anonymous must not write")
	}
}

func TestCanReadRecordingFile(t *testing.T) {
	path := "recordings/stu-1/assignment-1-1700000000.webm"

	if !CanReadRecordingFile(StudentIdentity("stu-1", "class-1", "tok"), path) {
		t.Error("student should read own file")
	}
	if CanReadRecordingFile(StudentIdentity("stu-2", "class-1", "tok"), path) {
		t.Error("student must not read another student's file")
	}
	if !CanReadRecordingFile(AdminIdentity("a"), path) {
		t.Error("admin bypasses the path rule")
	}
	// 教师不走路径规则，必须通过行级判定
	if CanReadRecordingFile(TeacherIdentity("t-1", []string{"class-1"}), path) {
		t.Error("teachers must go through the row policy")
	}
	if CanReadRecordingFile(StudentIdentity("stu-1", "class-1", "tok"), "recordings/stu-1") {
		t.Error("path without object segment must be rejected")
	}
}
