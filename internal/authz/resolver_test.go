package authz

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"readaloud_backend/internal/model"
)

type countingSource struct {
	profiles map[string]*model.Profile
	owned    map[string][]string
	calls    int64
}

func (s *countingSource) StaffProfile(profileID string) (*model.Profile, error) {
	atomic.AddInt64(&s.calls, 1)
	p, ok := s.profiles[profileID]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (s *countingSource) OwnedClassIDs(teacherID string) ([]string, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.owned[teacherID], nil
}

func TestResolveStaffTeacher(t *testing.T) {
	src := &countingSource{
		profiles: map[string]*model.Profile{
			"t-1": {UUIDBase: model.UUIDBase{ID: "t-1"}, Role: model.Teacher, IsActive: true},
		},
		owned: map[string][]string{"t-1": {"class-1", "class-2"}},
	}

	identity, err := NewResolver(src).ResolveStaff("t-1")
	if err != nil {
		t.Fatalf("ResolveStaff: %v", err)
	}
	if identity.Kind != KindTeacher {
		t.Fatalf("Kind = %q, want teacher", identity.Kind)
	}
	if len(identity.OwnedClassIDs) != 2 {
		t.Fatalf("OwnedClassIDs = %v", identity.OwnedClassIDs)
	}
}

func TestResolveStaffRejectsInactiveAndStudents(t *testing.T) {
	src := &countingSource{
		profiles: map[string]*model.Profile{
			"gone": {UUIDBase: model.UUIDBase{ID: "gone"}, Role: model.Teacher, IsActive: false},
			"stu":  {UUIDBase: model.UUIDBase{ID: "stu"}, Role: model.Student, IsActive: true},
		},
	}
	resolver := NewResolver(src)

	if _, err := resolver.ResolveStaff("gone"); err == nil {
		t.Error("inactive profile must not resolve")
	}
	if _, err := resolver.ResolveStaff("stu"); err == nil {
		t.Error("student profile must not resolve through the staff path")
	}
}

// 身份解析只查一次数据源，之后任意多的策略判定都不准再回查。
// 曾经的设计里策略内部会再查档案表，档案表自己又挂着策略，
// 查询会无限递归。现在的结构从根上断掉这条回路
func TestPolicyEvaluationNeverHitsClaimsSource(t *testing.T) {
	src := &countingSource{
		profiles: map[string]*model.Profile{
			"t-1": {UUIDBase: model.UUIDBase{ID: "t-1"}, Role: model.Teacher, IsActive: true},
		},
		owned: map[string][]string{"t-1": {"class-1"}},
	}

	identity, err := NewResolver(src).ResolveStaff("t-1")
	if err != nil {
		t.Fatalf("ResolveStaff: %v", err)
	}
	resolveCalls := atomic.LoadInt64(&src.calls)

	rec := &model.Recording{StudentID: "stu-1", ClassID: "class-1"}
	profile := &model.Profile{UUIDBase: model.UUIDBase{ID: "stu-1"}, Role: model.Student, ClassID: strPtr("class-1")}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				CanReadRecording(identity, rec)
				CanReadProfile(identity, profile)
				CanWriteRecording(identity, rec)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&src.calls); got != resolveCalls {
		t.Fatalf("policy evaluation hit the claims source %d extra times", got-resolveCalls)
	}
}
