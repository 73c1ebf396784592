package util

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrClassNotFound        = errors.New("class not found")
	ErrClassNotAccessible   = errors.New("class is not accepting students")
	ErrClassFull            = errors.New("class is full")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrRecordingNotFound    = errors.New("recording not found")
	ErrWrongVisualPassword  = errors.New("visual password does not match")
	ErrStudentInactive      = errors.New("student is not active in this class")
)
