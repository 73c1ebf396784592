package controller

import (
	"errors"
	"strconv"

	"readaloud_backend/internal/authz"
	"readaloud_backend/internal/middleware"
	"readaloud_backend/internal/service"
	"readaloud_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// RPCController 旧前端按函数名调用的接口，路径 /api/rpc/<函数名>。
// 响应一律 200 + {success:...}，业务失败不抛 HTTP 错误码
type RPCController struct {
	StudentAccess    *service.StudentAccessService
	RecordingService *service.RecordingService
	ClassService     *service.ClassService
	AuthService      *service.AuthService
}

func NewRPCController(
	studentAccess *service.StudentAccessService,
	recordingService *service.RecordingService,
	classService *service.ClassService,
	authService *service.AuthService,
) *RPCController {
	return &RPCController{
		StudentAccess:    studentAccess,
		RecordingService: recordingService,
		ClassService:     classService,
		AuthService:      authService,
	}
}

type validateStudentAccessRequest struct {
	ClassToken       string `json:"class_token" binding:"required"`
	StudentName      string `json:"student_name" binding:"required"`
	VisualPasswordID string `json:"visual_password_id" binding:"required"`
}

// ValidateStudentAccess godoc
// @Summary 学生入班验证
// @Description 入班码 + 姓名 + 图形密码，首次入班自动建档
// @Tags RPC
// @Accept json
// @Produce json
// @Param body body validateStudentAccessRequest true "入班信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/rpc/validate_student_access [post]
func (c *RPCController) ValidateStudentAccess(ctx *gin.Context) {
	var req validateStudentAccessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.RPCFailure(ctx, "missing required fields")
		return
	}

	result, err := c.StudentAccess.Validate(ctx.Request.Context(),
		req.ClassToken, req.StudentName, req.VisualPasswordID)
	if err != nil {
		util.RPCFailure(ctx, rpcErrorMessage(err))
		return
	}

	util.RPCSuccess(ctx, gin.H{
		"session_token":  result.Session.Token,
		"student_id":     result.Student.ID,
		"student_name":   result.Student.FullName,
		"class_id":       result.Class.ID,
		"class_name":     result.Class.Name,
		"is_new_student": result.NewStudent,
		"expires_at":     result.Session.ExpiresAt,
	})
}

// SubmitStudentRecording godoc
// @Summary 提交朗读录音
// @Description multipart 上传音频，学生会话令牌认证
// @Tags RPC
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "音频文件"
// @Param story_id formData string false "故事 ID"
// @Param assignment_id formData string false "任务 ID"
// @Param duration_seconds formData number false "客户端时长"
// @Param metadata formData string false "JSON 元数据，可带 expected_text"
// @Success 200 {object} map[string]interface{}
// @Router /api/rpc/submit_student_recording [post]
func (c *RPCController) SubmitStudentRecording(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.RPCFailure(ctx, "audio file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.RPCFailure(ctx, "cannot read audio file")
		return
	}
	defer file.Close()

	input := service.SubmitInput{
		StoryID:  ctx.PostForm("story_id"),
		Metadata: ctx.PostForm("metadata"),
		Filename: fileHeader.Filename,
		File:     file,
		Size:     fileHeader.Size,
	}
	if v := ctx.PostForm("assignment_id"); v != "" {
		input.AssignmentID = &v
	}
	if v := ctx.PostForm("duration_seconds"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			input.DurationSeconds = d
		}
	}

	recording, err := c.RecordingService.Submit(ctx.Request.Context(), middleware.GetIdentity(ctx), input)
	if err != nil {
		util.RPCFailure(ctx, rpcErrorMessage(err))
		return
	}

	util.RPCSuccess(ctx, gin.H{
		"recording_id": recording.ID,
		"file_path":    recording.FilePath,
		"attempt":      recording.Attempt,
		"status":       recording.Status,
	})
}

type classIDRequest struct {
	ClassID string `json:"class_id" binding:"required"`
	Limit   int    `json:"limit"`
}

// GetClassRecordingsWithStudents godoc
// @Summary 班级录音评阅列表
// @Description 某班全部录音附学生姓名，教师/管理员可用
// @Tags RPC
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body classIDRequest true "班级"
// @Success 200 {object} map[string]interface{}
// @Router /api/rpc/get_class_recordings_with_students [post]
func (c *RPCController) GetClassRecordingsWithStudents(ctx *gin.Context) {
	var req classIDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.RPCFailure(ctx, "class_id is required")
		return
	}

	rows, err := c.RecordingService.ListClassWithStudents(middleware.GetIdentity(ctx), req.ClassID, req.Limit)
	if err != nil {
		util.RPCFailure(ctx, rpcErrorMessage(err))
		return
	}

	util.RPCSuccess(ctx, gin.H{"recordings": rows})
}

// AdminGetClassesWithCounts godoc
// @Summary 班级总览
// @Description 班级列表附学生数与教师信息
// @Tags RPC
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/rpc/admin_get_classes_with_counts [post]
func (c *RPCController) AdminGetClassesWithCounts(ctx *gin.Context) {
	rows, err := c.ClassService.ListWithCounts(middleware.GetIdentity(ctx))
	if err != nil {
		util.RPCFailure(ctx, rpcErrorMessage(err))
		return
	}
	util.RPCSuccess(ctx, gin.H{"classes": rows})
}

type usernameAuthRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthenticateWithUsername godoc
// @Summary 用户名登录（旧版）
// @Tags RPC
// @Accept json
// @Produce json
// @Param body body usernameAuthRequest true "登录信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/rpc/authenticate_with_username [post]
func (c *RPCController) AuthenticateWithUsername(ctx *gin.Context) {
	var req usernameAuthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.RPCFailure(ctx, "username and password are required")
		return
	}

	profile, err := c.AuthService.AuthenticateWithUsername(req.Username, req.Password)
	if err != nil {
		util.RPCFailure(ctx, "invalid username or password")
		return
	}

	email := ""
	if profile.Email != nil {
		email = *profile.Email
	}
	util.RPCSuccess(ctx, gin.H{
		"user_id":   profile.ID,
		"email":     email,
		"full_name": profile.FullName,
		"role":      profile.Role,
	})
}

// LogoutStudent godoc
// @Summary 学生登出
// @Description 令当前会话令牌立即失效
// @Tags RPC
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/rpc/logout_student [post]
func (c *RPCController) LogoutStudent(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	if identity.Kind != authz.KindStudent {
		util.RPCFailure(ctx, "no active student session")
		return
	}

	if err := c.StudentAccess.Logout(ctx.Request.Context(), identity.SessionToken); err != nil {
		util.RPCFailure(ctx, "logout failed")
		return
	}
	util.RPCSuccess(ctx, gin.H{})
}

// rpcErrorMessage 哨兵错误转用户可读文案，其余一律含混处理
func rpcErrorMessage(err error) string {
	switch {
	case errors.Is(err, util.ErrClassNotFound):
		return "Invalid class code"
	case errors.Is(err, util.ErrClassNotAccessible):
		return "This class is not accepting students right now"
	case errors.Is(err, util.ErrClassFull):
		return "This class is full"
	case errors.Is(err, util.ErrWrongVisualPassword):
		return "That picture password doesn't match"
	case errors.Is(err, util.ErrStudentInactive):
		return "Student is not active in this class"
	case errors.Is(err, util.ErrPermissionDenied):
		return "Not allowed"
	case errors.Is(err, util.ErrAssignmentNotFound):
		return "Assignment not found"
	default:
		return "Request failed"
	}
}
