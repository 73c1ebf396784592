package controller

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"readaloud_backend/internal/middleware"
	"readaloud_backend/internal/service"
	"readaloud_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RecordingController struct {
	RecordingService *service.RecordingService
}

func NewRecordingController(recordingService *service.RecordingService) *RecordingController {
	return &RecordingController{RecordingService: recordingService}
}

// List godoc
// @Summary 录音列表
// @Description 学生看自己的，教师看所带班级的
// @Tags 录音
// @Produce json
// @Security BearerAuth
// @Param classId query string false "按班级过滤"
// @Param assignmentId query string false "按任务过滤"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/recordings [get]
func (c *RecordingController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	recordings, total, err := c.RecordingService.List(
		middleware.GetIdentity(ctx), ctx.Query("classId"), ctx.Query("assignmentId"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  recordings,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary 录音详情
// @Tags 录音
// @Produce json
// @Security BearerAuth
// @Param id path string true "录音 ID"
// @Success 200 {object} util.Response
// @Router /api/recordings/{id} [get]
func (c *RecordingController) Get(ctx *gin.Context) {
	recording, err := c.RecordingService.Get(middleware.GetIdentity(ctx), ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, recording)
}

// Status godoc
// @Summary 转写进度
// @Description 前端提交后轮询，拿到 completed/failed 即停
// @Tags 录音
// @Produce json
// @Security BearerAuth
// @Param id path string true "录音 ID"
// @Success 200 {object} util.Response
// @Router /api/recordings/{id}/status [get]
func (c *RecordingController) Status(ctx *gin.Context) {
	recording, err := c.RecordingService.Status(middleware.GetIdentity(ctx), ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"status":         recording.Status,
		"transcript":     recording.Transcript,
		"accuracyScore":  recording.AccuracyScore,
		"wordsPerMinute": recording.WordsPerMinute,
		"pauseCount":     recording.PauseCount,
		"fluencyScore":   recording.FluencyScore,
	})
}

// Review godoc
// @Summary 评阅录音
// @Description 教师写反馈或归档
// @Tags 录音
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "录音 ID"
// @Param body body service.ReviewInput true "评阅内容"
// @Success 200 {object} util.Response
// @Router /api/recordings/{id}/review [put]
func (c *RecordingController) Review(ctx *gin.Context) {
	var input service.ReviewInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	recording, err := c.RecordingService.Review(middleware.GetIdentity(ctx), ctx.Param("id"), input)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, recording)
}

// Stream godoc
// @Summary 回放音频
// @Description 流式返回录音文件，学生只能取自己的
// @Tags 录音
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "录音 ID"
// @Success 200 {file} binary
// @Router /api/recordings/{id}/audio [get]
func (c *RecordingController) Stream(ctx *gin.Context) {
	reader, recording, err := c.RecordingService.OpenFile(
		ctx.Request.Context(), middleware.GetIdentity(ctx), ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	defer reader.Close()

	contentType := "audio/webm"
	switch strings.ToLower(filepath.Ext(recording.FilePath)) {
	case ".mp3":
		contentType = "audio/mpeg"
	case ".wav":
		contentType = "audio/wav"
	case ".m4a":
		contentType = "audio/mp4"
	case ".ogg":
		contentType = "audio/ogg"
	}

	ctx.Header("Content-Type", contentType)
	ctx.Header("Cache-Control", "private, max-age=0")
	ctx.Status(http.StatusOK)
	_, _ = io.Copy(ctx.Writer, reader)
}
