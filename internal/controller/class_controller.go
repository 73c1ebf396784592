package controller

import (
	"errors"
	"strconv"

	"readaloud_backend/internal/middleware"
	"readaloud_backend/internal/service"
	"readaloud_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClassController struct {
	ClassService *service.ClassService
}

func NewClassController(classService *service.ClassService) *ClassController {
	return &ClassController{ClassService: classService}
}

// Create godoc
// @Summary 创建班级
// @Description 教师创建班级，自动生成入班码
// @Tags 班级
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateClassInput true "班级信息"
// @Success 201 {object} util.Response
// @Router /api/classes [post]
func (c *ClassController) Create(ctx *gin.Context) {
	var input service.CreateClassInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Create(middleware.GetIdentity(ctx), input)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// List godoc
// @Summary 班级列表
// @Description 教师看自己的班级，管理员看全部
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/classes [get]
func (c *ClassController) List(ctx *gin.Context) {
	classes, err := c.ClassService.List(middleware.GetIdentity(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// Get godoc
// @Summary 班级详情
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path string true "班级 ID"
// @Success 200 {object} util.Response
// @Router /api/classes/{id} [get]
func (c *ClassController) Get(ctx *gin.Context) {
	class, err := c.ClassService.Get(middleware.GetIdentity(ctx), ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// Update godoc
// @Summary 更新班级
// @Tags 班级
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "班级 ID"
// @Param body body service.UpdateClassInput true "更新字段"
// @Success 200 {object} util.Response
// @Router /api/classes/{id} [put]
func (c *ClassController) Update(ctx *gin.Context) {
	var input service.UpdateClassInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Update(middleware.GetIdentity(ctx), ctx.Param("id"), input)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// RegenerateToken godoc
// @Summary 重置入班码
// @Description 生成新入班码，旧码立即失效
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path string true "班级 ID"
// @Success 200 {object} util.Response
// @Router /api/classes/{id}/access-token [post]
func (c *ClassController) RegenerateToken(ctx *gin.Context) {
	class, err := c.ClassService.RegenerateAccessToken(middleware.GetIdentity(ctx), ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// Delete godoc
// @Summary 删除班级
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path string true "班级 ID"
// @Success 200 {object} util.Response
// @Router /api/classes/{id} [delete]
func (c *ClassController) Delete(ctx *gin.Context) {
	if err := c.ClassService.Delete(middleware.GetIdentity(ctx), ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListStudents godoc
// @Summary 班级学生名单
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path string true "班级 ID"
// @Success 200 {object} util.Response
// @Router /api/classes/{id}/students [get]
func (c *ClassController) ListStudents(ctx *gin.Context) {
	students, err := c.ClassService.ListStudents(middleware.GetIdentity(ctx), ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

type setStudentActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SetStudentActive godoc
// @Summary 停用/恢复学生
// @Description 停用后学生无法入班，已有会话提交也会被拒
// @Tags 班级
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "学生档案 ID"
// @Param body body setStudentActiveRequest true "状态"
// @Success 200 {object} util.Response
// @Router /api/students/{id}/active [put]
func (c *ClassController) SetStudentActive(ctx *gin.Context) {
	var req setStudentActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.ClassService.SetStudentActive(middleware.GetIdentity(ctx), ctx.Param("id"), *req.IsActive)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListProfiles godoc
// @Summary 档案列表
// @Description 管理员全量，教师只见自己和所带班级的学生
// @Tags 档案
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/profiles [get]
func (c *ClassController) ListProfiles(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	profiles, total, err := c.ClassService.ListProfiles(middleware.GetIdentity(ctx), page, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  profiles,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// respondServiceError 服务层错误统一映射
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrUnauthorized):
		util.Unauthorized(ctx)
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, util.ErrClassNotFound),
		errors.Is(err, util.ErrAssignmentNotFound),
		errors.Is(err, util.ErrRecordingNotFound),
		errors.Is(err, util.ErrProfileNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
