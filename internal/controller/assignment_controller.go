package controller

import (
	"readaloud_backend/internal/middleware"
	"readaloud_backend/internal/service"
	"readaloud_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	AssignmentService *service.AssignmentService
}

func NewAssignmentController(assignmentService *service.AssignmentService) *AssignmentController {
	return &AssignmentController{AssignmentService: assignmentService}
}

// Create godoc
// @Summary 布置朗读任务
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateAssignmentInput true "任务信息"
// @Success 201 {object} util.Response
// @Router /api/assignments [post]
func (c *AssignmentController) Create(ctx *gin.Context) {
	var input service.CreateAssignmentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.AssignmentService.Create(middleware.GetIdentity(ctx), input)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, assignment)
}

// List godoc
// @Summary 任务列表
// @Description 学生只能看到本班已发布的任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param classId query string false "按班级过滤"
// @Success 200 {object} util.Response
// @Router /api/assignments [get]
func (c *AssignmentController) List(ctx *gin.Context) {
	assignments, err := c.AssignmentService.List(middleware.GetIdentity(ctx), ctx.Query("classId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, assignments)
}

// Get godoc
// @Summary 任务详情
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path string true "任务 ID"
// @Success 200 {object} util.Response
// @Router /api/assignments/{id} [get]
func (c *AssignmentController) Get(ctx *gin.Context) {
	assignment, err := c.AssignmentService.Get(middleware.GetIdentity(ctx), ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, assignment)
}

// Update godoc
// @Summary 更新任务
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "任务 ID"
// @Param body body service.UpdateAssignmentInput true "更新字段"
// @Success 200 {object} util.Response
// @Router /api/assignments/{id} [put]
func (c *AssignmentController) Update(ctx *gin.Context) {
	var input service.UpdateAssignmentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.AssignmentService.Update(middleware.GetIdentity(ctx), ctx.Param("id"), input)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, assignment)
}

// Delete godoc
// @Summary 删除任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path string true "任务 ID"
// @Success 200 {object} util.Response
// @Router /api/assignments/{id} [delete]
func (c *AssignmentController) Delete(ctx *gin.Context) {
	if err := c.AssignmentService.Delete(middleware.GetIdentity(ctx), ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
