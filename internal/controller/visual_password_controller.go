package controller

import (
	"readaloud_backend/internal/repository"
	"readaloud_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VisualPasswordController struct {
	Repo *repository.VisualPasswordRepository
}

func NewVisualPasswordController(repo *repository.VisualPasswordRepository) *VisualPasswordController {
	return &VisualPasswordController{Repo: repo}
}

// List godoc
// @Summary 图形密码选项
// @Description 学生登录界面展示的图形密码列表，无需认证
// @Tags 学生入班
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/visual-passwords [get]
func (c *VisualPasswordController) List(ctx *gin.Context) {
	passwords, err := c.Repo.ListActive()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, passwords)
}
