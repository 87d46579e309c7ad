package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
	"github.com/xiebiao/bookstore-api/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-api/pkg/response"
)

// AuthorHandler 作者HTTP处理器
// 每个请求只调用一次Service，错误统一交给response.Error映射状态码
type AuthorHandler struct {
	svc author.Service
}

// NewAuthorHandler 创建作者处理器
func NewAuthorHandler(svc author.Service) *AuthorHandler {
	return &AuthorHandler{svc: svc}
}

// List 作者列表
// @Summary      作者列表
// @Description  返回全部作者，没有分页
// @Tags         作者
// @Produce      json
// @Success      200 {array}  dto.AuthorResponse
// @Failure      503 {object} response.ErrorBody "存储不可用"
// @Router       /authors [get]
func (h *AuthorHandler) List(c *gin.Context) {
	authors, err := h.svc.ListAuthors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewAuthorListResponse(authors))
}

// Get 作者详情
// @Summary      作者详情
// @Tags         作者
// @Produce      json
// @Param        id  path     int true "作者ID"
// @Success      200 {object} dto.AuthorResponse
// @Failure      400 {object} response.ErrorBody "无效的ID"
// @Failure      404 {object} response.ErrorBody "作者不存在"
// @Failure      503 {object} response.ErrorBody "存储不可用"
// @Router       /authors/{id} [get]
func (h *AuthorHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	a, err := h.svc.GetAuthor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewAuthorResponse(a))
}

// Create 创建作者
// @Summary      创建作者
// @Description  请求体中的id会被忽略，由存储分配新ID
// @Tags         作者
// @Accept       json
// @Produce      json
// @Param        request body     dto.AuthorRequest true "作者信息"
// @Success      201     {object} dto.AuthorResponse
// @Failure      400     {object} response.ErrorBody "参数格式错误"
// @Failure      409     {object} response.ErrorBody "记录冲突"
// @Failure      503     {object} response.ErrorBody "存储不可用"
// @Router       /authors [post]
func (h *AuthorHandler) Create(c *gin.Context) {
	var req dto.AuthorRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	a, err := h.svc.CreateAuthor(c.Request.Context(), req.ToEntity(0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewAuthorResponse(a))
}

// Update 整体更新作者
// @Summary      更新作者
// @Description  覆盖作者的全部可变字段
// @Tags         作者
// @Accept       json
// @Produce      json
// @Param        id      path     int               true "作者ID"
// @Param        request body     dto.AuthorRequest true "作者信息"
// @Success      200     {object} dto.AuthorResponse
// @Failure      400     {object} response.ErrorBody "参数错误"
// @Failure      404     {object} response.ErrorBody "作者不存在"
// @Failure      409     {object} response.ErrorBody "记录冲突"
// @Failure      503     {object} response.ErrorBody "存储不可用"
// @Router       /authors/{id} [put]
func (h *AuthorHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AuthorRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	a, err := h.svc.UpdateAuthor(c.Request.Context(), req.ToEntity(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewAuthorResponse(a))
}

// Delete 删除作者
// @Summary      删除作者
// @Tags         作者
// @Param        id  path int true "作者ID"
// @Success      204 "删除成功"
// @Failure      400 {object} response.ErrorBody "无效的ID"
// @Failure      404 {object} response.ErrorBody "作者不存在"
// @Failure      503 {object} response.ErrorBody "存储不可用"
// @Router       /authors/{id} [delete]
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.svc.DeleteAuthor(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
