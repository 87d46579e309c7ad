package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-api/internal/domain/book"
	"github.com/xiebiao/bookstore-api/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-api/pkg/response"
)

// BookHandler 图书HTTP处理器
// 每个请求只调用一次Service，错误统一交给response.Error映射状态码
type BookHandler struct {
	svc book.Service
}

// NewBookHandler 创建图书处理器
func NewBookHandler(svc book.Service) *BookHandler {
	return &BookHandler{svc: svc}
}

// List 图书列表
// @Summary      图书列表
// @Description  返回全部图书，没有分页
// @Tags         图书
// @Produce      json
// @Success      200 {array}  dto.BookResponse
// @Failure      503 {object} response.ErrorBody "存储不可用"
// @Router       /books [get]
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.svc.ListBooks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewBookListResponse(books))
}

// Get 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id  path     int true "图书ID"
// @Success      200 {object} dto.BookResponse
// @Failure      400 {object} response.ErrorBody "无效的ID"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Failure      503 {object} response.ErrorBody "存储不可用"
// @Router       /books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewBookResponse(b))
}

// Create 创建图书
// @Summary      创建图书
// @Description  请求体中的id会被忽略，由存储分配新ID
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body     dto.BookRequest true "图书信息"
// @Success      201     {object} dto.BookResponse
// @Failure      400     {object} response.ErrorBody "参数格式错误"
// @Failure      409     {object} response.ErrorBody "记录冲突"
// @Failure      503     {object} response.ErrorBody "存储不可用"
// @Router       /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.BookRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.svc.CreateBook(c.Request.Context(), req.ToEntity(0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewBookResponse(b))
}

// Update 整体更新图书
// @Summary      更新图书
// @Description  覆盖图书的全部可变字段
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        id      path     int               true "图书ID"
// @Param        request body     dto.BookRequest true "图书信息"
// @Success      200     {object} dto.BookResponse
// @Failure      400     {object} response.ErrorBody "参数错误"
// @Failure      404     {object} response.ErrorBody "图书不存在"
// @Failure      409     {object} response.ErrorBody "记录冲突"
// @Failure      503     {object} response.ErrorBody "存储不可用"
// @Router       /books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.BookRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.svc.UpdateBook(c.Request.Context(), req.ToEntity(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewBookResponse(b))
}

// Delete 删除图书
// @Summary      删除图书
// @Tags         图书
// @Param        id  path int true "图书ID"
// @Success      204 "删除成功"
// @Failure      400 {object} response.ErrorBody "无效的ID"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Failure      503 {object} response.ErrorBody "存储不可用"
// @Router       /books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.svc.DeleteBook(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
