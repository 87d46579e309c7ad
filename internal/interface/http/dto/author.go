package dto

import (
	"github.com/samber/lo"

	"github.com/xiebiao/bookstore-api/internal/domain/author"
)

// TimeLayout 响应中的时间格式
const TimeLayout = "2006-01-02 15:04:05"

// AuthorRequest 创建/更新作者请求
// 请求体中的id会被忽略：创建时由存储分配，更新时以路径参数为准
type AuthorRequest struct {
	Name string `json:"name" example:"J.R.R. Tolkien"`
	Bio  string `json:"bio" example:"英国作家、语言学家"`
}

// ToEntity 转换为领域实体（id为0表示新建）
func (r *AuthorRequest) ToEntity(id uint) *author.Author {
	a := author.NewAuthor(r.Name, r.Bio)
	a.ID = id
	return a
}

// AuthorResponse 作者响应
type AuthorResponse struct {
	ID        uint   `json:"id" example:"1"`
	Name      string `json:"name" example:"J.R.R. Tolkien"`
	Bio       string `json:"bio" example:"英国作家、语言学家"`
	CreatedAt string `json:"created_at" example:"2024-01-15 10:30:00"`
	UpdatedAt string `json:"updated_at" example:"2024-01-15 10:30:00"`
}

// NewAuthorResponse 领域实体 → 响应
func NewAuthorResponse(a *author.Author) *AuthorResponse {
	return &AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		CreatedAt: a.CreatedAt.Format(TimeLayout),
		UpdatedAt: a.UpdatedAt.Format(TimeLayout),
	}
}

// NewAuthorListResponse 列表响应，空列表序列化为[]
func NewAuthorListResponse(authors []*author.Author) []*AuthorResponse {
	return lo.Map(authors, func(a *author.Author, _ int) *AuthorResponse {
		return NewAuthorResponse(a)
	})
}
