package author

import (
	"time"
)

// Author 作者实体
// 设计说明:
// 1. ID由存储层分配,创建后不可变
// 2. Name、Bio可通过整体保存(Save)修改,没有部分更新操作
// 3. 与Book之间没有关联关系
type Author struct {
	ID        uint
	Name      string // 姓名
	Bio       string // 简介
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAuthor 创建新作者(尚未分配ID)
func NewAuthor(name, bio string) *Author {
	return &Author{
		Name: name,
		Bio:  bio,
	}
}

// Identity 返回作者ID,0表示尚未持久化
func (a *Author) Identity() uint {
	return a.ID
}

// AssignIdentity 由存储层分配ID时调用
func (a *Author) AssignIdentity(id uint) {
	a.ID = id
}

// IsNew 是否尚未持久化
func (a *Author) IsNew() bool {
	return a.ID == 0
}

// CreatedTime 创建时间
func (a *Author) CreatedTime() time.Time {
	return a.CreatedAt
}

// Stamp 设置时间戳
func (a *Author) Stamp(createdAt, updatedAt time.Time) {
	a.CreatedAt = createdAt
	a.UpdatedAt = updatedAt
}
