// Package crud 定义单表实体的通用仓储契约
//
// 设计说明:
// 1. Author、Book等实体的仓储操作完全一致(列表、按ID查询、保存、按ID删除),用泛型接口统一
// 2. 接口定义在domain层,infrastructure层(rdb/memory/redis/guard)实现或装饰
// 3. "不存在"与"冲突"错误由各实体提供(见Errors),存储故障统一为apperrors.ErrCodeStoreUnavailable
package crud

import (
	"context"
	"time"
)

// Repository 通用仓储接口
//
// 契约:
//   - FindAll: 返回全部记录,空库返回空切片(非nil)
//   - FindByID: 记录不存在返回Errors.NotFound,不会返回(nil, nil)
//   - Save: ID为0时插入并分配新ID;ID存在时整体覆盖;ID不存在时返回Errors.NotFound
//   - DeleteByID: 实际删除了记录返回nil,否则返回Errors.NotFound
//
// 所有返回的记录都是副本,调用方修改不会影响存储状态。
type Repository[T any] interface {
	// FindAll 查询全部记录
	FindAll(ctx context.Context) ([]*T, error)

	// FindByID 根据ID查询记录
	FindByID(ctx context.Context, id uint) (*T, error)

	// Save 插入或整体更新记录,返回保存后的记录(包含分配的ID)
	Save(ctx context.Context, record *T) (*T, error)

	// DeleteByID 根据ID删除记录
	DeleteByID(ctx context.Context, id uint) error
}

// Record 实体指针约束
// 泛型存储通过Identity/AssignIdentity读写ID,而不依赖具体字段名
type Record[T any] interface {
	*T
	Identity() uint
	AssignIdentity(id uint)
}

// Errors 实体级错误集合
// 泛型实现在需要返回"不存在"或"冲突"时使用调用方提供的错误值
type Errors struct {
	NotFound error
	Conflict error
}

// Timestamped 带创建/更新时间的实体(可选)
// 不经过数据库的存储(memory)用它维护时间戳,更新时保留原创建时间
type Timestamped interface {
	CreatedTime() time.Time
	Stamp(createdAt, updatedAt time.Time)
}
