package book

import (
	"github.com/xiebiao/bookstore-api/internal/domain/crud"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. 契约见crud.Repository
type Repository = crud.Repository[Book]
