package author

import (
	"github.com/xiebiao/bookstore-api/internal/domain/crud"
)

// Repository 作者仓储接口
// 由domain层定义,infrastructure层(rdb、memory)实现,redis/guard负责装饰
type Repository = crud.Repository[Author]
