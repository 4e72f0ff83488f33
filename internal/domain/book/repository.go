package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 读操作返回BookView(联表+聚合),写操作接收Book
// 3. "不存在"是一等结果:FindByID返回ErrBookNotFound,Delete返回false,由调用方决定如何处理
type Repository interface {
	// List 分页查询(LEFT JOIN作者和销量,按销量降序)
	// 没有匹配时返回空切片,不是错误
	List(ctx context.Context, params ListParams) ([]*BookView, error)

	// Count 与List相同的过滤条件下的总数
	Count(ctx context.Context, search string) (int64, error)

	// FindByID 根据ID查询
	FindByID(ctx context.Context, id uint) (*BookView, error)

	// Upsert 按ID插入或覆盖(书名/类型/简介/作者无条件覆盖)
	Upsert(ctx context.Context, book *Book) error

	// Delete 先删除该书的销售记录,再删除图书
	// 返回true表示图书行被删除;false时不做任何修改
	Delete(ctx context.Context, id uint) (bool, error)

	// NextID 计算MAX(id)+1,空表返回1
	// 注意:读取和写入之间存在竞争窗口,新建图书请用CreateWithNextID
	NextID(ctx context.Context) (uint, error)

	// CreateWithNextID 在同一事务中锁定并分配MAX+1后插入,回填book.ID
	CreateWithNextID(ctx context.Context, book *Book) error
}

// AuthorRepository 作者仓储接口
type AuthorRepository interface {
	// Upsert 按ID插入或覆盖
	Upsert(ctx context.Context, author *Author) error

	// FindByName 按姓名精确查找(忽略大小写),不存在返回ErrAuthorNotFound
	FindByName(ctx context.Context, name string) (*Author, error)

	// NextID 计算MAX(id)+1
	NextID(ctx context.Context) (uint, error)

	// CreateWithNextID 锁定并分配MAX+1后插入(不覆盖已有作者),回填author.ID
	CreateWithNextID(ctx context.Context, author *Author) error
}

// SaleRepository 销售记录仓储接口
type SaleRepository interface {
	Upsert(ctx context.Context, sale *Sale) error
	NextID(ctx context.Context) (uint, error)
}

// ImportProcedure 存储过程导入(一行CSV一次调用)
type ImportProcedure interface {
	ImportLine(ctx context.Context, line *ImportLine) error
}

// Transactor 事务边界
// fn内通过ctx执行的仓储操作处于同一事务;嵌套调用使用SAVEPOINT
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ListParams 列表查询参数
type ListParams struct {
	Limit  int    // 每页数量,<=0表示不限制
	Offset int    // 偏移量
	Search string // 书名关键词(忽略大小写的子串匹配),空表示全部
}
