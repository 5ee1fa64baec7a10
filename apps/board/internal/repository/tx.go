package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// ITransactor 跨仓储的事务边界。
// fn 内通过 ctx 获取事务连接，所有仓储方法都会自动加入该事务；嵌套调用复用外层事务。
type ITransactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type transactorImpl struct {
	db *gorm.DB
}

// NewTransactor 创建事务管理器
func NewTransactor(db *gorm.DB) ITransactor {
	return &transactorImpl{db: db}
}

func (t *transactorImpl) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn 返回 ctx 中的事务连接，没有事务时返回普通连接
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// inTransaction 判断 ctx 是否处于事务中
func inTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}
