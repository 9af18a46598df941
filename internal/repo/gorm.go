package repo

import (
	"context"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type GormRepo[T any] struct {
	DB    *gorm.DB
	table string
}

func NewGormRepo[T any](db *gorm.DB) *GormRepo[T] {
	table := "unknown"
	if s, err := schema.Parse(new(T), &sync.Map{}, db.NamingStrategy); err == nil {
		table = s.Table
	}
	return &GormRepo[T]{DB: db, table: table}
}

func (r *GormRepo[T]) query(ctx context.Context, filter Filter, opts []Option) *gorm.DB {
	q := buildQuery(opts)
	tx := r.DB.WithContext(ctx).Model(new(T))
	if len(filter) > 0 {
		tx = tx.Where(map[string]any(filter))
	}
	for _, assoc := range q.Preload {
		tx = tx.Preload(assoc)
	}
	if q.Order != "" {
		tx = tx.Order(q.Order)
	}
	return tx
}

func (r *GormRepo[T]) Find(ctx context.Context, filter Filter, opts ...Option) ([]T, error) {
	rows := make([]T, 0)
	if err := r.query(ctx, filter, opts).Find(&rows).Error; err != nil {
		return nil, translate("find", r.table, err)
	}
	return rows, nil
}

func (r *GormRepo[T]) FindOne(ctx context.Context, filter Filter, opts ...Option) (*T, error) {
	var row T
	if err := r.query(ctx, filter, opts).First(&row).Error; err != nil {
		return nil, translate("find_one", r.table, err)
	}
	return &row, nil
}

func (r *GormRepo[T]) Insert(ctx context.Context, row *T) error {
	return translate("insert", r.table, r.DB.WithContext(ctx).Create(row).Error)
}

func (r *GormRepo[T]) InsertMany(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return translate("insert_many", r.table, r.DB.WithContext(ctx).Create(&rows).Error)
}

func (r *GormRepo[T]) Update(ctx context.Context, filter Filter, patch map[string]any) (*T, error) {
	if len(filter) == 0 {
		return nil, &Error{Op: "update", Table: r.table, Err: ErrEmptyFilter}
	}
	res := r.DB.WithContext(ctx).Model(new(T)).Where(map[string]any(filter)).Updates(patch)
	if res.Error != nil {
		return nil, translate("update", r.table, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &Error{Op: "update", Table: r.table, Err: ErrNotFound}
	}
	return r.FindOne(ctx, filter)
}

func (r *GormRepo[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, &Error{Op: "delete", Table: r.table, Err: ErrEmptyFilter}
	}
	res := r.DB.WithContext(ctx).Where(map[string]any(filter)).Delete(new(T))
	if res.Error != nil {
		return 0, translate("delete", r.table, res.Error)
	}
	return res.RowsAffected, nil
}
