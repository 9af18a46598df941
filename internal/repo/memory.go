package repo

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm/schema"
)

// MemoryRepo is an in-process Repository used by tests. Columns resolve
// through the same gorm schema as GormRepo, so filters and patches use the
// database column names. Preload options are ignored.
type MemoryRepo[T any] struct {
	mu       sync.Mutex
	schema   *schema.Schema
	rows     []T
	nextID   int64
	unique   []string
	failures map[string][]error
}

func NewMemoryRepo[T any](uniqueColumns ...string) *MemoryRepo[T] {
	s, err := schema.Parse(new(T), &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		panic(fmt.Sprintf("memory repo: parse schema: %v", err))
	}
	return &MemoryRepo[T]{
		schema:   s,
		nextID:   1,
		unique:   uniqueColumns,
		failures: make(map[string][]error),
	}
}

// FailNext makes the next call of op ("find", "find_one", "insert",
// "insert_many", "update", "delete") return err. Calls queue up.
func (m *MemoryRepo[T]) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], err)
}

// Rows returns a copy of everything stored.
func (m *MemoryRepo[T]) Rows() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.rows...)
}

func (m *MemoryRepo[T]) takeFailure(op string) error {
	queue := m.failures[op]
	if len(queue) == 0 {
		return nil
	}
	m.failures[op] = queue[1:]
	return &Error{Op: op, Table: m.schema.Table, Err: queue[0]}
}

func (m *MemoryRepo[T]) value(row *T, column string) (any, bool) {
	field := m.schema.LookUpField(column)
	if field == nil {
		return nil, false
	}
	v, _ := field.ValueOf(context.Background(), reflect.ValueOf(row).Elem())
	return v, true
}

func (m *MemoryRepo[T]) matches(row *T, filter Filter) bool {
	for column, want := range filter {
		got, ok := m.value(row, column)
		if !ok || !sameValue(got, want) {
			return false
		}
	}
	return true
}

func sameValue(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func (m *MemoryRepo[T]) Find(ctx context.Context, filter Filter, opts ...Option) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("find"); err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for i := range m.rows {
		if m.matches(&m.rows[i], filter) {
			out = append(out, m.rows[i])
		}
	}
	m.sort(out, buildQuery(opts).Order)
	return out, nil
}

func (m *MemoryRepo[T]) FindOne(ctx context.Context, filter Filter, opts ...Option) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("find_one"); err != nil {
		return nil, err
	}
	for i := range m.rows {
		if m.matches(&m.rows[i], filter) {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, &Error{Op: "find_one", Table: m.schema.Table, Err: ErrNotFound}
}

func (m *MemoryRepo[T]) Insert(ctx context.Context, row *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("insert"); err != nil {
		return err
	}
	if err := m.checkUnique(row, nil); err != nil {
		return &Error{Op: "insert", Table: m.schema.Table, Err: err}
	}
	m.stamp(row)
	m.rows = append(m.rows, *row)
	return nil
}

func (m *MemoryRepo[T]) InsertMany(ctx context.Context, rows []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("insert_many"); err != nil {
		return err
	}
	for i := range rows {
		if err := m.checkUnique(&rows[i], rows[:i]); err != nil {
			return &Error{Op: "insert_many", Table: m.schema.Table, Err: err}
		}
	}
	for i := range rows {
		m.stamp(&rows[i])
		m.rows = append(m.rows, rows[i])
	}
	return nil
}

func (m *MemoryRepo[T]) Update(ctx context.Context, filter Filter, patch map[string]any) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("update"); err != nil {
		return nil, err
	}
	if len(filter) == 0 {
		return nil, &Error{Op: "update", Table: m.schema.Table, Err: ErrEmptyFilter}
	}
	var first *T
	for i := range m.rows {
		if !m.matches(&m.rows[i], filter) {
			continue
		}
		rv := reflect.ValueOf(&m.rows[i]).Elem()
		for column, v := range patch {
			field := m.schema.LookUpField(column)
			if field == nil {
				return nil, &Error{Op: "update", Table: m.schema.Table, Err: fmt.Errorf("unknown column %q", column)}
			}
			if err := field.Set(ctx, rv, v); err != nil {
				return nil, &Error{Op: "update", Table: m.schema.Table, Err: err}
			}
		}
		if first == nil {
			row := m.rows[i]
			first = &row
		}
	}
	if first == nil {
		return nil, &Error{Op: "update", Table: m.schema.Table, Err: ErrNotFound}
	}
	return first, nil
}

func (m *MemoryRepo[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure("delete"); err != nil {
		return 0, err
	}
	if len(filter) == 0 {
		return 0, &Error{Op: "delete", Table: m.schema.Table, Err: ErrEmptyFilter}
	}
	kept := m.rows[:0]
	var removed int64
	for i := range m.rows {
		if m.matches(&m.rows[i], filter) {
			removed++
			continue
		}
		kept = append(kept, m.rows[i])
	}
	m.rows = kept
	return removed, nil
}

// stamp assigns the primary key and created_at the way the database would.
func (m *MemoryRepo[T]) stamp(row *T) {
	ctx := context.Background()
	rv := reflect.ValueOf(row).Elem()
	if pk := m.schema.PrioritizedPrimaryField; pk != nil {
		if _, zero := pk.ValueOf(ctx, rv); zero {
			_ = pk.Set(ctx, rv, m.nextID)
			m.nextID++
		}
	}
	if created := m.schema.LookUpField("created_at"); created != nil {
		if _, zero := created.ValueOf(ctx, rv); zero {
			_ = created.Set(ctx, rv, time.Now().UTC())
		}
	}
}

func (m *MemoryRepo[T]) checkUnique(row *T, pending []T) error {
	for _, column := range m.unique {
		want, ok := m.value(row, column)
		if !ok {
			continue
		}
		for _, others := range [][]T{m.rows, pending} {
			for i := range others {
				if got, _ := m.value(&others[i], column); sameValue(got, want) {
					return fmt.Errorf("%w: %s", ErrConflict, column)
				}
			}
		}
	}
	return nil
}

func (m *MemoryRepo[T]) sort(rows []T, order string) {
	parts := strings.Fields(order)
	if len(parts) == 0 {
		return
	}
	field := m.schema.LookUpField(parts[0])
	if field == nil {
		return
	}
	desc := len(parts) > 1 && strings.EqualFold(parts[1], "desc")
	ctx := context.Background()
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := field.ValueOf(ctx, reflect.ValueOf(&rows[i]).Elem())
		b, _ := field.ValueOf(ctx, reflect.ValueOf(&rows[j]).Elem())
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

func less(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Before(bv)
	case uint:
		bv, _ := b.(uint)
		return av < bv
	case int:
		bv, _ := b.(int)
		return av < bv
	case float64:
		bv, _ := b.(float64)
		return av < bv
	default:
		return fmt.Sprint(a) < fmt.Sprint(b)
	}
}
