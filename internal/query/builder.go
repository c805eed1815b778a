// Package query is a small fluent builder over sqlx. Each chain targets one
// table and produces exactly one parameterized statement when it is run.
//
//	res := query.From[model.Book](db, "books").
//		Select("*").
//		Eq("genre_id", genreID).
//		Order("created_at", query.Desc()).
//		Limit(12).
//		Execute(ctx)
//	if res.Err != nil { ... }
package query

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

type mode int

const (
	modeSelect mode = iota
	modeInsert
	modeUpdate
	modeDelete
)

func (m mode) String() string {
	switch m {
	case modeInsert:
		return "insert"
	case modeUpdate:
		return "update"
	case modeDelete:
		return "delete"
	default:
		return "select"
	}
}

// Row is an untyped result row keyed by column name.
type Row map[string]any

// Client hands out builders bound to one database handle, either the pool
// or a transaction.
type Client struct {
	ext sqlx.ExtContext
}

func New(ext sqlx.ExtContext) *Client {
	return &Client{ext: ext}
}

// From starts an untyped builder on table.
func (c *Client) From(table string) *Builder[Row] {
	return From[Row](c.ext, table)
}

type selectOptions struct {
	count bool
}

// SelectOpt configures Select.
type SelectOpt func(*selectOptions)

// Count switches the builder to COUNT(*) mode. Result.Count holds the total
// and no rows are returned.
func Count() SelectOpt {
	return func(o *selectOptions) { o.count = true }
}

type orderOptions struct {
	descending bool
}

// OrderOpt configures Order.
type OrderOpt func(*orderOptions)

// Desc sorts descending. Without it, Order sorts ascending.
func Desc() OrderOpt {
	return func(o *orderOptions) { o.descending = true }
}

// Ascending sets the direction explicitly.
func Ascending(asc bool) OrderOpt {
	return func(o *orderOptions) { o.descending = !asc }
}

type ordering struct {
	column     string
	descending bool
}

// Builder accumulates the intent of one statement. It is not safe for
// concurrent use and is meant to be consumed by a single Execute or Single.
type Builder[T any] struct {
	ext     sqlx.ExtContext
	table   string
	fields  []string
	count   bool
	preds   []predicate
	order   *ordering
	limit   int
	offset  int
	mode    mode
	modeSet bool
	payload Row
	err     error
}

// From starts a builder on table whose rows decode into T. T may be a
// struct with db tags, Row, or a scalar for single column projections.
func From[T any](ext sqlx.ExtContext, table string) *Builder[T] {
	b := &Builder[T]{ext: ext, table: table}
	if !validIdentifier(table) {
		b.fail(fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table))
	}
	return b
}

func (b *Builder[T]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Select sets the projection. fields is "*" or a comma separated column list.
func (b *Builder[T]) Select(fields string, opts ...SelectOpt) *Builder[T] {
	var o selectOptions
	for _, opt := range opts {
		opt(&o)
	}

	parsed, err := parseFields(fields)
	if err != nil {
		b.fail(err)
		return b
	}
	b.fields = parsed
	b.count = o.count
	return b
}

func (b *Builder[T]) where(column string, op operator, value any) *Builder[T] {
	if !validIdentifier(column) {
		b.fail(fmt.Errorf("%w: column %q", ErrInvalidIdentifier, column))
		return b
	}
	b.preds = append(b.preds, predicate{column: column, op: op, value: bindValue(value)})
	return b
}

// Eq adds column = value. A nil value renders column IS NULL.
func (b *Builder[T]) Eq(column string, value any) *Builder[T] {
	return b.where(column, opEq, value)
}

// Neq adds column <> value. A nil value renders column IS NOT NULL.
func (b *Builder[T]) Neq(column string, value any) *Builder[T] {
	return b.where(column, opNeq, value)
}

func (b *Builder[T]) Gt(column string, value any) *Builder[T] {
	return b.where(column, opGt, value)
}

func (b *Builder[T]) Gte(column string, value any) *Builder[T] {
	return b.where(column, opGte, value)
}

func (b *Builder[T]) Lt(column string, value any) *Builder[T] {
	return b.where(column, opLt, value)
}

// ILike matches rows whose column contains term, ignoring case. LIKE
// wildcards inside term are matched literally.
func (b *Builder[T]) ILike(column, term string) *Builder[T] {
	return b.where(column, opILike, containsPattern(term))
}

// In adds column IN (values...). An empty list matches nothing.
func (b *Builder[T]) In(column string, values ...any) *Builder[T] {
	if !validIdentifier(column) {
		b.fail(fmt.Errorf("%w: column %q", ErrInvalidIdentifier, column))
		return b
	}
	bound := make([]any, len(values))
	for i, v := range values {
		bound[i] = bindValue(v)
	}
	b.preds = append(b.preds, predicate{column: column, op: opIn, values: bound})
	return b
}

// Order sets the single ORDER BY clause, replacing any earlier one.
func (b *Builder[T]) Order(column string, opts ...OrderOpt) *Builder[T] {
	if !validIdentifier(column) {
		b.fail(fmt.Errorf("%w: order column %q", ErrInvalidIdentifier, column))
		return b
	}
	var o orderOptions
	for _, opt := range opts {
		opt(&o)
	}
	b.order = &ordering{column: column, descending: o.descending}
	return b
}

func (b *Builder[T]) Limit(n int) *Builder[T] {
	if n <= 0 {
		b.fail(fmt.Errorf("%w: %d", ErrInvalidLimit, n))
		return b
	}
	b.limit = n
	return b
}

func (b *Builder[T]) Offset(n int) *Builder[T] {
	if n < 0 {
		b.fail(fmt.Errorf("%w: %d", ErrInvalidOffset, n))
		return b
	}
	b.offset = n
	return b
}

func (b *Builder[T]) setMode(m mode) bool {
	if b.modeSet {
		b.fail(fmt.Errorf("%w: %s after %s", ErrConflictingMode, m, b.mode))
		return false
	}
	b.mode = m
	b.modeSet = true
	return true
}

func (b *Builder[T]) setPayload(row Row) {
	if len(row) == 0 {
		b.fail(ErrEmptyPayload)
		return
	}
	payload := make(Row, len(row))
	for col, v := range row {
		if !validIdentifier(col) || strings.Contains(col, ".") {
			b.fail(fmt.Errorf("%w: column %q", ErrInvalidIdentifier, col))
			return
		}
		payload[col] = bindValue(v)
	}
	b.payload = payload
}

// Insert switches the builder to insert mode. Inserted rows are returned.
func (b *Builder[T]) Insert(row Row) *Builder[T] {
	if b.setMode(modeInsert) {
		b.setPayload(row)
	}
	return b
}

// Update switches the builder to update mode. Updated rows are returned.
func (b *Builder[T]) Update(row Row) *Builder[T] {
	if b.setMode(modeUpdate) {
		b.setPayload(row)
	}
	return b
}

// Delete switches the builder to delete mode. Deleted rows are returned.
func (b *Builder[T]) Delete() *Builder[T] {
	b.setMode(modeDelete)
	return b
}

// ToSQL renders the statement with bind variables for the handle's driver.
func (b *Builder[T]) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	var (
		sb   strings.Builder
		args []any
		err  error
	)
	switch b.mode {
	case modeInsert:
		args, err = b.renderInsert(&sb)
	case modeUpdate:
		args, err = b.renderUpdate(&sb)
	case modeDelete:
		args, err = b.renderDelete(&sb)
	default:
		args = b.renderSelect(&sb)
	}
	if err != nil {
		return "", nil, err
	}

	q := sb.String()
	if b.ext != nil {
		q = b.ext.Rebind(q)
	}
	return q, args, nil
}

func (b *Builder[T]) projection() string {
	if len(b.fields) == 0 {
		return "*"
	}
	return strings.Join(b.fields, ", ")
}

func (b *Builder[T]) renderSelect(sb *strings.Builder) []any {
	sb.WriteString("SELECT ")
	if b.count {
		sb.WriteString("COUNT(*)")
	} else {
		sb.WriteString(b.projection())
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	args := b.renderWhere(sb, nil)

	// Ordering and paging are meaningless for a count.
	if b.count {
		return args
	}
	if b.order != nil {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.order.column)
		if b.order.descending {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}
	if b.limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(b.offset))
	}
	return args
}

func (b *Builder[T]) renderWhere(sb *strings.Builder, args []any) []any {
	for i, p := range b.preds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = p.render(sb, args)
	}
	return args
}

func (b *Builder[T]) checkMutation() error {
	if b.count {
		return fmt.Errorf("%w: count is only valid for select", ErrInvalid)
	}
	if b.order != nil || b.limit > 0 || b.offset > 0 {
		return fmt.Errorf("%w: order, limit and offset are only valid for select", ErrInvalid)
	}
	return nil
}

func (b *Builder[T]) renderInsert(sb *strings.Builder) ([]any, error) {
	if err := b.checkMutation(); err != nil {
		return nil, err
	}
	if len(b.preds) > 0 {
		return nil, fmt.Errorf("%w: insert does not take filters", ErrInvalid)
	}

	cols := b.payloadColumns()
	args := make([]any, 0, len(cols))
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES (")
	for i, col := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('?')
		args = append(args, b.payload[col])
	}
	sb.WriteString(") RETURNING ")
	sb.WriteString(b.projection())
	return args, nil
}

func (b *Builder[T]) renderUpdate(sb *strings.Builder) ([]any, error) {
	if err := b.checkMutation(); err != nil {
		return nil, err
	}
	if len(b.preds) == 0 {
		return nil, ErrUnfilteredMutation
	}

	cols := b.payloadColumns()
	args := make([]any, 0, len(cols)+len(b.preds))
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	for i, col := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ?")
		args = append(args, b.payload[col])
	}
	args = b.renderWhere(sb, args)
	sb.WriteString(" RETURNING ")
	sb.WriteString(b.projection())
	return args, nil
}

func (b *Builder[T]) renderDelete(sb *strings.Builder) ([]any, error) {
	if err := b.checkMutation(); err != nil {
		return nil, err
	}
	if len(b.preds) == 0 {
		return nil, ErrUnfilteredMutation
	}

	sb.WriteString("DELETE FROM ")
	sb.WriteString(b.table)
	args := b.renderWhere(sb, nil)
	sb.WriteString(" RETURNING ")
	sb.WriteString(b.projection())
	return args, nil
}

// payloadColumns returns the payload keys in a stable order.
func (b *Builder[T]) payloadColumns() []string {
	cols := make([]string, 0, len(b.payload))
	for col := range b.payload {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func (b *Builder[T]) op() string {
	return b.mode.String() + " " + b.table
}

// Execute runs the statement and returns every row.
func (b *Builder[T]) Execute(ctx context.Context) Result[T] {
	q, args, err := b.ToSQL()
	if err != nil {
		return failed[T](invalid(b.op(), err))
	}
	if b.ext == nil {
		return failed[T](&Error{Kind: KindUnavailable, Op: b.op(), Err: ErrNoConnection})
	}

	if b.count {
		var n int64
		if err := sqlx.GetContext(ctx, b.ext, &n, q, args...); err != nil {
			return failed[T](classify(b.op(), err))
		}
		return Result[T]{Count: n}
	}

	rows, err := b.ext.QueryxContext(ctx, q, args...)
	if err != nil {
		return failed[T](classify(b.op(), err))
	}
	defer rows.Close()

	out, err := scanAll[T](rows)
	if err != nil {
		return failed[T](classify(b.op(), err))
	}
	return Result[T]{Rows: out, Count: int64(len(out))}
}

// Single runs the statement expecting at most one row. In select mode it
// adds LIMIT 1. It never panics: any failure ends up in Result.Err.
func (b *Builder[T]) Single(ctx context.Context) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = failed[T](&Error{Kind: KindUnknown, Op: b.op(), Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if b.mode == modeSelect && !b.count {
		b.limit = 1
	}
	res = b.Execute(ctx)
	if len(res.Rows) > 1 {
		res.Rows = res.Rows[:1]
	}
	return res
}

// bindValue dereferences pointers so drivers only see plain values and nil
// pointers become NULL. Values implementing driver.Valuer are left alone.
func bindValue(v any) any {
	if v == nil {
		return nil
	}
	if _, ok := v.(driver.Valuer); ok {
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return bindValue(rv.Elem().Interface())
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}
