package query

import (
	"database/sql"
	"reflect"
	"time"

	"github.com/jmoiron/sqlx"
)

// Result is the uniform outcome of Execute and Single.
type Result[T any] struct {
	Rows  []T
	Count int64 // total in count mode, otherwise the number of rows returned
	Err   error
}

// Row returns the first row or nil.
func (r Result[T]) Row() *T {
	if len(r.Rows) == 0 {
		return nil
	}
	return &r.Rows[0]
}

func failed[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}

var (
	scannerType = reflect.TypeFor[sql.Scanner]()
	timeType    = reflect.TypeFor[time.Time]()
)

func scanAll[T any](rows *sqlx.Rows) ([]T, error) {
	var out []T
	for rows.Next() {
		var item T
		if err := scanOne(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanOne[T any](rows *sqlx.Rows, dest *T) error {
	if m, ok := any(dest).(*Row); ok {
		r := make(map[string]any)
		if err := rows.MapScan(r); err != nil {
			return err
		}
		for k, v := range r {
			if b, ok := v.([]byte); ok {
				r[k] = string(b)
			}
		}
		*m = r
		return nil
	}

	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Struct && t != timeType && !reflect.PointerTo(t).Implements(scannerType) {
		return rows.StructScan(dest)
	}
	return rows.Scan(dest)
}
