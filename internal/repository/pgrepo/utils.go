package pgrepo

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// collect собирает строки выборки при помощи функции сканирования одной строки. Закрывает rows.
func collect[T any](rows pgx.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) { //nolint:wrapcheck
		return scan(row)
	})
}

// queryBuilder накапливает условия WHERE и аргументы динамического запроса.
type queryBuilder struct {
	conditions []string
	args       []any
}

// where добавляет условие. Плейсхолдер аргумента обозначается как `?` и заменяется на $N.
func (b *queryBuilder) where(cond string, arg any) {
	b.args = append(b.args, arg)
	b.conditions = append(b.conditions, fmt.Sprintf(replacePlaceholder(cond), len(b.args)))
}

func (b *queryBuilder) whereRaw(cond string) {
	b.conditions = append(b.conditions, cond)
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) clause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	clause := " WHERE " + b.conditions[0]
	for _, c := range b.conditions[1:] {
		clause += " AND " + c
	}
	return clause
}

func replacePlaceholder(cond string) string {
	out := make([]byte, 0, len(cond)+2)
	for i := range len(cond) {
		if cond[i] == '?' {
			out = append(out, '$', '%', 'd')
			continue
		}
		if cond[i] == '%' {
			out = append(out, '%', '%')
			continue
		}
		out = append(out, cond[i])
	}
	return string(out)
}
