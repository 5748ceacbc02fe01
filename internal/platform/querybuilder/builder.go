// Package querybuilder renders the handful of postgres statement shapes the
// repositories need, numbering $n placeholders across every clause.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates statement text and its positional arguments.
type sqlWriter struct {
	strings.Builder
	args []any
}

func (w *sqlWriter) bind(v any) {
	w.args = append(w.args, v)
	w.WriteString("$" + strconv.Itoa(len(w.args)))
}

// raw writes expr, binding one argument for each '?' in order. Extra '?'
// without a matching argument are left in place.
func (w *sqlWriter) raw(expr string, args []any) {
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && len(args) > 0 {
			w.bind(args[0])
			args = args[1:]
			continue
		}
		w.WriteByte(expr[i])
	}
}

func (w *sqlWriter) where(conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			w.WriteString(" WHERE ")
		} else {
			w.WriteString(" AND ")
		}
		c.writeSQL(w)
	}
}

func (w *sqlWriter) list(keyword string, parts []string) {
	if len(parts) == 0 {
		return
	}
	w.WriteString(" " + keyword + " ")
	w.WriteString(strings.Join(parts, ", "))
}

func (w *sqlWriter) number(keyword string, n int) {
	if n > 0 {
		w.WriteString(" " + keyword + " " + strconv.Itoa(n))
	}
}

func (w *sqlWriter) suffix(sql string) {
	if sql != "" {
		w.WriteByte(' ')
		w.WriteString(sql)
	}
}

// Condition is one AND-ed predicate of a WHERE clause.
type Condition interface {
	writeSQL(w *sqlWriter)
}

type conditionFunc func(w *sqlWriter)

func (f conditionFunc) writeSQL(w *sqlWriter) { f(w) }

func Eq(column string, value any) Condition {
	return conditionFunc(func(w *sqlWriter) {
		w.WriteString(column + " = ")
		w.bind(value)
	})
}

// In with no values matches nothing.
func In(column string, values []any) Condition {
	return inList(column, values, false)
}

// NotIn with no values matches every row.
func NotIn(column string, values []any) Condition {
	return inList(column, values, true)
}

func inList(column string, values []any, negate bool) Condition {
	return conditionFunc(func(w *sqlWriter) {
		if len(values) == 0 {
			if negate {
				w.WriteString("1=1")
			} else {
				w.WriteString("1=0")
			}
			return
		}
		w.WriteString(column)
		if negate {
			w.WriteString(" NOT")
		}
		w.WriteString(" IN (")
		for i, v := range values {
			if i > 0 {
				w.WriteString(", ")
			}
			w.bind(v)
		}
		w.WriteByte(')')
	})
}

// Expr is a raw predicate using '?' for its arguments.
func Expr(expr string, args ...any) Condition {
	return conditionFunc(func(w *sqlWriter) { w.raw(expr, args) })
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ILike is a case-insensitive substring match. A blank needle matches every
// row.
func ILike(column, needle string) Condition {
	needle = strings.TrimSpace(needle)
	return conditionFunc(func(w *sqlWriter) {
		if needle == "" {
			w.WriteString("1=1")
			return
		}
		w.WriteString(column + " ILIKE ")
		w.bind("%" + likeEscaper.Replace(needle) + "%")
	})
}

type SelectBuilder struct {
	columns []string
	table   string
	conds   []Condition
	groupBy []string
	orderBy []string
	limit   int
	offset  int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder { b.table = table; return b }

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// Limit and Offset values <= 0 are omitted.
func (b *SelectBuilder) Limit(n int) *SelectBuilder  { b.limit = n; return b }
func (b *SelectBuilder) Offset(n int) *SelectBuilder { b.offset = n; return b }

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 || strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select needs columns and a table")
	}

	var w sqlWriter
	w.WriteString("SELECT " + strings.Join(b.columns, ", ") + " FROM " + b.table)
	w.where(b.conds)
	w.list("GROUP BY", b.groupBy)
	w.list("ORDER BY", b.orderBy)
	w.number("LIMIT", b.limit)
	w.number("OFFSET", b.offset)
	return w.String(), w.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	tail    string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values adds one row; call it again for a multi-row insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix is appended verbatim, e.g. an ON CONFLICT or RETURNING clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.tail = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" || len(b.columns) == 0 || len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert needs a table, columns and values")
	}

	var w sqlWriter
	w.WriteString("INSERT INTO " + b.table + " (" + strings.Join(b.columns, ", ") + ") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				w.WriteString(", ")
			}
			w.bind(v)
		}
		w.WriteByte(')')
	}
	w.suffix(b.tail)
	return w.String(), w.args, nil
}

type UpdateBuilder struct {
	table string
	sets  []Condition
	conds []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, Eq(column, value))
	return b
}

// SetExpr assigns a raw expression using '?' for its arguments.
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, conditionFunc(func(w *sqlWriter) {
		w.WriteString(column + " = ")
		w.raw(expr, args)
	}))
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" || len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update needs a table and at least one SET")
	}

	var w sqlWriter
	w.WriteString("UPDATE " + b.table + " SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.WriteString(", ")
		}
		s.writeSQL(&w)
	}
	w.where(b.conds)
	return w.String(), w.args, nil
}

type DeleteBuilder struct {
	table string
	conds []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

// ToSQL refuses to build an unfiltered delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" || len(b.conds) == 0 {
		return "", nil, fmt.Errorf("delete needs a table and at least one condition")
	}

	var w sqlWriter
	w.WriteString("DELETE FROM " + b.table)
	w.where(b.conds)
	return w.String(), w.args, nil
}
