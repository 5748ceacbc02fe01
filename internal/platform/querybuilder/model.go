package querybuilder

import (
	"fmt"
	"reflect"

	"github.com/jmoiron/sqlx/reflectx"
)

var dbMapper = reflectx.NewMapperFunc("db", func(string) string { return "" })

// InsertModel inserts the top-level db-tagged fields of model, in declaration
// order, followed by suffix.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return "", nil, fmt.Errorf("insert model for %s is nil", table)
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("insert model for %s must be a struct, got %s", table, value.Kind())
	}

	var (
		cols []string
		vals []any
	)
	for _, field := range dbMapper.TypeMap(value.Type()).Index {
		if len(field.Index) != 1 || field.Name == "" || field.Name == "-" || field.Field.PkgPath != "" {
			continue
		}
		cols = append(cols, field.Name)
		vals = append(vals, reflectx.FieldByIndexesReadOnly(value, field.Index).Interface())
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("insert model for %s has no db columns", table)
	}

	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}
