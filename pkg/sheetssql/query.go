package sheetssql

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is how time.Time fields are written to and read from cells
const TimeLayout = "2006-01-02 15:04:05"

var timeType = reflect.TypeOf(time.Time{})

// TableName returns the table a model of type T is stored in
func TableName[T any]() string {
	var model T
	return toSnakeCase(reflect.TypeOf(model).Name())
}

// GetTableAs reads every data row of a table into structs of type T, matching columns by header.
// The header and type rows are skipped.
func GetTableAs[T any](db *DB, tableName string) ([]T, error) {
	values, err := db.client.GetValues(db.spreadsheetID, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", tableName, err)
	}

	if len(values) < 3 {
		return []T{}, nil
	}
	headers, dataRows := values[0], values[2:]

	var model T
	t := reflect.TypeOf(model)

	// struct field index per column index
	fieldForColumn := make(map[int]int)
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("ssql_header")
		if name == "" {
			continue
		}
		for col, header := range headers {
			if fmt.Sprint(header) == name {
				fieldForColumn[col] = i
				break
			}
		}
	}

	results := make([]T, 0, len(dataRows))
	for rowIdx, row := range dataRows {
		if isBlankRow(row) {
			continue
		}

		result := reflect.New(t).Elem()
		for col, fieldIdx := range fieldForColumn {
			if col >= len(row) || row[col] == nil {
				continue
			}
			if err := setFieldValue(result.Field(fieldIdx), row[col]); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", rowIdx+3, t.Field(fieldIdx).Tag.Get("ssql_header"), err)
			}
		}

		results = append(results, result.Interface().(T))
	}

	return results, nil
}

func isBlankRow(row []interface{}) bool {
	for _, cell := range row {
		if strings.TrimSpace(fmt.Sprint(cell)) != "" {
			return false
		}
	}
	return true
}

// setFieldValue converts a cell to the field's type. Formatted reads return strings; other scalar
// values are rendered with fmt first.
func setFieldValue(field reflect.Value, cellValue interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	cellStr, ok := cellValue.(string)
	if !ok {
		cellStr = fmt.Sprint(cellValue)
	}
	cellStr = strings.TrimSpace(cellStr)

	if field.Type() == timeType {
		if cellStr == "" {
			field.Set(reflect.ValueOf(time.Time{}))
			return nil
		}
		parsed, err := time.Parse(TimeLayout, cellStr)
		if err != nil {
			return fmt.Errorf("failed to parse time: %w", err)
		}
		field.Set(reflect.ValueOf(parsed))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(cellStr)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cellStr == "" {
			field.SetInt(0)
			return nil
		}
		intVal, err := strconv.ParseInt(strings.ReplaceAll(cellStr, ",", ""), 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse int: %w", err)
		}
		field.SetInt(intVal)

	case reflect.Float32, reflect.Float64:
		if cellStr == "" {
			field.SetFloat(0)
			return nil
		}
		floatVal, err := strconv.ParseFloat(strings.ReplaceAll(cellStr, ",", ""), 64)
		if err != nil {
			return fmt.Errorf("failed to parse float: %w", err)
		}
		field.SetFloat(floatVal)

	case reflect.Bool:
		if cellStr == "" {
			field.SetBool(false)
			return nil
		}
		boolVal, err := strconv.ParseBool(strings.ToLower(cellStr))
		if err != nil {
			return fmt.Errorf("failed to parse bool: %w", err)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// rowFromModel renders the tagged fields of a struct as cells, in field order
func rowFromModel(v reflect.Value) []interface{} {
	t := v.Type()
	row := make([]interface{}, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("ssql_header") == "" {
			continue
		}

		value := v.Field(i).Interface()
		if ts, ok := value.(time.Time); ok {
			value = ts.UTC().Format(TimeLayout)
		}
		row = append(row, value)
	}
	return row
}

// InsertModel appends a struct as a row to its table
func InsertModel[T any](db *DB, model T) error {
	return InsertModels(db, []T{model})
}

// InsertModels appends structs as rows to their table in one request
func InsertModels[T any](db *DB, models []T) error {
	if len(models) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(models))
	for _, model := range models {
		rows = append(rows, rowFromModel(reflect.ValueOf(model)))
	}

	return db.InsertRows(TableName[T](), rows)
}
