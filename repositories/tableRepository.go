package repositories

import (
	"context"
	"fmt"
	"regexp"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadableTables are the tables generic readers may touch.
var ReadableTables = map[string]bool{
	"patients":          true,
	"appointment_calls": true,
	"perfiles":          true,
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// TableQuery describes a generic select.
type TableQuery struct {
	Table     string
	Columns   []string
	Limit     int
	OrderBy   string
	Ascending bool
}

// TableResult keeps rows together with the column order the database returned.
type TableResult struct {
	Columns []string
	Rows    []map[string]interface{}
}

// TableRepository reads arbitrary allow-listed tables as untyped rows.
type TableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) *TableRepository {
	return &TableRepository{db: db}
}

// CheckTable validates a table name against the allow-list.
func CheckTable(table string) error {
	if !ReadableTables[table] {
		return fmt.Errorf("table %q is not available", table)
	}
	return nil
}

func (r *TableRepository) Select(ctx context.Context, q TableQuery) (*TableResult, error) {
	if err := CheckTable(q.Table); err != nil {
		return nil, err
	}

	tx := r.db.WithContext(ctx).Table(q.Table)
	if len(q.Columns) > 0 {
		for _, column := range q.Columns {
			if !identifierPattern.MatchString(column) {
				return nil, fmt.Errorf("invalid column %q", column)
			}
		}
		tx = tx.Select(q.Columns)
	}
	if q.OrderBy != "" {
		if !identifierPattern.MatchString(q.OrderBy) {
			return nil, fmt.Errorf("invalid order column %q", q.OrderBy)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: !q.Ascending})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	rows, err := tx.Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", q.Table, err)
	}

	result := &TableResult{Columns: columns, Rows: []map[string]interface{}{}}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", q.Table, err)
		}
		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}
			row[column] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", q.Table, err)
	}
	return result, nil
}

// Count returns the exact number of rows in table.
func (r *TableRepository) Count(ctx context.Context, table string) (int64, error) {
	if err := CheckTable(table); err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
