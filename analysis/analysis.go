package analysis

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/ViBaTo/panel-control-tm/repositories"
)

// SampleSize is how many rows are read to infer a schema.
const SampleSize = 10

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Source reads allow-listed tables.
type Source interface {
	Select(ctx context.Context, q repositories.TableQuery) (*repositories.TableResult, error)
	Count(ctx context.Context, table string) (int64, error)
}

type Column struct {
	Name        string      `json:"column_name"`
	DataType    string      `json:"data_type"`
	SampleValue interface{} `json:"sample_value"`
}

type QueryErrors struct {
	Sample string `json:"sampleError,omitempty"`
	Count  string `json:"countError,omitempty"`
}

// Report describes a table from a small sample. RowCount is nil when the
// count query failed.
type Report struct {
	Table      string                   `json:"table"`
	Schema     []Column                 `json:"schema"`
	SampleData []map[string]interface{} `json:"sampleData"`
	RowCount   *int64                   `json:"rowCount"`
	Errors     QueryErrors              `json:"errors"`
}

// AnalyzeTable samples a table and infers column types from the first row.
// The sample and the count are independent: a failure in one is reported in
// Errors and does not stop the other. Only a table outside the allow-list is
// returned as an error.
func AnalyzeTable(ctx context.Context, src Source, table string) (*Report, error) {
	if err := repositories.CheckTable(table); err != nil {
		return nil, err
	}

	report := &Report{Table: table, Schema: []Column{}, SampleData: []map[string]interface{}{}}

	sample, err := src.Select(ctx, repositories.TableQuery{Table: table, Limit: SampleSize})
	if err != nil {
		report.Errors.Sample = err.Error()
	} else {
		report.SampleData = sample.Rows
	}

	count, err := src.Count(ctx, table)
	if err != nil {
		report.Errors.Count = err.Error()
	} else {
		report.RowCount = &count
	}

	if sample != nil && len(sample.Rows) > 0 {
		first := sample.Rows[0]
		for _, name := range sample.Columns {
			v := first[name]
			report.Schema = append(report.Schema, Column{Name: name, DataType: InferType(v), SampleValue: v})
		}
	}
	return report, nil
}

// TableColumns returns the column names of table in result-set order.
func TableColumns(ctx context.Context, src Source, table string) ([]string, error) {
	res, err := src.Select(ctx, repositories.TableQuery{Table: table, Limit: 1})
	if err != nil {
		return nil, err
	}
	return res.Columns, nil
}

// InferType names the kind of a scanned column value.
func InferType(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if datePrefix.MatchString(val) || strings.Contains(val, "T") {
			return "datetime/text"
		}
		return "text"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32:
		return floatType(float64(val))
	case float64:
		return floatType(val)
	case bool:
		return "boolean"
	case time.Time:
		return "timestamp"
	default:
		return "unknown"
	}
}

func floatType(f float64) string {
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) {
		return "integer"
	}
	return "numeric"
}
