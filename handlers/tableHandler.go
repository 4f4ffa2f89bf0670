package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ViBaTo/panel-control-tm/analysis"
	"github.com/ViBaTo/panel-control-tm/liveview"
	"github.com/ViBaTo/panel-control-tm/repositories"
	"github.com/gin-gonic/gin"
)

// TableSource reads allow-listed tables for views and diagnostics.
type TableSource interface {
	liveview.Source
	analysis.Source
}

type TableHandler struct {
	source TableSource
	deps   liveview.Deps
}

func NewTableHandler(deps liveview.Deps, source TableSource) *TableHandler {
	deps.Source = source
	return &TableHandler{source: source, deps: deps}
}

// viewOptions reads select, limit, order and ascending from the query string.
func viewOptions(c *gin.Context) liveview.Options {
	opts := liveview.Options{OrderBy: c.Query("order")}
	if sel := c.Query("select"); sel != "" && sel != "*" {
		for _, col := range strings.Split(sel, ",") {
			if col = strings.TrimSpace(col); col != "" {
				opts.Columns = append(opts.Columns, col)
			}
		}
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		opts.Limit = n
	}
	opts.Ascending, _ = strconv.ParseBool(c.Query("ascending"))
	return opts
}

// GetTable returns one settled view state of a table.
func (h *TableHandler) GetTable(c *gin.Context) {
	table := c.Param("table")
	if err := repositories.CheckTable(table); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, liveview.Fetch(c.Request.Context(), h.deps, table, viewOptions(c)))
}

// AnalyzeTable samples a table and reports its inferred schema.
func (h *TableHandler) AnalyzeTable(c *gin.Context) {
	report, err := analysis.AnalyzeTable(c.Request.Context(), h.source, c.Param("table"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetTableColumns lists a table's columns, or null when they cannot be read.
func (h *TableHandler) GetTableColumns(c *gin.Context) {
	table := c.Param("table")
	if err := repositories.CheckTable(table); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	columns, err := analysis.TableColumns(c.Request.Context(), h.source, table)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"columns": nil, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": columns})
}
