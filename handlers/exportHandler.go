package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/ViBaTo/panel-control-tm/export"
	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/middlewares"
	"github.com/gin-gonic/gin"
)

// ExportHandler serves spreadsheet downloads.
type ExportHandler struct {
	patients PatientAPI
	calls    CallAPI
	loc      *time.Location
	log      *logger.Logger
}

func NewExportHandler(patients PatientAPI, calls CallAPI, loc *time.Location, log *logger.Logger) *ExportHandler {
	return &ExportHandler{patients: patients, calls: calls, loc: loc, log: log.Component("export")}
}

func (h *ExportHandler) ExportPatients(c *gin.Context) {
	env := h.patients.List(c.Request.Context())
	if !env.Success {
		c.JSON(http.StatusBadGateway, env)
		return
	}
	var buf bytes.Buffer
	if err := export.Patients(&buf, env.Data, h.loc); err != nil {
		middlewares.HttpError(c, h.log, "Failed to build spreadsheet", http.StatusInternalServerError, err)
		return
	}
	h.send(c, "pacientes", &buf)
}

func (h *ExportHandler) ExportCalls(c *gin.Context) {
	env := h.calls.ListAll(c.Request.Context())
	if !env.Success {
		c.JSON(http.StatusBadGateway, env)
		return
	}
	var buf bytes.Buffer
	if err := export.Calls(&buf, env.Data, h.loc); err != nil {
		middlewares.HttpError(c, h.log, "Failed to build spreadsheet", http.StatusInternalServerError, err)
		return
	}
	h.send(c, "llamadas", &buf)
}

func (h *ExportHandler) send(c *gin.Context, name string, buf *bytes.Buffer) {
	filename := name + "-" + time.Now().In(h.loc).Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
