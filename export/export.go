package export

import (
	"fmt"
	"io"
	"time"

	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/views"
	"github.com/xuri/excelize/v2"
)

const (
	PatientsSheet = "Pacientes"
	CallsSheet    = "Llamadas"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var patientHeader = []interface{}{
	"Nº Historia", "Nombre", "Apellidos", "DNI/NIE", "Teléfono", "Email", "Ciudad", "Estado", "Fecha de registro",
}

var callHeader = []interface{}{
	"ID llamada", "Paciente", "Teléfono", "Tratamiento", "Fecha", "Hora", "Estado",
}

// Patients writes the patient list as a workbook with one sheet.
func Patients(w io.Writer, patients []models.Patient, loc *time.Location) error {
	rows := make([][]interface{}, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, []interface{}{
			models.StringValue(p.NumeroHistoria),
			models.StringValue(p.Nombre),
			models.StringValue(p.Apellidos),
			models.StringValue(p.DniNie),
			models.StringValue(p.Telefono),
			models.StringValue(p.Email),
			models.StringValue(p.Ciudad),
			views.StatusLabel(p.Activo),
			views.FormatDate(p.CreatedAt, loc),
		})
	}
	return write(w, PatientsSheet, patientHeader, rows)
}

// Calls writes the call log in the same shape as the appointments table.
func Calls(w io.Writer, calls []models.AppointmentCall, loc *time.Location) error {
	rows := make([][]interface{}, 0, len(calls))
	for _, a := range views.ToAppointments(calls, loc) {
		rows = append(rows, []interface{}{a.ID, a.Patient, a.Phone, a.Service, a.Date, a.Time, a.Status})
	}
	return write(w, CallsSheet, callHeader, rows)
}

func write(w io.Writer, sheet string, header []interface{}, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
