package models

import (
	"time"
)

// Patient model. The patients table belongs to the hosted database; this
// service reads and writes it but never migrates it.
type Patient struct {
	ID                  string     `gorm:"primaryKey;column:id" json:"id"`
	NumeroHistoria      *string    `gorm:"column:numero_historia" json:"numero_historia"`
	DniNie              *string    `gorm:"column:dni_nie" json:"dni_nie"`
	Nombre              *string    `gorm:"column:nombre" json:"nombre"`
	Apellidos           *string    `gorm:"column:apellidos" json:"apellidos"`
	FechaNacimiento     *string    `gorm:"column:fecha_nacimiento" json:"fecha_nacimiento"`
	Genero              *string    `gorm:"column:genero" json:"genero"`
	Telefono            *string    `gorm:"column:telefono" json:"telefono"`
	TelefonoSecundario  *string    `gorm:"column:telefono_secundario" json:"telefono_secundario"`
	Email               *string    `gorm:"column:email" json:"email"`
	Direccion           *string    `gorm:"column:direccion" json:"direccion"`
	Ciudad              *string    `gorm:"column:ciudad" json:"ciudad"`
	Provincia           *string    `gorm:"column:provincia" json:"provincia"`
	CodigoPostal        *string    `gorm:"column:codigo_postal" json:"codigo_postal"`
	Activo              *bool      `gorm:"column:activo" json:"activo"`
	CreatedAt           *time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           *time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
	ClinicaID           *string    `gorm:"column:clinica_id" json:"clinica_id"`
	OrigenRegistro      *string    `gorm:"column:origen_registro" json:"origen_registro"`
	PreferenciaContacto *string    `gorm:"column:preferencia_contacto" json:"preferencia_contacto"`
	AceptaRecordatorios *bool      `gorm:"column:acepta_recordatorios" json:"acepta_recordatorios"`
	AceptaMarketing     *bool      `gorm:"column:acepta_marketing" json:"acepta_marketing"`
	IdiomaPreferido     *string    `gorm:"column:idioma_preferido" json:"idioma_preferido"`
	Etiquetas           *string    `gorm:"column:etiquetas" json:"etiquetas"`
	NotasInternas       *string    `gorm:"column:notas_internas" json:"notas_internas"`
}

func (Patient) TableName() string {
	return "patients"
}

// PatientColumns is the explicit column list used by list queries.
var PatientColumns = []string{
	"id", "numero_historia", "dni_nie", "nombre", "apellidos", "fecha_nacimiento",
	"genero", "telefono", "telefono_secundario", "email", "direccion", "ciudad",
	"provincia", "codigo_postal", "activo", "created_at", "updated_at", "clinica_id",
	"origen_registro", "preferencia_contacto", "acepta_recordatorios",
	"acepta_marketing", "idioma_preferido", "etiquetas", "notas_internas",
}

// PatientSearchColumns is the reduced column list returned by searches.
var PatientSearchColumns = []string{
	"id", "numero_historia", "dni_nie", "nombre", "apellidos", "telefono",
	"email", "activo", "created_at",
}

// PatientUpdatableColumns lists the columns a client may change through
// an update. Identity and audit columns are managed by the service.
var PatientUpdatableColumns = []string{
	"numero_historia", "dni_nie", "nombre", "apellidos", "fecha_nacimiento",
	"genero", "telefono", "telefono_secundario", "email", "direccion", "ciudad",
	"provincia", "codigo_postal", "activo", "clinica_id", "origen_registro",
	"preferencia_contacto", "acepta_recordatorios", "acepta_marketing",
	"idioma_preferido", "etiquetas", "notas_internas",
}

// StringValue dereferences an optional text column.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr is a helper for building optional text columns.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr is a helper for building optional flags.
func BoolPtr(b bool) *bool {
	return &b
}
