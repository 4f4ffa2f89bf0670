package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeJSONShape(t *testing.T) {
	ok, err := json.Marshal(Ok([]string{"a"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":["a"],"error":null}`, string(ok))

	fail, err := json.Marshal(Fail([]string{}, "relation does not exist"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"data":[],"error":"relation does not exist"}`, string(fail))
}

func TestCallStatusLabel(t *testing.T) {
	assert.Equal(t, StatusProcesado, AppointmentCall{Procesado: true}.StatusLabel())
	assert.Equal(t, StatusPendiente, AppointmentCall{}.StatusLabel())
}
