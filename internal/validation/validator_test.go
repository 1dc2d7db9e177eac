package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ClientName string `json:"clientName" validate:"required"`
	Date       string `json:"appointmentDate" validate:"required,date"`
	Status     string `json:"status" validate:"omitempty,status"`
}

func TestFirstErrorUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(sample{Date: ""})
	require.Error(t, err)

	field, tag, ok := v.FirstError(err)
	require.True(t, ok)
	assert.Equal(t, "clientName", field)
	assert.Equal(t, "required", tag)
	assert.Len(t, v.ValidationErrors(err), 2)
}

func TestCustomRules(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(sample{ClientName: "A", Date: "2024-05-01", Status: "in-progress"}))

	err := v.Struct(sample{ClientName: "A", Date: "01/05/2024"})
	field, tag, _ := v.FirstError(err)
	assert.Equal(t, "appointmentDate", field)
	assert.Equal(t, "date", tag)

	err = v.Struct(sample{ClientName: "A", Date: "2024-05-01", Status: "pending"})
	field, _, _ = v.FirstError(err)
	assert.Equal(t, "status", field)
}

func TestVar(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("2024-02-29", "date"))
	assert.Error(t, v.Var("2023-02-29", "date"))
	assert.NoError(t, v.Var("cancelled", "status"))
	assert.Error(t, v.Var("Completed", "status"))
}

func TestFirstErrorNil(t *testing.T) {
	_, _, ok := New().FirstError(nil)
	assert.False(t, ok)
}
