package client

import (
	"context"
	"net/http"
	"testing"

	"ecuestre_go/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTeacherSurfacesPassword(t *testing.T) {
	api := newFakeAPI(t)
	registry := NewTeacherRegistry(api.client(), AlwaysConfirm)

	created, err := registry.Create(context.Background(), TeacherInput{
		Nombre:   "Laura",
		Email:    "laura@ecuestre.com",
		Horarios: []rules.Window{{Dia: 2, Inicio: "09:00", Fin: "12:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Xy7kQ2pa", created.Password)
	assert.Equal(t, "Laura", created.Profesor.User.Nombre)

	body := api.lastBody(http.MethodPost, "/api/admin/profesores")
	horarios := body["horarios"].([]interface{})
	require.Len(t, horarios, 1)
	assert.Equal(t, "09:00", horarios[0].(map[string]interface{})["hora_inicio"])
}

func TestTeacherWindowsValidatedBeforeSending(t *testing.T) {
	api := newFakeAPI(t)
	registry := NewTeacherRegistry(api.client(), AlwaysConfirm)

	_, err := registry.Create(context.Background(), TeacherInput{
		Nombre:   "Laura",
		Horarios: []rules.Window{{Dia: 7, Inicio: "09:00", Fin: "12:00"}},
	})
	assert.ErrorIs(t, err, rules.ErrInvalidWindow)
	assert.Equal(t, 0, api.hitCount(http.MethodPost, "/api/admin/profesores"))
}
