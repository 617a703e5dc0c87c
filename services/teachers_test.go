package services

import (
	"context"
	"errors"
	"testing"

	"ecuestre_go/models"
	"ecuestre_go/rules"
	"ecuestre_go/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherCreateReturnsInitialPassword(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewTeacherService(db, mailer)

	created, err := svc.Create(context.Background(), TeacherInput{
		Nombre:              "Laura",
		Apellido:            "Paz",
		Email:               " Laura@Ecuestre.test ",
		PorcentajeEscuelita: floatPtr(40),
		Horarios: []rules.Window{
			{Dia: 2, Inicio: "09:00", Fin: "13:00"},
			{Dia: 4, Inicio: "15:00:00", Fin: "19:00"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, created.Password, defaultPasswordLength)
	require.NotNil(t, created.Profesor.User)
	assert.Equal(t, "laura@ecuestre.test", created.Profesor.User.Email)
	assert.Equal(t, models.RolProfesor, created.Profesor.User.Rol)
	assert.Equal(t, 40.0, created.Profesor.PorcentajeEscuelita)
	require.Len(t, created.Profesor.Horarios, 2)
	assert.Equal(t, "15:00", created.Profesor.Horarios[1].HoraInicio)

	var user models.User
	require.NoError(t, db.First(&user, created.Profesor.UserID).Error)
	assert.NoError(t, utils.CheckPassword(created.Password, user.Password))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "laura@ecuestre.test", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, created.Password)

	_, err = svc.Create(context.Background(), TeacherInput{Nombre: "Otra", Email: "laura@ecuestre.test"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTeacherCreateRejectsBadWindow(t *testing.T) {
	svc := NewTeacherService(newTestDB(t), nil)
	_, err := svc.Create(context.Background(), TeacherInput{
		Nombre:   "Laura",
		Email:    "laura@ecuestre.test",
		Horarios: []rules.Window{{Dia: 7, Inicio: "09:00", Fin: "10:00"}},
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.ErrorIs(t, err, rules.ErrInvalidWindow)
}

func TestTeacherUpdateKeepsEmailAndReplacesWindows(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeacherService(db, nil)
	created, err := svc.Create(context.Background(), TeacherInput{
		Nombre:   "Laura",
		Email:    "laura@ecuestre.test",
		Horarios: []rules.Window{{Dia: 1, Inicio: "09:00", Fin: "12:00"}},
	})
	require.NoError(t, err)
	id := created.Profesor.ID

	_, err = svc.Update(id, TeacherInput{Nombre: "Laura", Email: "nueva@ecuestre.test"})
	assert.Error(t, err)

	updated, err := svc.Update(id, TeacherInput{
		Nombre:            "Laura B.",
		Email:             "laura@ecuestre.test",
		Activo:            boolPtr(false),
		PorcentajePension: floatPtr(25),
		Horarios:          []rules.Window{{Dia: 3, Inicio: "10:00", Fin: "11:00"}, {Dia: 5, Inicio: "10:00", Fin: "11:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Laura B.", updated.User.Nombre)
	assert.False(t, updated.Activo)
	assert.False(t, updated.User.Activo)
	assert.Equal(t, 25.0, updated.PorcentajePension)

	windows, err := svc.Windows(id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []rules.Window{
		{Dia: 3, Inicio: "10:00", Fin: "11:00"},
		{Dia: 5, Inicio: "10:00", Fin: "11:00"},
	}, windows)

	// nil keeps the windows, an empty list clears them
	_, err = svc.Update(id, TeacherInput{Nombre: "Laura B."})
	require.NoError(t, err)
	windows, err = svc.Windows(id)
	require.NoError(t, err)
	assert.Len(t, windows, 2)

	_, err = svc.Update(id, TeacherInput{Nombre: "Laura B.", Horarios: []rules.Window{}})
	require.NoError(t, err)
	windows, err = svc.Windows(id)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestTeacherDeleteBlocksLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeacherService(db, nil)
	teacher := seedTeacher(t, db, "pablo", 30, 30)

	require.NoError(t, svc.Delete(teacher.ID))
	_, err := svc.Get(teacher.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var user models.User
	require.NoError(t, db.First(&user, teacher.UserID).Error)
	assert.False(t, user.Activo)
}

func TestTeacherToggleKeepsProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeacherService(db, nil)
	teacher := seedTeacher(t, db, "marta", 40, 20)

	updated, err := svc.Update(teacher.ID, TeacherInput{Activo: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Activo)
	assert.Equal(t, "marta", updated.User.Nombre)
	assert.Equal(t, 40.0, updated.PorcentajeEscuelita)
}
