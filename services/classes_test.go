package services

import (
	"errors"
	"testing"
	"time"

	"ecuestre_go/models"
	"ecuestre_go/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type classFixture struct {
	db      *gorm.DB
	svc     *ClassService
	student *models.User
	teacher *models.Profesor
	horse   *models.Caballo
	sub     *models.Suscripcion
}

func newClassFixture(t *testing.T) *classFixture {
	t.Helper()
	db := newTestDB(t)
	f := &classFixture{db: db, svc: NewClassService(db)}
	f.student = seedStudent(t, db, "ana", models.RolEscuelita)
	f.teacher = seedTeacher(t, db, "laura", 40, 30)
	f.horse = seedHorse(t, db, "Canela", 2)
	plan := seedPlan(t, db, "Escuelita 2", models.RolEscuelita, 2, 20000)
	sub, err := NewSubscriptionService(db, nil).Assign(f.student.ID, AssignInput{PlanID: plan.ID, Mes: 3, Anio: 2025})
	require.NoError(t, err)
	f.sub = sub
	return f
}

func (f *classFixture) input(fecha, inicio, fin string) ClassInput {
	return ClassInput{
		AlumnoID:   f.student.ID,
		ProfesorID: f.teacher.ID,
		CaballoID:  f.horse.ID,
		Fecha:      fecha,
		HoraInicio: inicio,
		HoraFin:    fin,
	}
}

func TestClassCreateHonoursHorseLimit(t *testing.T) {
	f := newClassFixture(t)

	c, err := f.svc.Create(f.input("2025-03-10", "09:00", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, models.ClaseProgramada, c.Estado)
	assert.Equal(t, models.TipoClaseEscuelita, c.Tipo)

	_, err = f.svc.Create(f.input("2025-03-10", "10:00", "11:00"))
	require.NoError(t, err)

	_, err = f.svc.Create(f.input("2025-03-10", "11:00", "12:00"))
	assert.ErrorIs(t, err, ErrConflict)

	// another day is free again
	_, err = f.svc.Create(f.input("2025-03-11", "11:00", "12:00"))
	require.NoError(t, err)
}

func TestClassCreateCancelledDoNotCountTowardsLimit(t *testing.T) {
	f := newClassFixture(t)
	a, err := f.svc.Create(f.input("2025-03-10", "09:00", "10:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(f.input("2025-03-10", "10:00", "11:00"))
	require.NoError(t, err)

	_, err = f.svc.SetState(a.ID, models.ClaseCancelada)
	require.NoError(t, err)

	_, err = f.svc.Create(f.input("2025-03-10", "11:00", "12:00"))
	assert.NoError(t, err)
}

func TestClassCreateNeedsActiveHorse(t *testing.T) {
	f := newClassFixture(t)
	_, err := NewHorseService(f.db).SetState(f.horse.ID, rules.HorseInjured)
	require.NoError(t, err)

	_, err = f.svc.Create(f.input("2025-03-10", "09:00", "10:00"))
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestClassCreateChecksTeacherWindows(t *testing.T) {
	f := newClassFixture(t)
	// 2025-03-10 is a Monday
	require.NoError(t, replaceWindows(f.db, f.teacher.ID, []rules.Window{{Dia: 1, Inicio: "09:00", Fin: "12:00"}}))

	_, err := f.svc.Create(f.input("2025-03-10", "09:30", "10:30"))
	require.NoError(t, err)

	_, err = f.svc.Create(f.input("2025-03-10", "11:30", "12:30"))
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.Create(f.input("2025-03-11", "09:30", "10:30"))
	assert.True(t, errors.As(err, &ve))
}

func TestClassCreateRejectsBadInput(t *testing.T) {
	f := newClassFixture(t)
	var ve *ValidationError

	_, err := f.svc.Create(f.input("10/03/2025", "09:00", "10:00"))
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.Create(f.input("2025-03-10", "10:00", "09:00"))
	assert.True(t, errors.As(err, &ve))

	in := f.input("2025-03-10", "09:00", "10:00")
	in.CaballoID = 999
	_, err = f.svc.Create(in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompletingClassesConsumesSubscriptionPastAllowance(t *testing.T) {
	f := newClassFixture(t)
	require.NoError(t, f.db.Model(f.horse).Update("limite_clases_dia", 5).Error)

	for _, hora := range []string{"09:00", "10:00", "11:00"} {
		c, err := f.svc.Create(f.input("2025-03-12", hora, hora[:2]+":45"))
		require.NoError(t, err)
		_, err = f.svc.SetState(c.ID, models.ClaseCompletada)
		require.NoError(t, err)
	}

	var sub models.Suscripcion
	require.NoError(t, f.db.First(&sub, f.sub.ID).Error)
	assert.Equal(t, 2, sub.ClasesIncluidas)
	assert.Equal(t, 3, sub.ClasesUsadas)
}

func TestCompletingClassAfterMonthExpired(t *testing.T) {
	f := newClassFixture(t)
	c, err := f.svc.Create(f.input("2025-03-31", "09:00", "10:00"))
	require.NoError(t, err)

	expired, err := NewSubscriptionService(f.db, nil).ExpireEnded(time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	_, err = f.svc.SetState(c.ID, models.ClaseCompletada)
	require.NoError(t, err)

	var sub models.Suscripcion
	require.NoError(t, f.db.First(&sub, f.sub.ID).Error)
	assert.False(t, sub.Activa)
	assert.Equal(t, 1, sub.ClasesUsadas)
}

func TestClassStateOnlyFromScheduled(t *testing.T) {
	f := newClassFixture(t)
	c, err := f.svc.Create(f.input("2025-03-10", "09:00", "10:00"))
	require.NoError(t, err)

	_, err = f.svc.SetState(c.ID, "perdida")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.SetState(c.ID, models.ClaseCancelada)
	require.NoError(t, err)
	_, err = f.svc.SetState(c.ID, models.ClaseCompletada)
	assert.ErrorIs(t, err, ErrConflict)

	var sub models.Suscripcion
	require.NoError(t, f.db.First(&sub, f.sub.ID).Error)
	assert.Equal(t, 0, sub.ClasesUsadas)
}

func TestAgendaWindow(t *testing.T) {
	f := newClassFixture(t)
	_, err := f.svc.Create(f.input("2025-03-10", "09:00", "10:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(f.input("2025-03-20", "09:00", "10:00"))
	require.NoError(t, err)

	agenda, err := f.svc.Agenda(date(2025, time.March, 1), date(2025, time.March, 15))
	require.NoError(t, err)
	require.Len(t, agenda, 1)
	require.NotNil(t, agenda[0].Profesor)
	require.NotNil(t, agenda[0].Profesor.User)
	assert.Equal(t, "laura", agenda[0].Profesor.User.Nombre)

	_, err = f.svc.Agenda(date(2025, time.March, 15), date(2025, time.March, 1))
	assert.Error(t, err)
}
