package services

import (
	"errors"
	"testing"

	"ecuestre_go/models"
	"ecuestre_go/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHorseSchoolDropsOwner(t *testing.T) {
	db := newTestDB(t)
	owner := seedStudent(t, db, "jose", models.RolPensionCompleta)
	svc := NewHorseService(db)

	horse, err := svc.Create(rules.HorseForm{Nombre: "Tornado", Tipo: rules.HorsePrivate, DuenoID: uintPtr(owner.ID)})
	require.NoError(t, err)
	require.NotNil(t, horse.DuenoID)
	assert.Equal(t, models.DefaultLimiteDia, horse.LimiteClasesDia)
	assert.Equal(t, models.EstadoActivo, horse.Estado)

	updated, err := svc.Update(horse.ID, rules.HorseForm{
		Nombre:  "Tornado",
		Tipo:    rules.HorseSchool,
		Estado:  rules.HorseActive,
		DuenoID: uintPtr(owner.ID),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DuenoID)
	assert.Nil(t, updated.Dueno)
}

func TestHorsePrivateNeedsBoardingOwner(t *testing.T) {
	db := newTestDB(t)
	esc := seedStudent(t, db, "ana", models.RolEscuelita)
	svc := NewHorseService(db)

	_, err := svc.Create(rules.HorseForm{Nombre: "Luna", Tipo: rules.HorsePrivate})
	assert.ErrorIs(t, err, rules.ErrOwnerRequired)

	_, err = svc.Create(rules.HorseForm{Nombre: "Luna", Tipo: rules.HorsePrivate, DuenoID: uintPtr(esc.ID)})
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = svc.Create(rules.HorseForm{Nombre: "Luna", Tipo: rules.HorsePrivate, DuenoID: uintPtr(4242)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHorseSetStateFromAnyState(t *testing.T) {
	db := newTestDB(t)
	horse := seedHorse(t, db, "Canela", 3)
	svc := NewHorseService(db)

	for _, estado := range []string{rules.HorseInjured, rules.HorseResting, rules.HorseActive, rules.HorseInjured} {
		h, err := svc.SetState(horse.ID, estado)
		require.NoError(t, err)
		assert.Equal(t, estado, h.Estado)
	}

	_, err := svc.SetState(horse.ID, "vendido")
	assert.ErrorIs(t, err, rules.ErrInvalidHorseState)

	_, err = svc.SetState(777, rules.HorseActive)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHorseListAndDelete(t *testing.T) {
	db := newTestDB(t)
	a := seedHorse(t, db, "Alfa", 3)
	seedHorse(t, db, "Beta", 3)
	svc := NewHorseService(db)

	_, err := svc.SetState(a.ID, rules.HorseResting)
	require.NoError(t, err)

	resting, err := svc.List("", rules.HorseResting)
	require.NoError(t, err)
	require.Len(t, resting, 1)
	assert.Equal(t, "Alfa", resting[0].Nombre)

	require.NoError(t, svc.Delete(a.ID))
	all, err := svc.List("", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
