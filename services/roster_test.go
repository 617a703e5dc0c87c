package services

import (
	"errors"
	"fmt"
	"testing"

	"ecuestre_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterListFiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 25; i++ {
		seedStudent(t, db, fmt.Sprintf("esc%02d", i), models.RolEscuelita)
	}
	seedStudent(t, db, "marta", models.RolPensionCompleta)
	seedTeacher(t, db, "profe", 0, 0)

	svc := NewRosterService(db)

	page, err := svc.List(RosterFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Alumnos, 20)
	assert.Equal(t, int64(26), page.Paginacion.Total)
	assert.Equal(t, 2, page.Paginacion.TotalPaginas)

	page, err = svc.List(RosterFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Alumnos, 6)

	page, err = svc.List(RosterFilter{Rol: models.RolPensionCompleta})
	require.NoError(t, err)
	require.Len(t, page.Alumnos, 1)
	assert.Equal(t, "marta", page.Alumnos[0].Nombre)

	page, err = svc.List(RosterFilter{Search: "MART"})
	require.NoError(t, err)
	assert.Len(t, page.Alumnos, 1)

	_, err = svc.List(RosterFilter{Rol: models.RolAdmin})
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestRosterSetActive(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "ana", models.RolEscuelita)
	svc := NewRosterService(db)

	blocked, err := svc.SetActive(student.ID, false)
	require.NoError(t, err)
	assert.False(t, blocked.Activo)

	page, err := svc.List(RosterFilter{Activo: boolPtr(false)})
	require.NoError(t, err)
	require.Len(t, page.Alumnos, 1)
	assert.Equal(t, student.ID, page.Alumnos[0].ID)

	_, err = svc.SetActive(9999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRosterOwnersOnlyBoardingStudents(t *testing.T) {
	db := newTestDB(t)
	seedStudent(t, db, "esc", models.RolEscuelita)
	full := seedStudent(t, db, "full", models.RolPensionCompleta)
	half := seedStudent(t, db, "half", models.RolMediaPension)

	owners, err := NewRosterService(db).Owners()
	require.NoError(t, err)

	var ids []uint
	for _, o := range owners {
		ids = append(ids, o.ID)
	}
	assert.ElementsMatch(t, []uint{full.ID, half.ID}, ids)
}

func TestRosterLinkLine(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "ana", models.RolEscuelita)
	svc := NewRosterService(db)

	linked, err := svc.LinkLine(" ANA@ecuestre.test ", "U123")
	require.NoError(t, err)
	assert.Equal(t, student.ID, linked.ID)
	assert.Equal(t, "U123", linked.LineID)

	_, err = svc.LinkLine("nadie@ecuestre.test", "U999")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := svc.UnlinkLine("U123")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	reloaded, err := svc.Student(student.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.LineID)
}
