package client

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"ecuestre_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterFilterResetsPage(t *testing.T) {
	api := newFakeAPI(t)
	for _, name := range []string{"ana", "andrea", "bruno", "carla", "daniel"} {
		api.addStudent(name, models.RolEscuelita, true)
	}
	roster := NewRoster(api.client())
	ctx := context.Background()

	require.NoError(t, roster.SetFilter(ctx, RosterFilter{Limit: 2}))
	require.NoError(t, roster.SetPage(ctx, 3))
	assert.Equal(t, 3, roster.Page())
	require.Len(t, roster.Students(), 1)
	assert.Equal(t, 3, roster.Pagination().TotalPaginas)

	require.NoError(t, roster.SetFilter(ctx, RosterFilter{Search: "an", Limit: 2}))
	assert.Equal(t, 1, roster.Page())

	q, err := url.ParseQuery(api.lastQuery(http.MethodGet, "/api/admin/alumnos"))
	require.NoError(t, err)
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "an", q.Get("search"))
	assert.Len(t, roster.Students(), 2)
}

func TestRosterBlockShowsLabel(t *testing.T) {
	api := newFakeAPI(t)
	ana := api.addStudent("ana", models.RolEscuelita, true)
	roster := NewRoster(api.client())
	ctx := context.Background()
	require.NoError(t, roster.Load(ctx))

	student, ok := roster.Student(ana.ID)
	require.True(t, ok)
	assert.Equal(t, "Activo", roster.StatusLabel(student))

	require.NoError(t, roster.ToggleBlocked(ctx, ana.ID))
	assert.Equal(t, false, api.lastBody(http.MethodPatch, "/api/admin/alumnos/"+itoa(ana.ID)+"/bloquear")["activo"])

	student, ok = roster.Student(ana.ID)
	require.True(t, ok)
	assert.False(t, student.Activo)
	assert.Equal(t, "Bloqueado", roster.StatusLabel(student))
}
