package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"ecuestre_go/models"
	"ecuestre_go/rules"
)

// TeacherRegistry manages teachers and their weekly availability.
type TeacherRegistry struct {
	api     *Client
	confirm Confirmer
	gen     Generation

	mu       sync.RWMutex
	teachers []models.Profesor
}

func NewTeacherRegistry(api *Client, confirm Confirmer) *TeacherRegistry {
	return &TeacherRegistry{api: api, confirm: confirm}
}

func (t *TeacherRegistry) Load(ctx context.Context) error {
	return fetch(ctx, &t.gen,
		func(ctx context.Context) ([]models.Profesor, error) {
			var teachers []models.Profesor
			err := t.api.get(ctx, "/admin/profesores", nil, &teachers)
			return teachers, err
		},
		func(teachers []models.Profesor) {
			t.mu.Lock()
			t.teachers = teachers
			t.mu.Unlock()
		})
}

func (t *TeacherRegistry) Teachers() []models.Profesor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.Profesor(nil), t.teachers...)
}

// Create registers a teacher. The returned password is the only copy of the
// generated default and must be shown to the admin.
func (t *TeacherRegistry) Create(ctx context.Context, in TeacherInput) (*CreatedTeacher, error) {
	if err := checkWindows(in.Horarios); err != nil {
		return nil, err
	}
	var created CreatedTeacher
	if err := t.api.send(ctx, http.MethodPost, "/admin/profesores", in, &created); err != nil {
		return nil, err
	}
	return &created, t.Load(ctx)
}

func (t *TeacherRegistry) Update(ctx context.Context, id uint, in TeacherInput) (*models.Profesor, error) {
	if err := checkWindows(in.Horarios); err != nil {
		return nil, err
	}
	var teacher models.Profesor
	if err := t.api.send(ctx, http.MethodPatch, fmt.Sprintf("/admin/profesores/%d", id), in, &teacher); err != nil {
		return nil, err
	}
	return &teacher, t.Load(ctx)
}

// SetActive toggles a teacher without touching the rest of the profile.
func (t *TeacherRegistry) SetActive(ctx context.Context, id uint, activo bool) error {
	path := fmt.Sprintf("/admin/profesores/%d", id)
	if err := t.api.send(ctx, http.MethodPatch, path, map[string]bool{"activo": activo}, nil); err != nil {
		return err
	}
	return t.Load(ctx)
}

func (t *TeacherRegistry) Delete(ctx context.Context, id uint) error {
	if err := confirm(t.confirm, "¿Eliminar este profesor?"); err != nil {
		return err
	}
	if err := t.api.send(ctx, http.MethodDelete, fmt.Sprintf("/admin/profesores/%d", id), nil, nil); err != nil {
		return err
	}
	return t.Load(ctx)
}

// Windows returns a teacher's availability; an empty list means always available.
func (t *TeacherRegistry) Windows(ctx context.Context, id uint) ([]rules.Window, error) {
	var windows []rules.Window
	if err := t.api.get(ctx, fmt.Sprintf("/admin/profesores/%d/horarios", id), nil, &windows); err != nil {
		return nil, err
	}
	return windows, nil
}

func checkWindows(windows []rules.Window) error {
	for _, w := range windows {
		if err := rules.ValidateWindow(w); err != nil {
			return err
		}
	}
	return nil
}
