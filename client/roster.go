package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"ecuestre_go/models"
	"ecuestre_go/rules"
)

// RosterFilter narrows the student list. Zero values mean no filter.
type RosterFilter struct {
	Activo *bool
	Rol    string
	Search string
	Limit  int
}

func (f RosterFilter) query(page int) url.Values {
	q := url.Values{}
	if f.Activo != nil {
		q.Set("activo", strconv.FormatBool(*f.Activo))
	}
	if f.Rol != "" {
		q.Set("rol", f.Rol)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	q.Set("page", strconv.Itoa(page))
	return q
}

// Roster is the paginated student list with block/unblock.
type Roster struct {
	api *Client
	gen Generation

	mu     sync.RWMutex
	filter RosterFilter
	page   int
	list   RosterPage
}

func NewRoster(api *Client) *Roster {
	return &Roster{api: api, page: 1}
}

// SetFilter replaces the filter and goes back to the first page.
func (r *Roster) SetFilter(ctx context.Context, f RosterFilter) error {
	r.mu.Lock()
	r.filter = f
	r.page = 1
	r.mu.Unlock()
	return r.Load(ctx)
}

func (r *Roster) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	r.mu.Lock()
	r.page = page
	r.mu.Unlock()
	return r.Load(ctx)
}

// Load fetches the current page with the current filter.
func (r *Roster) Load(ctx context.Context) error {
	r.mu.RLock()
	q := r.filter.query(r.page)
	r.mu.RUnlock()

	return fetch(ctx, &r.gen,
		func(ctx context.Context) (RosterPage, error) {
			var page RosterPage
			err := r.api.get(ctx, "/admin/alumnos", q, &page)
			return page, err
		},
		func(page RosterPage) {
			r.mu.Lock()
			r.list = page
			r.mu.Unlock()
		})
}

func (r *Roster) Students() []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.User(nil), r.list.Alumnos...)
}

func (r *Roster) Pagination() Pagination {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list.Paginacion
}

func (r *Roster) Page() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page
}

func (r *Roster) Filter() RosterFilter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter
}

// Student returns a student of the loaded page.
func (r *Roster) Student(id uint) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.list.Alumnos {
		if s.ID == id {
			return s, true
		}
	}
	return models.User{}, false
}

// StatusLabel is the label shown for a student's active flag.
func (r *Roster) StatusLabel(student models.User) string {
	return rules.StatusLabel(student.Activo)
}

// SetBlocked blocks or unblocks a student and reloads the list.
func (r *Roster) SetBlocked(ctx context.Context, studentID uint, blocked bool) error {
	path := fmt.Sprintf("/admin/alumnos/%d/bloquear", studentID)
	if err := r.api.send(ctx, http.MethodPatch, path, map[string]bool{"activo": !blocked}, nil); err != nil {
		return err
	}
	return r.Load(ctx)
}

// ToggleBlocked flips the active flag of a loaded student.
func (r *Roster) ToggleBlocked(ctx context.Context, studentID uint) error {
	student, ok := r.Student(studentID)
	if !ok {
		return fmt.Errorf("alumno %d no está en la lista", studentID)
	}
	return r.SetBlocked(ctx, studentID, student.Activo)
}
