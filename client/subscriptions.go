package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ecuestre_go/models"
	"ecuestre_go/rules"
)

// AssignForm is the state of the "assign subscription" dialog.
type AssignForm struct {
	Student models.User
	Plans   []models.Plan
	PlanID  uint
	Mes     int
	Anio    int
}

// CanSubmit reports why the form cannot be sent, or nil.
func (f *AssignForm) CanSubmit() error {
	if len(f.Plans) == 0 {
		return rules.ErrNoPlansForRole
	}
	if f.PlanID == 0 {
		return rules.ErrPlanRequired
	}
	if f.plan() == nil {
		return rules.ErrPlanTypeMismatch
	}
	if f.Mes < 1 || f.Mes > 12 {
		return rules.ErrInvalidMonth
	}
	return nil
}

func (f *AssignForm) plan() *models.Plan {
	for i := range f.Plans {
		if f.Plans[i].ID == f.PlanID {
			return &f.Plans[i]
		}
	}
	return nil
}

// SubscriptionAssigner gives a student a plan of their own type.
type SubscriptionAssigner struct {
	api    *Client
	roster *Roster
	now    func() time.Time
}

func NewSubscriptionAssigner(api *Client, roster *Roster) *SubscriptionAssigner {
	return &SubscriptionAssigner{api: api, roster: roster, now: time.Now}
}

// Options opens the form for student with the active plans of the student's
// type, defaulting to the current month.
func (a *SubscriptionAssigner) Options(ctx context.Context, student models.User) (*AssignForm, error) {
	var plans []models.Plan
	if err := a.api.get(ctx, "/admin/planes", activeOnly, &plans); err != nil {
		return nil, err
	}
	mes, anio := rules.MonthOf(a.now())
	return &AssignForm{
		Student: student,
		Plans:   rules.FilterPlans(plans, func(p models.Plan) string { return p.Tipo }, student.Rol),
		Mes:     mes,
		Anio:    anio,
	}, nil
}

// Submit creates the subscription and reloads the roster.
func (a *SubscriptionAssigner) Submit(ctx context.Context, form *AssignForm) (*models.Suscripcion, error) {
	if err := form.CanSubmit(); err != nil {
		return nil, err
	}
	if err := rules.CheckPlanForStudent(form.plan().Tipo, form.Student.Rol); err != nil {
		return nil, err
	}

	var sub models.Suscripcion
	path := fmt.Sprintf("/admin/alumnos/%d/suscripcion", form.Student.ID)
	in := assignRequest{PlanID: form.PlanID, Mes: form.Mes, Anio: form.Anio}
	if err := a.api.send(ctx, http.MethodPost, path, in, &sub); err != nil {
		return nil, err
	}
	if a.roster != nil {
		if err := a.roster.Load(ctx); err != nil {
			return &sub, err
		}
	}
	return &sub, nil
}

// EditForm holds the editable fields of one subscription.
type EditForm struct {
	PlanID          uint
	Mes             int
	Anio            int
	ClasesIncluidas int
	ClasesUsadas    int
	Activa          bool
}

// SubscriptionEditor lists, edits and deletes one student's subscriptions.
type SubscriptionEditor struct {
	api     *Client
	roster  *Roster
	confirm Confirmer
	gen     Generation

	mu      sync.RWMutex
	student uint
	subs    []models.Suscripcion
}

func NewSubscriptionEditor(api *Client, roster *Roster, confirm Confirmer) *SubscriptionEditor {
	return &SubscriptionEditor{api: api, roster: roster, confirm: confirm}
}

// Open loads the subscriptions of a student.
func (e *SubscriptionEditor) Open(ctx context.Context, studentID uint) error {
	e.mu.Lock()
	e.student = studentID
	e.subs = nil
	e.mu.Unlock()
	return e.Load(ctx)
}

func (e *SubscriptionEditor) Load(ctx context.Context) error {
	e.mu.RLock()
	path := fmt.Sprintf("/admin/alumnos/%d/suscripciones", e.student)
	e.mu.RUnlock()

	return fetch(ctx, &e.gen,
		func(ctx context.Context) ([]models.Suscripcion, error) {
			var subs []models.Suscripcion
			err := e.api.get(ctx, path, nil, &subs)
			return subs, err
		},
		func(subs []models.Suscripcion) {
			e.mu.Lock()
			e.subs = subs
			e.mu.Unlock()
		})
}

func (e *SubscriptionEditor) Subscriptions() []models.Suscripcion {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]models.Suscripcion(nil), e.subs...)
}

// Form fills the edit form of a subscription; month and year come from its start date.
func (e *SubscriptionEditor) Form(sub models.Suscripcion) EditForm {
	mes, anio := rules.MonthOf(sub.FechaInicio)
	return EditForm{
		PlanID:          sub.PlanID,
		Mes:             mes,
		Anio:            anio,
		ClasesIncluidas: sub.ClasesIncluidas,
		ClasesUsadas:    sub.ClasesUsadas,
		Activa:          sub.Activa,
	}
}

// Save sends the form and reloads the list.
func (e *SubscriptionEditor) Save(ctx context.Context, subID uint, f EditForm) (*models.Suscripcion, error) {
	if f.PlanID == 0 {
		return nil, rules.ErrPlanRequired
	}
	if f.Mes < 1 || f.Mes > 12 {
		return nil, rules.ErrInvalidMonth
	}
	in := subscriptionUpdate{
		PlanID:          f.PlanID,
		Mes:             f.Mes,
		Anio:            f.Anio,
		ClasesIncluidas: f.ClasesIncluidas,
		ClasesUsadas:    f.ClasesUsadas,
		Activa:          f.Activa,
	}
	var sub models.Suscripcion
	if err := e.api.send(ctx, http.MethodPatch, fmt.Sprintf("/admin/suscripciones/%d", subID), in, &sub); err != nil {
		return nil, err
	}
	if err := e.Load(ctx); err != nil {
		return &sub, err
	}
	return &sub, nil
}

// Delete removes a subscription after confirmation, then reloads both the
// list and the roster.
func (e *SubscriptionEditor) Delete(ctx context.Context, subID uint) error {
	if err := confirm(e.confirm, "¿Eliminar esta suscripción?"); err != nil {
		return err
	}
	if err := e.api.send(ctx, http.MethodDelete, fmt.Sprintf("/admin/suscripciones/%d", subID), nil, nil); err != nil {
		return err
	}
	if err := e.Load(ctx); err != nil {
		return err
	}
	if e.roster != nil {
		return e.roster.Load(ctx)
	}
	return nil
}
