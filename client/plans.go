package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"ecuestre_go/models"
)

var activeOnly = url.Values{"activo": {"true"}}

// PlanCatalog manages subscription plans.
type PlanCatalog struct {
	api     *Client
	confirm Confirmer
	gen     Generation

	mu    sync.RWMutex
	plans []models.Plan
}

func NewPlanCatalog(api *Client, confirm Confirmer) *PlanCatalog {
	return &PlanCatalog{api: api, confirm: confirm}
}

func (p *PlanCatalog) Load(ctx context.Context) error {
	return fetch(ctx, &p.gen,
		func(ctx context.Context) ([]models.Plan, error) {
			var plans []models.Plan
			err := p.api.get(ctx, "/admin/planes", nil, &plans)
			return plans, err
		},
		func(plans []models.Plan) {
			p.mu.Lock()
			p.plans = plans
			p.mu.Unlock()
		})
}

func (p *PlanCatalog) Plans() []models.Plan {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.Plan(nil), p.plans...)
}

func (p *PlanCatalog) Create(ctx context.Context, in PlanInput) (*models.Plan, error) {
	var plan models.Plan
	if err := p.api.send(ctx, http.MethodPost, "/admin/planes", in, &plan); err != nil {
		return nil, err
	}
	return &plan, p.Load(ctx)
}

func (p *PlanCatalog) Update(ctx context.Context, id uint, in PlanInput) (*models.Plan, error) {
	var plan models.Plan
	if err := p.api.send(ctx, http.MethodPatch, fmt.Sprintf("/admin/planes/%d", id), in, &plan); err != nil {
		return nil, err
	}
	return &plan, p.Load(ctx)
}

func (p *PlanCatalog) Delete(ctx context.Context, id uint) error {
	if err := confirm(p.confirm, "¿Eliminar este plan?"); err != nil {
		return err
	}
	if err := p.api.send(ctx, http.MethodDelete, fmt.Sprintf("/admin/planes/%d", id), nil, nil); err != nil {
		return err
	}
	return p.Load(ctx)
}
