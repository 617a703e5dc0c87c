package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"ecuestre_go/models"
	"ecuestre_go/rules"
)

// HorseRegistry manages school and private horses.
type HorseRegistry struct {
	api     *Client
	confirm Confirmer
	gen     Generation

	mu     sync.RWMutex
	horses []models.Caballo
}

func NewHorseRegistry(api *Client, confirm Confirmer) *HorseRegistry {
	return &HorseRegistry{api: api, confirm: confirm}
}

func (h *HorseRegistry) Load(ctx context.Context) error {
	return fetch(ctx, &h.gen,
		func(ctx context.Context) ([]models.Caballo, error) {
			var horses []models.Caballo
			err := h.api.get(ctx, "/admin/caballos", nil, &horses)
			return horses, err
		},
		func(horses []models.Caballo) {
			h.mu.Lock()
			h.horses = horses
			h.mu.Unlock()
		})
}

func (h *HorseRegistry) Horses() []models.Caballo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.Caballo(nil), h.horses...)
}

// Owners lists the boarding students a private horse may belong to.
func (h *HorseRegistry) Owners(ctx context.Context) ([]models.User, error) {
	var owners []models.User
	if err := h.api.get(ctx, "/admin/duenos", nil, &owners); err != nil {
		return nil, err
	}
	return owners, nil
}

// FormOf fills the edit form of a horse.
func FormOf(horse models.Caballo) rules.HorseForm {
	return rules.HorseForm{
		Nombre:          horse.Nombre,
		Tipo:            horse.Tipo,
		Estado:          horse.Estado,
		LimiteClasesDia: horse.LimiteClasesDia,
		DuenoID:         horse.DuenoID,
	}
}

// Save creates the horse when id is 0, otherwise updates it. The form is
// normalized first; a school horse is sent without an owner.
func (h *HorseRegistry) Save(ctx context.Context, id uint, form rules.HorseForm) (*models.Caballo, error) {
	form, err := rules.NormalizeHorse(form)
	if err != nil {
		return nil, err
	}

	method, path := http.MethodPost, "/admin/caballos"
	if id != 0 {
		method, path = http.MethodPatch, fmt.Sprintf("/admin/caballos/%d", id)
	}
	var horse models.Caballo
	if err := h.api.send(ctx, method, path, form, &horse); err != nil {
		return nil, err
	}
	return &horse, h.Load(ctx)
}

// SetState moves a horse to activo, descanso or lesionado.
func (h *HorseRegistry) SetState(ctx context.Context, id uint, estado string) error {
	if !rules.ValidHorseState(estado) {
		return rules.ErrInvalidHorseState
	}
	path := fmt.Sprintf("/admin/caballos/%d/estado", id)
	if err := h.api.send(ctx, http.MethodPatch, path, map[string]string{"estado": estado}, nil); err != nil {
		return err
	}
	return h.Load(ctx)
}

func (h *HorseRegistry) Delete(ctx context.Context, id uint) error {
	if err := confirm(h.confirm, "¿Eliminar este caballo?"); err != nil {
		return err
	}
	if err := h.api.send(ctx, http.MethodDelete, fmt.Sprintf("/admin/caballos/%d", id), nil, nil); err != nil {
		return err
	}
	return h.Load(ctx)
}
