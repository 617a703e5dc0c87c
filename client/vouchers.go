package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"ecuestre_go/models"
	"ecuestre_go/rules"
)

// Voucher queue filters
const (
	FilterPending = "pendientes"
	FilterAll     = "todos"
)

// VoucherQueue is the payment voucher review queue.
type VoucherQueue struct {
	api     *Client
	confirm Confirmer
	gen     Generation

	mu       sync.RWMutex
	filter   string
	vouchers []models.Comprobante
}

func NewVoucherQueue(api *Client, confirm Confirmer) *VoucherQueue {
	return &VoucherQueue{api: api, confirm: confirm, filter: FilterPending}
}

// SetFilter switches between the pending queue and every voucher.
func (q *VoucherQueue) SetFilter(ctx context.Context, filter string) error {
	if filter != FilterAll {
		filter = FilterPending
	}
	q.mu.Lock()
	q.filter = filter
	q.mu.Unlock()
	return q.Load(ctx)
}

func (q *VoucherQueue) Filter() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.filter
}

func (q *VoucherQueue) Load(ctx context.Context) error {
	path, query := "/comprobantes/pendientes", url.Values(nil)
	if q.Filter() == FilterAll {
		path, query = "/comprobantes", url.Values{"estado": {""}}
	}
	return fetch(ctx, &q.gen,
		func(ctx context.Context) ([]models.Comprobante, error) {
			var vouchers []models.Comprobante
			err := q.api.get(ctx, path, query, &vouchers)
			return vouchers, err
		},
		func(vouchers []models.Comprobante) {
			q.mu.Lock()
			q.vouchers = vouchers
			q.mu.Unlock()
		})
}

func (q *VoucherQueue) Vouchers() []models.Comprobante {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]models.Comprobante(nil), q.vouchers...)
}

// Approve marks a pending voucher approved after confirmation.
func (q *VoucherQueue) Approve(ctx context.Context, v models.Comprobante) error {
	if !rules.CanTransition(v.Estado, rules.VoucherApproved) {
		return rules.ErrNotPending
	}
	if err := confirm(q.confirm, "¿Aprobar este comprobante?"); err != nil {
		return err
	}
	path := fmt.Sprintf("/comprobantes/%d/aprobar", v.ID)
	if err := q.api.send(ctx, http.MethodPost, path, nil, nil); err != nil {
		return err
	}
	return q.Load(ctx)
}

// Reject refuses a pending voucher. Blank notes are refused before anything
// is sent; the notes go out exactly as typed.
func (q *VoucherQueue) Reject(ctx context.Context, v models.Comprobante, observaciones string) error {
	if err := rules.CheckRejection(observaciones); err != nil {
		return err
	}
	if !rules.CanTransition(v.Estado, rules.VoucherRejected) {
		return rules.ErrNotPending
	}
	if err := confirm(q.confirm, "¿Rechazar este comprobante?"); err != nil {
		return err
	}
	path := fmt.Sprintf("/comprobantes/%d/rechazar", v.ID)
	body := map[string]string{"observaciones": observaciones}
	if err := q.api.send(ctx, http.MethodPost, path, body, nil); err != nil {
		return err
	}
	return q.Load(ctx)
}
