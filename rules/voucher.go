package rules

import "strings"

// Voucher states
const (
	VoucherPending  = "pendiente"
	VoucherApproved = "aprobado"
	VoucherRejected = "rechazado"
)

// CanTransition reports whether a voucher may move from one state to another.
// Only pending vouchers move, and only to a terminal state.
func CanTransition(from, to string) bool {
	return from == VoucherPending && (to == VoucherApproved || to == VoucherRejected)
}

// CheckRejection validates rejection notes; blank or whitespace-only notes are refused.
func CheckRejection(observaciones string) error {
	if strings.TrimSpace(observaciones) == "" {
		return ErrNotesRequired
	}
	return nil
}
