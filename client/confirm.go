package client

import "errors"

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("Acción cancelada")

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool {
	return f(message)
}

// AlwaysConfirm accepts every confirmation.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

func confirm(c Confirmer, message string) error {
	if c == nil || !c.Confirm(message) {
		return ErrCancelled
	}
	return nil
}
