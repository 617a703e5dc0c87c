package rules

import "errors"

// Precondition failures. The messages are shown to the user; a caller that
// gets one of these must not send the request.
var (
	ErrUnknownRole       = errors.New("Rol de alumno desconocido")
	ErrInvalidMonth      = errors.New("Mes inválido")
	ErrInvalidYear       = errors.New("Año inválido")
	ErrPlanTypeMismatch  = errors.New("El plan no corresponde al tipo de alumno")
	ErrNoPlansForRole    = errors.New("No hay planes disponibles para este tipo de alumno. Crea un plan primero.")
	ErrPlanRequired      = errors.New("Debes seleccionar un plan")
	ErrInvalidHorseType  = errors.New("Tipo de caballo inválido")
	ErrInvalidHorseState = errors.New("Estado de caballo inválido")
	ErrOwnerRequired     = errors.New("Un caballo privado requiere un dueño")
	ErrNotesRequired     = errors.New("Debes ingresar una observación explicando por qué se rechaza el comprobante")
	ErrNotPending        = errors.New("El comprobante ya fue revisado")
	ErrInvalidWindow     = errors.New("Horario inválido")
	ErrPasswordMismatch  = errors.New("Las contraseñas nuevas no coinciden")
	ErrPasswordTooShort  = errors.New("La nueva contraseña debe tener al menos 6 caracteres")
)
