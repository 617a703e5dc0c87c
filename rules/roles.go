package rules

// Student roles. A plan's tipo takes one of these values.
const (
	RolEscuelita       = "escuelita"
	RolPensionCompleta = "pension_completa"
	RolMediaPension    = "media_pension"
)

// StudentRoles lists the roles a student (and a plan) may have.
var StudentRoles = []string{RolEscuelita, RolPensionCompleta, RolMediaPension}

func IsStudentRole(rol string) bool {
	for _, r := range StudentRoles {
		if r == rol {
			return true
		}
	}
	return false
}

// IsPensionRole reports whether rol is a boarding membership. Boarding
// students get open-ended subscriptions and may own private horses.
func IsPensionRole(rol string) bool {
	return rol == RolPensionCompleta || rol == RolMediaPension
}

// StatusLabel is the roster label for a student's active flag.
func StatusLabel(activo bool) string {
	if activo {
		return "Activo"
	}
	return "Bloqueado"
}

// TotalPages returns the page count for a paginated list, never less than 1.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ValidateNewPassword checks a password change form.
func ValidateNewPassword(nueva, confirmar string) error {
	if nueva != confirmar {
		return ErrPasswordMismatch
	}
	if len(nueva) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}
