package rules

import "time"

// FilterPlans keeps the plans whose type equals the student's role.
func FilterPlans[T any](plans []T, tipo func(T) string, rol string) []T {
	out := make([]T, 0, len(plans))
	for _, p := range plans {
		if tipo(p) == rol {
			out = append(out, p)
		}
	}
	return out
}

// CheckPlanForStudent enforces that a plan may only be assigned to a student
// whose role equals the plan type.
func CheckPlanForStudent(planTipo, rol string) error {
	if !IsStudentRole(rol) {
		return ErrUnknownRole
	}
	if planTipo != rol {
		return ErrPlanTypeMismatch
	}
	return nil
}

// ValidityWindow returns the start and end of a subscription created for
// month/year. Escuelita subscriptions cover exactly that calendar month;
// boarding subscriptions start on the first of the month and never end.
func ValidityWindow(rol string, mes, anio int) (time.Time, *time.Time, error) {
	if mes < 1 || mes > 12 {
		return time.Time{}, nil, ErrInvalidMonth
	}
	if anio < 2000 || anio > 2100 {
		return time.Time{}, nil, ErrInvalidYear
	}
	inicio := time.Date(anio, time.Month(mes), 1, 0, 0, 0, 0, time.UTC)

	switch {
	case rol == RolEscuelita:
		fin := LastDayOfMonth(inicio)
		return inicio, &fin, nil
	case IsPensionRole(rol):
		return inicio, nil, nil
	default:
		return time.Time{}, nil, ErrUnknownRole
	}
}

// LastDayOfMonth returns midnight UTC of the last day of t's month.
func LastDayOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// MonthOf returns the month and year a date falls in, as shown in edit forms.
func MonthOf(t time.Time) (int, int) {
	return int(t.Month()), t.Year()
}

// Expired reports whether a bounded subscription ended before now.
// Open-ended subscriptions never expire.
func Expired(fin *time.Time, now time.Time) bool {
	if fin == nil {
		return false
	}
	endOfDay := fin.AddDate(0, 0, 1)
	return !now.Before(endOfDay)
}

// Covers reports whether day falls inside the validity window.
func Covers(inicio time.Time, fin *time.Time, day time.Time) bool {
	if day.Before(inicio) {
		return false
	}
	return !Expired(fin, day)
}

// ClassValue is the share of a plan's price that one class represents.
func ClassValue(precio float64, clasesMes int) float64 {
	if clasesMes <= 0 {
		return 0
	}
	return precio / float64(clasesMes)
}
