package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Window is a weekly availability window. Dia follows time.Weekday (0 = Sunday).
type Window struct {
	Dia    int    `json:"dia_semana"`
	Inicio string `json:"hora_inicio"`
	Fin    string `json:"hora_fin"`
}

// ParseClock parses "HH:MM" (seconds allowed and ignored) into minutes after midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("hora %q: %w", s, ErrInvalidWindow)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("hora %q: %w", s, ErrInvalidWindow)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("hora %q: %w", s, ErrInvalidWindow)
	}
	return h*60 + m, nil
}

// ValidateWindow checks the day and the two clock values. Overlaps and
// ordering between windows are not checked.
func ValidateWindow(w Window) error {
	if w.Dia < 0 || w.Dia > 6 {
		return fmt.Errorf("dia_semana %d: %w", w.Dia, ErrInvalidWindow)
	}
	if _, err := ParseClock(w.Inicio); err != nil {
		return err
	}
	if _, err := ParseClock(w.Fin); err != nil {
		return err
	}
	return nil
}

// Available reports whether a teacher with the given windows can take a class
// on dia from inicio to fin. No windows at all means available at any time.
func Available(windows []Window, dia int, inicio, fin string) bool {
	if len(windows) == 0 {
		return true
	}
	start, err := ParseClock(inicio)
	if err != nil {
		return false
	}
	end, err := ParseClock(fin)
	if err != nil {
		return false
	}
	for _, w := range windows {
		if w.Dia != dia {
			continue
		}
		ws, err1 := ParseClock(w.Inicio)
		we, err2 := ParseClock(w.Fin)
		if err1 != nil || err2 != nil {
			continue
		}
		if start >= ws && end <= we {
			return true
		}
	}
	return false
}
