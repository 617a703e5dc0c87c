package rules

// Horse types and condition states
const (
	HorseSchool  = "escuela"
	HorsePrivate = "privado"

	HorseActive  = "activo"
	HorseResting = "descanso"
	HorseInjured = "lesionado"
)

// HorseForm is the editable part of a horse record.
type HorseForm struct {
	Nombre          string `json:"nombre" validate:"required,max=100"`
	Tipo            string `json:"tipo"`
	Estado          string `json:"estado"`
	LimiteClasesDia int    `json:"limite_clases_dia"`
	DuenoID         *uint  `json:"dueno_id,omitempty"`
}

func ValidHorseState(estado string) bool {
	switch estado {
	case HorseActive, HorseResting, HorseInjured:
		return true
	}
	return false
}

// NormalizeHorse prepares a horse form for submission. A school horse never
// carries an owner, whatever the form held before; a private horse must have one.
func NormalizeHorse(f HorseForm) (HorseForm, error) {
	switch f.Tipo {
	case HorseSchool:
		f.DuenoID = nil
	case HorsePrivate:
		if f.DuenoID == nil || *f.DuenoID == 0 {
			return f, ErrOwnerRequired
		}
	default:
		return f, ErrInvalidHorseType
	}
	if f.Estado == "" {
		f.Estado = HorseActive
	}
	if !ValidHorseState(f.Estado) {
		return f, ErrInvalidHorseState
	}
	return f, nil
}
