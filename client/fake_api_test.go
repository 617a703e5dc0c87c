package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"ecuestre_go/models"
	"ecuestre_go/rules"

	"github.com/stretchr/testify/require"
)

const testToken = "tok-admin"

// fakeAPI is an in-memory stand-in for the REST API.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu          sync.Mutex
	students    []models.User
	plans       []models.Plan
	subs        []models.Suscripcion
	horses      []models.Caballo
	vouchers    []models.Comprobante
	horseRows   []OccupancyRow
	teacherRows []OccupancyRow
	payments    []TeacherPayment
	hits        map[string]int
	bodies      map[string][]byte
	queries     map[string]string
	nextID      uint
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		t:       t,
		hits:    map[string]int{},
		bodies:  map[string][]byte{},
		queries: map[string]string{},
		nextID:  100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", f.login)
	mux.HandleFunc("POST /api/auth/logout", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Sesión cerrada"})
	}))
	mux.HandleFunc("GET /api/admin/alumnos", f.authed(f.listStudents))
	mux.HandleFunc("PATCH /api/admin/alumnos/{id}/bloquear", f.authed(f.blockStudent))
	mux.HandleFunc("POST /api/admin/alumnos/{id}/suscripcion", f.authed(f.assign))
	mux.HandleFunc("GET /api/admin/alumnos/{id}/suscripciones", f.authed(f.listSubscriptions))
	mux.HandleFunc("PATCH /api/admin/suscripciones/{id}", f.authed(f.updateSubscription))
	mux.HandleFunc("DELETE /api/admin/suscripciones/{id}", f.authed(f.deleteSubscription))
	mux.HandleFunc("GET /api/admin/planes", f.authed(f.listPlans))
	mux.HandleFunc("GET /api/admin/caballos", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.horses)
	}))
	mux.HandleFunc("POST /api/admin/caballos", f.authed(f.saveHorse))
	mux.HandleFunc("PATCH /api/admin/caballos/{id}", f.authed(f.saveHorse))
	mux.HandleFunc("GET /api/admin/profesores", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Profesor{})
	}))
	mux.HandleFunc("POST /api/admin/profesores", f.authed(f.createTeacher))
	mux.HandleFunc("GET /api/comprobantes/pendientes", f.authed(f.listVouchers(rules.VoucherPending)))
	mux.HandleFunc("GET /api/comprobantes", f.authed(f.listVouchers("")))
	mux.HandleFunc("POST /api/comprobantes/{id}/aprobar", f.authed(f.review(rules.VoucherApproved)))
	mux.HandleFunc("POST /api/comprobantes/{id}/rechazar", f.authed(f.review(rules.VoucherRejected)))
	mux.HandleFunc("GET /api/admin/ocupacion/caballos", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.horseRows)
	}))
	mux.HandleFunc("GET /api/admin/ocupacion/profesores", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.teacherRows)
	}))
	mux.HandleFunc("GET /api/admin/pagos-profesores", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.payments)
	}))

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.hits[key]++
		f.bodies[key] = body
		f.queries[key] = r.URL.RawQuery
		f.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// client returns a Client logged in as an admin.
func (f *fakeAPI) client() *Client {
	session := NewSession()
	session.Load(testToken, models.User{BaseModel: models.BaseModel{ID: 1}, Nombre: "Admin", Rol: models.RolAdmin})
	return New(f.srv.URL, session, f.srv.Client())
}

func (f *fakeAPI) hitCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

func (f *fakeAPI) lastBody(method, path string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var body map[string]interface{}
	require.NoError(f.t, json.Unmarshal(f.bodies[method+" "+path], &body))
	return body
}

func (f *fakeAPI) lastQuery(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[method+" "+path]
}

func (f *fakeAPI) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeAPI) addStudent(nombre, rol string, activo bool) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := models.User{BaseModel: models.BaseModel{ID: f.id()}, Nombre: nombre, Email: nombre + "@mail.com", Rol: rol, Activo: activo}
	f.students = append(f.students, s)
	return s
}

func (f *fakeAPI) addPlan(nombre, tipo string, clases int, precio float64) models.Plan {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.Plan{BaseModel: models.BaseModel{ID: f.id()}, Nombre: nombre, Tipo: tipo, ClasesMes: clases, Precio: precio, Activo: true}
	f.plans = append(f.plans, p)
	return p
}

func (f *fakeAPI) addVoucher(alumnoID uint, estado string) models.Comprobante {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := models.Comprobante{BaseModel: models.BaseModel{ID: f.id()}, AlumnoID: alumnoID, FacturaID: 1, Monto: 25000, Estado: estado}
	f.vouchers = append(f.vouchers, v)
	return v
}

func (f *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	json.NewDecoder(r.Body).Decode(&in)
	if in.Password != "secreto1" {
		writeError(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": testToken,
		"user":  models.User{BaseModel: models.BaseModel{ID: 1}, Nombre: "Admin", Email: in.Email, Rol: models.RolAdmin},
	})
}

func (f *fakeAPI) listStudents(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit == 0 {
		limit = 20
	}

	matched := []models.User{}
	for _, s := range f.students {
		if search := q.Get("search"); search != "" && !strings.Contains(s.Nombre, search) {
			continue
		}
		if activo := q.Get("activo"); activo != "" && strconv.FormatBool(s.Activo) != activo {
			continue
		}
		matched = append(matched, s)
	}
	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	writeJSON(w, http.StatusOK, RosterPage{
		Alumnos: matched[start:end],
		Paginacion: Pagination{
			Page: page, Limit: limit, Total: int64(total),
			TotalPaginas: rules.TotalPages(int64(total), limit),
		},
	})
}

func (f *fakeAPI) student(r *http.Request) *models.User {
	id, _ := strconv.Atoi(r.PathValue("id"))
	for i := range f.students {
		if f.students[i].ID == uint(id) {
			return &f.students[i]
		}
	}
	return nil
}

func (f *fakeAPI) blockStudent(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var in struct {
		Activo *bool `json:"activo"`
	}
	json.NewDecoder(r.Body).Decode(&in)
	s := f.student(r)
	if s == nil || in.Activo == nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}
	s.Activo = *in.Activo
	writeJSON(w, http.StatusOK, s)
}

func (f *fakeAPI) listPlans(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.plans)
}

func (f *fakeAPI) assign(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var in assignRequest
	json.NewDecoder(r.Body).Decode(&in)
	s := f.student(r)
	if s == nil {
		writeError(w, http.StatusNotFound, "Alumno no encontrado")
		return
	}
	var plan *models.Plan
	for i := range f.plans {
		if f.plans[i].ID == in.PlanID {
			plan = &f.plans[i]
		}
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "Plan no encontrado")
		return
	}
	if err := rules.CheckPlanForStudent(plan.Tipo, s.Rol); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inicio, fin, err := rules.ValidityWindow(s.Rol, in.Mes, in.Anio)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub := models.Suscripcion{
		BaseModel:       models.BaseModel{ID: f.id()},
		AlumnoID:        s.ID,
		PlanID:          plan.ID,
		FechaInicio:     inicio,
		FechaFin:        fin,
		ClasesIncluidas: plan.ClasesMes,
		Activa:          true,
	}
	f.subs = append(f.subs, sub)
	writeJSON(w, http.StatusCreated, sub)
}

func (f *fakeAPI) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := strconv.Atoi(r.PathValue("id"))
	subs := []models.Suscripcion{}
	for _, s := range f.subs {
		if s.AlumnoID == uint(id) {
			subs = append(subs, s)
		}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (f *fakeAPI) updateSubscription(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := strconv.Atoi(r.PathValue("id"))
	for i := range f.subs {
		if f.subs[i].ID == uint(id) {
			writeJSON(w, http.StatusOK, f.subs[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Suscripción no encontrada")
}

func (f *fakeAPI) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := strconv.Atoi(r.PathValue("id"))
	for i := range f.subs {
		if f.subs[i].ID == uint(id) {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Suscripción eliminada"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Suscripción no encontrada")
}

func (f *fakeAPI) saveHorse(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var form rules.HorseForm
	json.NewDecoder(r.Body).Decode(&form)
	horse := models.Caballo{
		BaseModel:       models.BaseModel{ID: f.id()},
		Nombre:          form.Nombre,
		Tipo:            form.Tipo,
		Estado:          form.Estado,
		LimiteClasesDia: form.LimiteClasesDia,
		Activo:          true,
		DuenoID:         form.DuenoID,
	}
	f.horses = append(f.horses, horse)
	writeJSON(w, http.StatusOK, horse)
}

func (f *fakeAPI) createTeacher(w http.ResponseWriter, r *http.Request) {
	var in TeacherInput
	json.NewDecoder(r.Body).Decode(&in)
	writeJSON(w, http.StatusCreated, CreatedTeacher{
		Profesor: &models.Profesor{
			BaseModel: models.BaseModel{ID: 7},
			Activo:    true,
			User:      &models.User{Nombre: in.Nombre, Email: in.Email, Rol: models.RolProfesor},
		},
		Password: "Xy7kQ2pa",
	})
}

func (f *fakeAPI) listVouchers(estado string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		want := estado
		if want == "" {
			want = r.URL.Query().Get("estado")
		}
		out := []models.Comprobante{}
		for _, v := range f.vouchers {
			if want == "" || v.Estado == want {
				out = append(out, v)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (f *fakeAPI) review(to string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var in struct {
			Observaciones string `json:"observaciones"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		id, _ := strconv.Atoi(r.PathValue("id"))
		for i := range f.vouchers {
			v := &f.vouchers[i]
			if v.ID != uint(id) {
				continue
			}
			if !rules.CanTransition(v.Estado, to) {
				writeError(w, http.StatusConflict, rules.ErrNotPending.Error())
				return
			}
			now := time.Now()
			v.Estado = to
			v.FechaRevision = &now
			if to == rules.VoucherRejected {
				v.Observaciones = &in.Observaciones
			}
			writeJSON(w, http.StatusOK, v)
			return
		}
		writeError(w, http.StatusNotFound, fmt.Sprintf("Comprobante %d no encontrado", id))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
