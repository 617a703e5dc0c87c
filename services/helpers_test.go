package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"ecuestre_go/database"
	"ecuestre_go/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, nombre, rol string) *models.User {
	t.Helper()
	u := &models.User{
		Nombre:   nombre,
		Apellido: "Test",
		Email:    nombre + "@ecuestre.test",
		Password: "x",
		Rol:      rol,
		Activo:   true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPlan(t *testing.T, db *gorm.DB, nombre, tipo string, clases int, precio float64) *models.Plan {
	t.Helper()
	p := &models.Plan{Nombre: nombre, Tipo: tipo, ClasesMes: clases, Precio: precio, Activo: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedHorse(t *testing.T, db *gorm.DB, nombre string, limite int) *models.Caballo {
	t.Helper()
	h := &models.Caballo{
		Nombre:          nombre,
		Tipo:            models.CaballoEscuela,
		Estado:          models.EstadoActivo,
		LimiteClasesDia: limite,
		Activo:          true,
	}
	require.NoError(t, db.Create(h).Error)
	return h
}

func seedTeacher(t *testing.T, db *gorm.DB, nombre string, pctEscuelita, pctPension float64) *models.Profesor {
	t.Helper()
	u := &models.User{Nombre: nombre, Email: nombre + "@ecuestre.test", Password: "x", Rol: models.RolProfesor, Activo: true}
	require.NoError(t, db.Create(u).Error)
	p := &models.Profesor{UserID: u.ID, Activo: true, PorcentajeEscuelita: pctEscuelita, PorcentajePension: pctPension}
	require.NoError(t, db.Create(p).Error)
	p.User = u
	return p
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int { return &i }
func uintPtr(u uint) *uint { return &u }
func floatPtr(f float64) *float64 { return &f }

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type pushed struct {
	to, message string
}

type fakeNotifier struct {
	messages []pushed
}

func (n *fakeNotifier) Notify(lineID, message string) error {
	n.messages = append(n.messages, pushed{lineID, message})
	return nil
}

type roleEvent struct {
	rol     string
	message interface{}
}

type fakeHub struct {
	events []roleEvent
}

func (h *fakeHub) BroadcastToRole(rol string, message interface{}) {
	h.events = append(h.events, roleEvent{rol, message})
}
