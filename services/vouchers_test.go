package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecuestre_go/models"
	"ecuestre_go/rules"
	"ecuestre_go/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type voucherFixture struct {
	db       *gorm.DB
	svc      *VoucherService
	store    *storage.MemoryStore
	notifier *fakeNotifier
	hub      *fakeHub
	student  *models.User
	factura  *models.Factura
	admin    *models.User
}

func newVoucherFixture(t *testing.T) *voucherFixture {
	t.Helper()
	db := newTestDB(t)
	f := &voucherFixture{
		db:       db,
		store:    storage.NewMemoryStore(),
		notifier: &fakeNotifier{},
		hub:      &fakeHub{},
	}
	f.svc = NewVoucherService(db, VoucherOptions{
		Store:             f.store,
		Notifier:          f.notifier,
		Hub:               f.hub,
		AllowedExtensions: []string{"jpg", "png", "pdf"},
		MaxFileSize:       1024,
	})
	f.svc.now = func() time.Time { return time.Date(2025, time.March, 5, 14, 0, 0, 0, time.UTC) }

	f.student = seedStudent(t, db, "ana", models.RolEscuelita)
	require.NoError(t, db.Model(f.student).Update("line_id", "U123").Error)
	plan := seedPlan(t, db, "Escuelita", models.RolEscuelita, 8, 80000)
	sub, err := NewSubscriptionService(db, NewInvoiceService(db, 10)).Assign(f.student.ID, AssignInput{PlanID: plan.ID, Mes: 3, Anio: 2025})
	require.NoError(t, err)

	f.factura = &models.Factura{}
	require.NoError(t, db.Where("suscripcion_id = ?", sub.ID).First(f.factura).Error)

	f.admin = &models.User{Nombre: "admin", Email: "admin@ecuestre.test", Password: "x", Rol: models.RolAdmin, Activo: true}
	require.NoError(t, db.Create(f.admin).Error)
	return f
}

func (f *voucherFixture) upload(t *testing.T) *models.Comprobante {
	t.Helper()
	v, err := f.svc.Upload(context.Background(), UploadInput{
		AlumnoID:  f.student.ID,
		FacturaID: f.factura.ID,
		Filename:  "transferencia.pdf",
		Body:      []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	return v
}

func TestVoucherUploadQueuesForReview(t *testing.T) {
	f := newVoucherFixture(t)
	v := f.upload(t)

	assert.Equal(t, models.ComprobantePendiente, v.Estado)
	assert.Equal(t, 80000.0, v.Monto)
	assert.Equal(t, "application/pdf", v.TipoArchivo)
	assert.Equal(t, 1, f.store.Len())
	body, ok := f.store.Get(v.ArchivoURL)
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4", string(body))

	require.Len(t, f.hub.events, 1)
	assert.Equal(t, models.RolAdmin, f.hub.events[0].rol)
	assert.Equal(t, EventVoucherNew, f.hub.events[0].message.(Event).Type)

	_, err := f.svc.Upload(context.Background(), UploadInput{
		AlumnoID: f.student.ID, FacturaID: f.factura.ID, Filename: "otra.png", Body: []byte("x"),
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestVoucherUploadValidatesFile(t *testing.T) {
	f := newVoucherFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, UploadInput{AlumnoID: f.student.ID, FacturaID: f.factura.ID, Filename: "virus.exe", Body: []byte("x")})
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.Upload(ctx, UploadInput{AlumnoID: f.student.ID, FacturaID: f.factura.ID, Filename: "big.png", Body: make([]byte, 2048)})
	assert.True(t, errors.As(err, &ve))

	other := seedStudent(t, f.db, "otro", models.RolEscuelita)
	_, err = f.svc.Upload(ctx, UploadInput{AlumnoID: other.ID, FacturaID: f.factura.ID, Filename: "a.png", Body: []byte("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, f.store.Len())
}

func TestApproveMarksInvoicePaidAndLeavesQueue(t *testing.T) {
	f := newVoucherFixture(t)
	v := f.upload(t)

	pending, err := f.svc.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, err := f.svc.Approve(v.ID, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComprobanteAprobado, approved.Estado)
	require.NotNil(t, approved.RevisadoPor)
	assert.Equal(t, f.admin.ID, *approved.RevisadoPor)
	require.NotNil(t, approved.FechaRevision)

	require.NotNil(t, approved.Factura)
	assert.True(t, approved.Factura.Pagada)
	assert.NotNil(t, approved.Factura.FechaPago)

	pending, err = f.svc.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.svc.Approve(v.ID, f.admin.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.svc.Reject(v.ID, f.admin.ID, "tarde")
	assert.ErrorIs(t, err, rules.ErrNotPending)
}

func TestRejectStoresNotesVerbatimAndNotifies(t *testing.T) {
	f := newVoucherFixture(t)
	v := f.upload(t)

	for _, blank := range []string{"", "   ", "\n\t"} {
		_, err := f.svc.Reject(v.ID, f.admin.ID, blank)
		assert.ErrorIs(t, err, rules.ErrNotesRequired)
	}

	rejected, err := f.svc.Reject(v.ID, f.admin.ID, "monto incorrecto")
	require.NoError(t, err)
	assert.Equal(t, models.ComprobanteRechazado, rejected.Estado)
	require.NotNil(t, rejected.Observaciones)
	assert.Equal(t, "monto incorrecto", *rejected.Observaciones)
	assert.False(t, rejected.Factura.Pagada)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, "U123", f.notifier.messages[0].to)
	assert.Contains(t, f.notifier.messages[0].message, "monto incorrecto")
	assert.Contains(t, f.notifier.messages[0].message, "03/2025")
}

func TestVoucherListByState(t *testing.T) {
	f := newVoucherFixture(t)
	first := f.upload(t)
	_, err := f.svc.Reject(first.ID, f.admin.ID, "ilegible")
	require.NoError(t, err)
	f.upload(t)

	all, err := f.svc.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rejected, err := f.svc.List(models.ComprobanteRechazado)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, first.ID, rejected[0].ID)

	_, err = f.svc.List("perdido")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))

	mine, err := f.svc.ForStudent(f.student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
