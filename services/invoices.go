package services

import (
	"ecuestre_go/models"
	"ecuestre_go/rules"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type InvoiceService struct {
	db     *gorm.DB
	dueDay int
}

// NewInvoiceService creates the invoice service. dueDay is the day of the
// month invoices fall due.
func NewInvoiceService(db *gorm.DB, dueDay int) *InvoiceService {
	if dueDay < 1 || dueDay > 28 {
		dueDay = 10
	}
	return &InvoiceService{db: db, dueDay: dueDay}
}

// GenerateMonthly bills every active subscription that covers the first day
// of the month. Subscriptions already billed for the month are skipped.
func (s *InvoiceService) GenerateMonthly(mes, anio int) (int, error) {
	if mes < 1 || mes > 12 {
		return 0, invalid(rules.ErrInvalidMonth)
	}
	first := time.Date(anio, time.Month(mes), 1, 0, 0, 0, 0, time.UTC)

	var subs []models.Suscripcion
	if err := s.db.Preload("Plan").Where("activa = ?", true).Find(&subs).Error; err != nil {
		return 0, err
	}

	created := 0
	for i := range subs {
		sub := &subs[i]
		if sub.Plan == nil || !rules.Covers(sub.FechaInicio, sub.FechaFin, first) {
			continue
		}
		ok, err := s.ensure(s.db, sub, sub.Plan, mes, anio)
		if err != nil {
			logrus.WithError(err).WithField("suscripcion_id", sub.ID).Error("Failed to generate invoice")
			continue
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// ForStudent lists a student's invoices, newest first.
func (s *InvoiceService) ForStudent(alumnoID uint) ([]models.Factura, error) {
	facturas := []models.Factura{}
	err := s.db.Where("alumno_id = ?", alumnoID).Order("anio DESC, mes DESC, id DESC").Find(&facturas).Error
	return facturas, err
}

func (s *InvoiceService) Get(id uint) (*models.Factura, error) {
	var factura models.Factura
	if err := s.db.First(&factura, id).Error; err != nil {
		return nil, lookup(err, "Factura no encontrada")
	}
	return &factura, nil
}

// ensure creates the invoice of a subscription for a month unless one exists.
func (s *InvoiceService) ensure(tx *gorm.DB, sub *models.Suscripcion, plan *models.Plan, mes, anio int) (bool, error) {
	var existing int64
	err := tx.Model(&models.Factura{}).
		Where("suscripcion_id = ? AND mes = ? AND anio = ?", sub.ID, mes, anio).
		Count(&existing).Error
	if err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	subID := sub.ID
	factura := models.Factura{
		AlumnoID:         sub.AlumnoID,
		SuscripcionID:    &subID,
		Mes:              mes,
		Anio:             anio,
		Monto:            plan.Precio,
		FechaVencimiento: time.Date(anio, time.Month(mes), s.dueDay, 0, 0, 0, 0, time.UTC),
	}
	if err := tx.Create(&factura).Error; err != nil {
		return false, err
	}
	return true, nil
}
