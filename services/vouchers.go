package services

import (
	"context"
	"ecuestre_go/models"
	"ecuestre_go/rules"
	"ecuestre_go/storage"
	"ecuestre_go/utils"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Voucher events pushed to connected admins
const (
	EventVoucherNew      = "comprobante.nuevo"
	EventVoucherReviewed = "comprobante.revisado"
)

// Broadcaster delivers realtime events to connected users of a role.
type Broadcaster interface {
	BroadcastToRole(rol string, message interface{})
}

// Event is the realtime message envelope.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// UploadInput is a voucher file sent by a student.
type UploadInput struct {
	AlumnoID    uint
	FacturaID   uint
	Monto       float64
	Filename    string
	ContentType string
	Body        []byte
}

// VoucherOptions wires the optional collaborators of the voucher service.
type VoucherOptions struct {
	Store             storage.ObjectStore
	Notifier          StudentNotifier
	Hub               Broadcaster
	AllowedExtensions []string
	MaxFileSize       int64
}

type VoucherService struct {
	db   *gorm.DB
	opts VoucherOptions
	now  func() time.Time
}

func NewVoucherService(db *gorm.DB, opts VoucherOptions) *VoucherService {
	return &VoucherService{db: db, opts: opts, now: time.Now}
}

// ListPending returns the review queue, oldest upload first.
func (s *VoucherService) ListPending() ([]models.Comprobante, error) {
	vouchers := []models.Comprobante{}
	err := s.withRelations(s.db).
		Where("estado = ?", models.ComprobantePendiente).
		Order("fecha_subida ASC, id ASC").
		Find(&vouchers).Error
	return vouchers, err
}

// List returns vouchers in the given state, or in every state when estado is empty.
func (s *VoucherService) List(estado string) ([]models.Comprobante, error) {
	query := s.withRelations(s.db).Order("fecha_subida DESC, id DESC")
	if estado != "" {
		switch estado {
		case models.ComprobantePendiente, models.ComprobanteAprobado, models.ComprobanteRechazado:
		default:
			return nil, invalidf("Estado de comprobante inválido")
		}
		query = query.Where("estado = ?", estado)
	}
	vouchers := []models.Comprobante{}
	err := query.Find(&vouchers).Error
	return vouchers, err
}

// ForStudent lists the vouchers a student uploaded.
func (s *VoucherService) ForStudent(alumnoID uint) ([]models.Comprobante, error) {
	vouchers := []models.Comprobante{}
	err := s.db.Preload("Factura").
		Where("alumno_id = ?", alumnoID).
		Order("fecha_subida DESC, id DESC").
		Find(&vouchers).Error
	return vouchers, err
}

func (s *VoucherService) Get(id uint) (*models.Comprobante, error) {
	var voucher models.Comprobante
	if err := s.withRelations(s.db).First(&voucher, id).Error; err != nil {
		return nil, lookup(err, "Comprobante no encontrado")
	}
	return &voucher, nil
}

// Upload stores a voucher file for one of the student's unpaid invoices and
// queues it for review.
func (s *VoucherService) Upload(ctx context.Context, in UploadInput) (*models.Comprobante, error) {
	if s.opts.Store == nil {
		return nil, invalidf("El almacenamiento de archivos no está configurado")
	}
	if len(in.Body) == 0 {
		return nil, invalidf("El archivo está vacío")
	}
	if s.opts.MaxFileSize > 0 && int64(len(in.Body)) > s.opts.MaxFileSize {
		return nil, invalidf("El archivo supera el tamaño máximo permitido")
	}
	if len(s.opts.AllowedExtensions) > 0 && !utils.IsValidFileExtension(in.Filename, s.opts.AllowedExtensions) {
		return nil, invalidf("Tipo de archivo no permitido")
	}

	var factura models.Factura
	if err := s.db.Where("alumno_id = ?", in.AlumnoID).First(&factura, in.FacturaID).Error; err != nil {
		return nil, lookup(err, "Factura no encontrada")
	}
	if factura.Pagada {
		return nil, conflict("La factura ya está pagada", nil)
	}
	var pending int64
	err := s.db.Model(&models.Comprobante{}).
		Where("factura_id = ? AND estado = ?", factura.ID, models.ComprobantePendiente).
		Count(&pending).Error
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, conflict("Ya hay un comprobante pendiente para esta factura", nil)
	}

	now := s.now().UTC()
	contentType := in.ContentType
	if contentType == "" {
		contentType = storage.ContentType(storage.Extension(in.Filename))
	}
	url, err := s.opts.Store.Put(ctx, storage.VoucherKey(in.AlumnoID, in.Filename, now), in.Body, contentType)
	if err != nil {
		return nil, err
	}

	monto := in.Monto
	if monto <= 0 {
		monto = factura.Monto
	}
	voucher := models.Comprobante{
		FacturaID:     factura.ID,
		AlumnoID:      in.AlumnoID,
		ArchivoURL:    url,
		NombreArchivo: utils.SanitizeString(in.Filename),
		TipoArchivo:   contentType,
		Monto:         monto,
		FechaSubida:   now,
		Estado:        models.ComprobantePendiente,
	}
	if err := s.db.Create(&voucher).Error; err != nil {
		if delErr := s.opts.Store.Delete(ctx, url); delErr != nil {
			logrus.WithError(delErr).Warn("Failed to remove orphan voucher file")
		}
		return nil, err
	}

	created, err := s.Get(voucher.ID)
	if err != nil {
		return nil, err
	}
	s.broadcast(EventVoucherNew, created)
	return created, nil
}

// Approve accepts a pending voucher and marks its invoice paid.
func (s *VoucherService) Approve(id, reviewerID uint) (*models.Comprobante, error) {
	now := s.now().UTC()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		voucher, err := s.reviewable(tx, id, rules.VoucherApproved)
		if err != nil {
			return err
		}
		if err := s.markReviewed(tx, voucher.ID, reviewerID, now, map[string]interface{}{
			"estado": models.ComprobanteAprobado,
		}); err != nil {
			return err
		}
		return tx.Model(&models.Factura{}).Where("id = ?", voucher.FacturaID).Updates(map[string]interface{}{
			"pagada":     true,
			"fecha_pago": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	voucher, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.broadcast(EventVoucherReviewed, voucher)
	return voucher, nil
}

// Reject refuses a pending voucher. The notes are stored exactly as given
// and, when the student has a LINE account, pushed to them.
func (s *VoucherService) Reject(id, reviewerID uint, observaciones string) (*models.Comprobante, error) {
	if err := rules.CheckRejection(observaciones); err != nil {
		return nil, invalid(err)
	}
	now := s.now().UTC()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		voucher, err := s.reviewable(tx, id, rules.VoucherRejected)
		if err != nil {
			return err
		}
		return s.markReviewed(tx, voucher.ID, reviewerID, now, map[string]interface{}{
			"estado":        models.ComprobanteRechazado,
			"observaciones": observaciones,
		})
	})
	if err != nil {
		return nil, err
	}

	voucher, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.notifyRejection(voucher)
	s.broadcast(EventVoucherReviewed, voucher)
	return voucher, nil
}

func (s *VoucherService) reviewable(tx *gorm.DB, id uint, to string) (*models.Comprobante, error) {
	var voucher models.Comprobante
	if err := tx.First(&voucher, id).Error; err != nil {
		return nil, lookup(err, "Comprobante no encontrado")
	}
	if !rules.CanTransition(voucher.Estado, to) {
		return nil, conflict(rules.ErrNotPending.Error(), rules.ErrNotPending)
	}
	return &voucher, nil
}

// markReviewed updates a voucher only while it is still pending, so two
// concurrent reviews cannot both succeed.
func (s *VoucherService) markReviewed(tx *gorm.DB, id, reviewerID uint, at time.Time, updates map[string]interface{}) error {
	updates["revisado_por"] = reviewerID
	updates["fecha_revision"] = at
	result := tx.Model(&models.Comprobante{}).
		Where("id = ? AND estado = ?", id, models.ComprobantePendiente).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflict(rules.ErrNotPending.Error(), rules.ErrNotPending)
	}
	return nil
}

func (s *VoucherService) notifyRejection(voucher *models.Comprobante) {
	if s.opts.Notifier == nil || voucher.Usuario == nil || voucher.Usuario.LineID == "" {
		return
	}
	var mes, anio int
	if voucher.Factura != nil {
		mes, anio = voucher.Factura.Mes, voucher.Factura.Anio
	}
	obs := ""
	if voucher.Observaciones != nil {
		obs = *voucher.Observaciones
	}
	if err := s.opts.Notifier.Notify(voucher.Usuario.LineID, rejectionNotice(mes, anio, obs)); err != nil {
		logrus.WithError(err).WithField("comprobante_id", voucher.ID).Warn("Failed to notify voucher rejection")
	}
}

func (s *VoucherService) broadcast(kind string, voucher *models.Comprobante) {
	if s.opts.Hub == nil {
		return
	}
	s.opts.Hub.BroadcastToRole(models.RolAdmin, Event{Type: kind, Data: voucher})
}

func (s *VoucherService) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Usuario").Preload("Factura")
}
