package controllers

import (
	"ecuestre_go/middleware"
	"ecuestre_go/services"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// VoucherController serves the payment voucher review queue and the
// student side of vouchers and invoices.
type VoucherController struct {
	vouchers *services.VoucherService
	invoices *services.InvoiceService
}

func NewVoucherController(vouchers *services.VoucherService, invoices *services.InvoiceService) *VoucherController {
	return &VoucherController{vouchers: vouchers, invoices: invoices}
}

type rejectRequest struct {
	Observaciones string `json:"observaciones"`
}

// GetPending lists the vouchers awaiting review, oldest first
func (vc *VoucherController) GetPending(c *fiber.Ctx) error {
	vouchers, err := vc.vouchers.ListPending()
	if err != nil {
		return serviceError(c, err, "Error al cargar comprobantes")
	}
	return c.JSON(vouchers)
}

// GetVouchers lists vouchers in any state; ?estado narrows the list
func (vc *VoucherController) GetVouchers(c *fiber.Ctx) error {
	vouchers, err := vc.vouchers.List(c.Query("estado"))
	if err != nil {
		return serviceError(c, err, "Error al cargar comprobantes")
	}
	return c.JSON(vouchers)
}

func (vc *VoucherController) GetVoucher(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	voucher, err := vc.vouchers.Get(id)
	if err != nil {
		return serviceError(c, err, "Error al cargar comprobante")
	}
	return c.JSON(voucher)
}

// Approve accepts a pending voucher and marks its invoice as paid
func (vc *VoucherController) Approve(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	reviewer, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	voucher, err := vc.vouchers.Approve(id, reviewer.ID)
	if err != nil {
		return serviceError(c, err, "Error al aprobar comprobante")
	}

	middleware.LogActivity(c, "APPROVE", "comprobantes", voucher.ID, fiber.Map{"factura_id": voucher.FacturaID})
	return c.JSON(voucher)
}

// Reject refuses a pending voucher; observaciones is mandatory
func (vc *VoucherController) Reject(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	reviewer, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	var req rejectRequest
	if handled, err := parseBody(c, &req); handled {
		return err
	}

	voucher, err := vc.vouchers.Reject(id, reviewer.ID, req.Observaciones)
	if err != nil {
		return serviceError(c, err, "Error al rechazar comprobante")
	}

	middleware.LogActivity(c, "REJECT", "comprobantes", voucher.ID, fiber.Map{"observaciones": req.Observaciones})
	return c.JSON(voucher)
}

// Upload receives a voucher file from a student (multipart: archivo,
// factura_id, monto)
func (vc *VoucherController) Upload(c *fiber.Ctx) error {
	student, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	facturaID, err := strconv.ParseUint(c.FormValue("factura_id"), 10, 32)
	if err != nil || facturaID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Factura inválida"})
	}
	var monto float64
	if raw := c.FormValue("monto"); raw != "" {
		if monto, err = strconv.ParseFloat(raw, 64); err != nil || monto < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Monto inválido"})
		}
	}

	file, err := c.FormFile("archivo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No se recibió ningún archivo"})
	}
	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No se pudo leer el archivo"})
	}
	defer src.Close()
	body, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No se pudo leer el archivo"})
	}

	voucher, err := vc.vouchers.Upload(c.UserContext(), services.UploadInput{
		AlumnoID:    student.ID,
		FacturaID:   uint(facturaID),
		Monto:       monto,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Body:        body,
	})
	if err != nil {
		return serviceError(c, err, "Error al subir comprobante")
	}

	middleware.LogActivity(c, "UPLOAD", "comprobantes", voucher.ID, fiber.Map{"factura_id": voucher.FacturaID})
	return c.Status(fiber.StatusCreated).JSON(voucher)
}

// GetMyVouchers lists the vouchers of the authenticated student
func (vc *VoucherController) GetMyVouchers(c *fiber.Ctx) error {
	student, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	vouchers, err := vc.vouchers.ForStudent(student.ID)
	if err != nil {
		return serviceError(c, err, "Error al cargar comprobantes")
	}
	return c.JSON(vouchers)
}

// GetMyInvoices lists the invoices of the authenticated student
func (vc *VoucherController) GetMyInvoices(c *fiber.Ctx) error {
	student, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	invoices, err := vc.invoices.ForStudent(student.ID)
	if err != nil {
		return serviceError(c, err, "Error al cargar facturas")
	}
	return c.JSON(invoices)
}
