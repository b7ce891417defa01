package documents

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
)

// VoucherGenerator renders payment vouchers as PDF documents
type VoucherGenerator struct {
	brandName string
}

// NewVoucherGenerator creates a new voucher generator
func NewVoucherGenerator(brandName string) *VoucherGenerator {
	return &VoucherGenerator{brandName: brandName}
}

// Render produces the voucher PDF for a paid appointment
func (g *VoucherGenerator) Render(appointment *entities.Appointment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(71, 85, 105)
	pdf.CellFormat(0, 10, g.brandName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, "Appointment Payment Voucher", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Appointment", "1", 1, "C", false, 0, "")
	g.addDetail(pdf, "Voucher Ref", appointment.ID)
	g.addDetail(pdf, "Patient", appointment.UserName)
	g.addDetail(pdf, "Doctor", appointment.DoctorName)
	g.addDetail(pdf, "Speciality", appointment.DoctorSpeciality)
	g.addDetail(pdf, "Clinic Address", appointment.DoctorAddress)
	g.addDetail(pdf, "Date", appointment.SlotDateKey())
	g.addDetail(pdf, "Time", appointment.SlotTime)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Payment", "1", 1, "C", false, 0, "")
	g.addDetail(pdf, "Provider", appointment.PaymentProvider)
	g.addDetail(pdf, "Reference", appointment.PaymentRef)
	pdf.SetFont("Arial", "B", 13)
	g.addDetail(pdf, "Amount Paid", fmt.Sprintf("%s %d.%02d",
		appointment.Currency, appointment.Amount/100, appointment.Amount%100))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render voucher: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *VoucherGenerator) addDetail(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 8, label, "1", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, value, "1", 1, "L", false, 0, "")
}
