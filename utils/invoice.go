package utils

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/kabaadwala/marketplace/models"
)

// GenerateRechargeInvoice builds the PDF invoice attached to the recharge
// success email.
func GenerateRechargeInvoice(user *models.User, txn *models.WalletTransaction, newBalance float64, paymentRef string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "KABAADWALA")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Hyperlocal Scrap Marketplace")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@kabaadwala.com")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "WALLET RECHARGE INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Invoice ID: INV-"+strconv.Itoa(int(txn.ID)))
	pdf.Cell(80, 8, "Date: "+txn.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	pdf.Ln(8)
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	pdf.Cell(60, 8, "Customer: "+name)
	pdf.Cell(80, 8, "Email: "+user.Email)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Payment ID: "+paymentRef)
	pdf.Ln(12)

	// Transaction table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(100, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(100, 8, "Wallet Recharge", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", txn.Amount), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(100, 8, "Total Amount", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", txn.Amount), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	// Wallet summary
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Wallet Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Previous Balance:")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", newBalance-txn.Amount), "", 1, "R", false, 0, "")
	pdf.Cell(60, 8, "Amount Added:")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", txn.Amount), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(60, 8, "New Balance:")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", newBalance), "", 1, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(150, 8, "Thank you for using KABAADWALA")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
