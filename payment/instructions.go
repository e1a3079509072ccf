// Package payment synthesizes bank-transfer payment instructions for
// orders. It only describes how to pay; it never settles anything.
package payment

import (
	"encoding/base64"
	"fmt"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// BankConfig is the static receiving account, loaded once from the
// environment.
type BankConfig struct {
	BankName    string
	Account     string
	AccountName string
}

type Generator struct {
	bank BankConfig
}

func NewGenerator(bank BankConfig) *Generator {
	return &Generator{bank: bank}
}

// Instructions builds the human-readable transfer instructions for an
// order. The order number doubles as the transfer content so payments
// can be matched to orders.
func (g *Generator) Instructions(amount float64, orderNumber string) string {
	return fmt.Sprintf("Bank: %s\nAccount: %s\nName: %s\nAmount: %s VND\nContent: %s",
		g.bank.BankName,
		g.bank.Account,
		g.bank.AccountName,
		strconv.FormatFloat(amount, 'f', -1, 64),
		orderNumber,
	)
}

// QRDataURL encodes the transfer instructions as a PNG QR code and
// returns it as a base64 data URL suitable for direct embedding.
func (g *Generator) QRDataURL(amount float64, orderNumber string) (string, error) {
	png, err := qrcode.Encode(g.Instructions(amount, orderNumber), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode payment qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
