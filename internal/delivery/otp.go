package delivery

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/url"

	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
)

const otpDigits = 6

// Generator produces delivery confirmation credentials for an order.
type Generator interface {
	GenerateOTP() (string, error)
	QRCodeURL(orderNumber, otp string) string
}

type generator struct{}

// NewGenerator exposes the default OTP generator.
func NewGenerator() Generator {
	return generator{}
}

// GenerateOTP returns a random six digit code. Leading zeros are preserved.
func (generator) GenerateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// QRCodeURL renders a scannable link carrying the order number and OTP so
// delivery agents can confirm handover without typing the code.
func (generator) QRCodeURL(orderNumber, otp string) string {
	payload := url.QueryEscape(fmt.Sprintf("%s:%s", orderNumber, otp))
	return fmt.Sprintf("https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=%s", payload)
}

// VerifyOTP compares the supplied code against the stored one in constant
// time. A missing stored code means the order never reached the ready state.
func VerifyOTP(stored *string, supplied string) error {
	if stored == nil || *stored == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition, "order has no delivery code yet")
	}
	if len(supplied) != otpDigits {
		return pkgerrors.New(pkgerrors.CodeInvalidOTP, "delivery code must be six digits")
	}
	if subtle.ConstantTimeCompare([]byte(*stored), []byte(supplied)) != 1 {
		return pkgerrors.New(pkgerrors.CodeInvalidOTP, "delivery code does not match")
	}
	return nil
}
