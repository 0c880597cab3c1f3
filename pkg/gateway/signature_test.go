package gateway

import "testing"

func TestSignatureRoundTrip(t *testing.T) {
	secret := "whsec_test"
	sig := Signature(secret, "gw_order_1", "gw_pay_1")
	if sig == "" {
		t.Fatal("signature should not be empty")
	}
	if !VerifySignature(secret, "gw_order_1", "gw_pay_1", sig) {
		t.Fatal("valid signature should verify")
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	secret := "whsec_test"
	sig := Signature(secret, "gw_order_1", "gw_pay_1")

	if VerifySignature(secret, "gw_order_2", "gw_pay_1", sig) {
		t.Fatal("different order ref must not verify")
	}
	if VerifySignature(secret, "gw_order_1", "gw_pay_2", sig) {
		t.Fatal("different payment ref must not verify")
	}
	if VerifySignature("other_secret", "gw_order_1", "gw_pay_1", sig) {
		t.Fatal("different secret must not verify")
	}
	if VerifySignature(secret, "gw_order_1", "gw_pay_1", sig+"00") {
		t.Fatal("longer signature must not verify")
	}
}

func TestSignatureIsDeterministic(t *testing.T) {
	a := Signature("s", "o", "p")
	b := Signature("s", "o", "p")
	if a != b {
		t.Fatal("signature must be deterministic")
	}
}
