package model

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("plan a trip to Lisbon")
	b := Fingerprint("plan a trip to Lisbon")
	if a != b {
		t.Fatal("same prompt must produce the same fingerprint")
	}
	if len(a) != 64 {
		t.Fatalf("fingerprint length %d", len(a))
	}
}

func TestFingerprintSensitive(t *testing.T) {
	if Fingerprint("Lisbon") == Fingerprint("lisbon") {
		t.Fatal("fingerprint must be byte-exact on the prompt")
	}
}
