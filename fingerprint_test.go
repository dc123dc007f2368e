package xlate

import "testing"

func TestNormalize_CaseAndWhitespace(t *testing.T) {
	a := Normalize("Hola   Mundo")
	b := Normalize("hola mundo")
	if a != b {
		t.Errorf("normalized forms differ: %q vs %q", a, b)
	}
}

func TestNormalize_MarkersToIndexedPlaceholders(t *testing.T) {
	a := Normalize(`Un <g id="1">texto</g> largo`)
	b := Normalize(`Un <b>texto</b> largo`)
	if a != b {
		t.Errorf("different tags should normalize identically: %q vs %q", a, b)
	}
	if a == Normalize("Un texto largo") {
		t.Error("marker positions must survive normalization")
	}
}

func TestNormalize_Placeholders(t *testing.T) {
	a := Normalize("Hello {{name}}!")
	b := Normalize("Hello {{user}}!")
	if a != b {
		t.Errorf("placeholder names should not affect the key: %q vs %q", a, b)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	once := Normalize(`Un <g id="1">texto</g>  LARGO`)
	twice := Normalize(once)
	if once != twice {
		t.Errorf("Normalize not idempotent: %q vs %q", once, twice)
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint("Hola Mundo")
	b := Fingerprint("hola   mundo")
	if a != b {
		t.Error("fingerprint must be computed over the normalized form")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestFingerprint_Distinct(t *testing.T) {
	if Fingerprint("Hola") == Fingerprint("Adiós") {
		t.Error("different texts must not collide")
	}
}

func TestMemoryKey_Partitions(t *testing.T) {
	fp := Fingerprint("Hola")
	a := MemoryKey(fp, "en", RoleTitle)
	b := MemoryKey(fp, "en", RoleBody)
	c := MemoryKey(fp, "de", RoleTitle)

	if a == b || a == c || b == c {
		t.Errorf("keys must differ per (lang, role): %q %q %q", a, b, c)
	}
}
