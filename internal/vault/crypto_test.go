package vault

import (
	"testing"
)

func TestSealOpen(t *testing.T) {
	key := []byte("thisis32byteslongsecretkey123456")
	plaintext := "AC-7f3a9c"

	sealed, err := Seal(plaintext, key)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if sealed == plaintext {
		t.Fatal("Sealed value should not be equal to plaintext")
	}

	opened, err := Open(sealed, key)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if opened != plaintext {
		t.Errorf("Expected %s, got %s", plaintext, opened)
	}
}

func TestOpenWithWrongKey(t *testing.T) {
	key1 := []byte("thisis32byteslongsecretkey123456")
	key2 := []byte("another32byteslongsecretkey65432")

	sealed, err := Seal("secret", key1)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := Open(sealed, key2); err == nil {
		t.Fatal("Open should have failed with wrong key")
	}
}

func TestInvalidKeySize(t *testing.T) {
	invalidKey := []byte("shortkey")

	if _, err := Seal("test", invalidKey); err == nil {
		t.Fatal("Seal should fail with invalid key size")
	}

	if _, err := Open("0123456789abcdef", invalidKey); err == nil {
		t.Fatal("Open should fail with invalid key size")
	}
}

func TestDeriveKey(t *testing.T) {
	k1, err := DeriveKey("correct horse")
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	if len(k1) != KeySize {
		t.Fatalf("Expected %d byte key, got %d", KeySize, len(k1))
	}

	k2, _ := DeriveKey("correct horse")
	if string(k1) != string(k2) {
		t.Error("DeriveKey should be deterministic")
	}

	k3, _ := DeriveKey("battery staple")
	if string(k1) == string(k3) {
		t.Error("Different secrets should derive different keys")
	}

	if _, err := DeriveKey(""); err == nil {
		t.Error("DeriveKey should reject an empty secret")
	}
}

func TestOpenMalformedHex(t *testing.T) {
	key := []byte("thisis32byteslongsecretkey123456")
	if _, err := Open("not-hex", key); err == nil {
		t.Fatal("Open should fail with malformed hex")
	}
}

func TestOpenTooShort(t *testing.T) {
	key := []byte("thisis32byteslongsecretkey123456")
	// A GCM nonce is 12 bytes, so 3 bytes of ciphertext cannot hold one.
	if _, err := Open("abcdef", key); err == nil {
		t.Fatal("Open should fail with too short ciphertext")
	}
}
