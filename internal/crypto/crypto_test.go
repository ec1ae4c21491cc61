package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"
)

func newTestEncryptor(t *testing.T) *Encryptor {
	t.Helper()
	key := make([]byte, 32)
	rand.Read(key)
	enc, err := NewEncryptor(key)
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}
	return enc
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	enc := newTestEncryptor(t)

	for _, original := range []string{
		"",
		"plain text",
		"<p><b>Medical Report:</b></p><ul><li>Flu</li></ul>",
		"Diagnose: Grippe – 38,5 °C 💊",
	} {
		ciphertext, err := enc.Encrypt(original)
		if err != nil {
			t.Fatalf("encrypt %q: %v", original, err)
		}
		if original != "" && ciphertext == original {
			t.Fatal("ciphertext should differ from plaintext")
		}
		decrypted, err := enc.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("decrypt %q: %v", original, err)
		}
		if decrypted != original {
			t.Fatalf("decrypted %q != original %q", decrypted, original)
		}
	}
}

func TestEncrypt_RandomNonce(t *testing.T) {
	enc := newTestEncryptor(t)
	a, _ := enc.Encrypt("same")
	b, _ := enc.Encrypt("same")
	if a == b {
		t.Fatal("two encryptions of the same plaintext should differ")
	}
}

func TestDecrypt_Corrupted(t *testing.T) {
	enc := newTestEncryptor(t)
	ct, err := enc.Encrypt("<p>Flu diagnosis.</p>")
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := base64.StdEncoding.DecodeString(ct)

	flipped := append([]byte(nil), raw...)
	flipped[len(flipped)-1] ^= 0x01

	cases := map[string]string{
		"not base64":  "%%%not-base64%%%",
		"truncated":   base64.StdEncoding.EncodeToString(raw[:10]),
		"tag only":    base64.StdEncoding.EncodeToString(raw[:len(raw)-len("<p>Flu diagnosis.</p>")]),
		"tampered":    base64.StdEncoding.EncodeToString(flipped),
		"empty input": "",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			pt, err := enc.Decrypt(input)
			if !errors.Is(err, ErrDecrypt) {
				t.Fatalf("expected ErrDecrypt, got %v (plaintext %q)", err, pt)
			}
			if pt != "" {
				t.Fatalf("no plaintext may be returned on failure, got %q", pt)
			}
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	a := newTestEncryptor(t)
	b := newTestEncryptor(t)
	ct, _ := a.Encrypt("secret")
	if _, err := b.Decrypt(ct); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt, got %v", err)
	}
}

func TestNewEncryptor_InvalidKeyLength(t *testing.T) {
	if _, err := NewEncryptor([]byte("too-short")); err == nil {
		t.Fatal("expected error for invalid key length")
	}
	if _, err := NewEncryptor(nil); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestNewEncryptorFromSecret(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)

	hexEnc, err := NewEncryptorFromSecret(hex.EncodeToString(key), "")
	if err != nil {
		t.Fatalf("hex key: %v", err)
	}
	rawEnc, _ := NewEncryptor(key)
	ct, _ := rawEnc.Encrypt("shared")
	if pt, err := hexEnc.Decrypt(ct); err != nil || pt != "shared" {
		t.Fatalf("hex key should equal raw key: %q, %v", pt, err)
	}

	p1, err := NewEncryptorFromSecret("correct horse battery staple", "medsum")
	if err != nil {
		t.Fatalf("passphrase: %v", err)
	}
	p2, _ := NewEncryptorFromSecret("correct horse battery staple", "medsum")
	ct, _ = p1.Encrypt("derived")
	if pt, err := p2.Decrypt(ct); err != nil || pt != "derived" {
		t.Fatalf("same passphrase and salt should derive the same key: %q, %v", pt, err)
	}

	if _, err := NewEncryptorFromSecret("", "salt"); err == nil {
		t.Fatal("empty secret should fail")
	}
	if _, err := NewEncryptorFromSecret("passphrase", ""); err == nil {
		t.Fatal("passphrase without salt should fail")
	}
}
