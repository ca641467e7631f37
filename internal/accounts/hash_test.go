package accounts

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestSHA256HasherMatchesLegacyDigest(t *testing.T) {
	got, err := SHA256Hasher{}.Hash("password")
	if err != nil {
		t.Fatal(err)
	}
	const want = "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"
	if got != want {
		t.Fatalf("Hash(password) = %s, want %s", got, want)
	}
}

func TestVerify(t *testing.T) {
	legacy, _ := SHA256Hasher{}.Hash("pw")
	salted, err := BcryptHasher{Cost: bcrypt.MinCost}.Hash("pw")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		stored string
		pw     string
		want   bool
	}{
		{"legacy match", legacy, "pw", true},
		{"legacy mismatch", legacy, "PW", false},
		{"bcrypt match", salted, "pw", true},
		{"bcrypt mismatch", salted, "px", false},
		{"garbage digest", "not-a-hash", "pw", false},
		{"empty digest", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify(tt.stored, tt.pw); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewHasher(t *testing.T) {
	if h, err := NewHasher("sha256", 0); err != nil {
		t.Fatal(err)
	} else if _, ok := h.(SHA256Hasher); !ok {
		t.Fatalf("got %T", h)
	}
	if h, err := NewHasher("bcrypt", 12); err != nil {
		t.Fatal(err)
	} else if b, ok := h.(BcryptHasher); !ok || b.Cost != 12 {
		t.Fatalf("got %#v", h)
	}
	if _, err := NewHasher("md5", 0); err == nil {
		t.Fatal("expected error")
	}
}
