package hasher_test

import (
	"testing"

	"github.com/artpar/modhost/adapters/hasher"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcrypt_Cost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"valid", 12, 12},
		{"too low", 1, bcrypt.DefaultCost},
		{"too high", 100, bcrypt.DefaultCost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasher.NewBcrypt(tt.cost).Cost(); got != tt.want {
				t.Errorf("Cost() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBcrypt_HashAndCompare(t *testing.T) {
	h := hasher.NewBcrypt(bcrypt.MinCost)

	hash, err := h.Hash("admin-token")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if string(hash) == "admin-token" {
		t.Error("hash must not equal plaintext")
	}
	if !h.Compare(hash, "admin-token") {
		t.Error("Compare should match the original token")
	}
	if h.Compare(hash, "other-token") {
		t.Error("Compare should reject a different token")
	}
	if h.Compare([]byte("not-a-hash"), "admin-token") {
		t.Error("Compare should reject a malformed hash")
	}
}

func TestPlain(t *testing.T) {
	h := hasher.Plain{}
	hash, _ := h.Hash("x")
	if !h.Compare(hash, "x") || h.Compare(hash, "y") {
		t.Error("Plain should compare verbatim")
	}
}
