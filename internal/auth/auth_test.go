package auth

import (
	"testing"
)

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 43 {
		t.Errorf("key length = %d, want 43", len(a))
	}
	if a == b {
		t.Error("two generated keys are identical")
	}
}

func TestHashAndCheckKey(t *testing.T) {
	hash, err := HashKey("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !ValidHash(hash) {
		t.Errorf("ValidHash(%q) = false", hash)
	}
	if err := CheckKey("s3cret", hash); err != nil {
		t.Errorf("CheckKey with the right key: %v", err)
	}
	if err := CheckKey("wrong", hash); err == nil {
		t.Error("CheckKey accepted the wrong key")
	}
	if ValidHash("plain-text") {
		t.Error("ValidHash accepted a non-bcrypt string")
	}
}

func TestKeysMatch(t *testing.T) {
	hash, err := HashKey("hashed-key")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		keys     Keys
		provided string
		want     bool
	}{
		{"plain match", Keys{Plain: "k"}, "k", true},
		{"plain mismatch", Keys{Plain: "k"}, "x", false},
		{"hash match", Keys{Hash: hash}, "hashed-key", true},
		{"hash mismatch", Keys{Hash: hash}, "k", false},
		{"either key", Keys{Plain: "k", Hash: hash}, "hashed-key", true},
		{"empty provided", Keys{Plain: "k"}, "", false},
		{"no keys configured", Keys{}, "anything", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.keys.Match(tt.provided); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.provided, got, tt.want)
			}
		})
	}

	if (Keys{}).Enabled() {
		t.Error("zero Keys should be disabled")
	}
	if !(Keys{Hash: hash}).Enabled() {
		t.Error("Keys with a hash should be enabled")
	}
}
