package idgen

import (
	"regexp"
	"testing"
)

func TestGenerate_PrefixAndLength(t *testing.T) {
	for _, prefix := range []string{PrefixOrganization, PrefixCostCenter, PrefixUser, "test-"} {
		id, err := Generate(prefix)
		if err != nil {
			t.Fatalf("Generate(%q) error: %v", prefix, err)
		}
		if id[:len(prefix)] != prefix {
			t.Errorf("Generate(%q) = %q, want prefix %q", prefix, id, prefix)
		}
		if wantLen := len(prefix) + Length; len(id) != wantLen {
			t.Errorf("Generate(%q) length = %d, want %d (id=%q)", prefix, len(id), wantLen, id)
		}
	}
}

func TestGenerate_Charset(t *testing.T) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(PrefixOrganization) + `[a-zA-Z0-9]+$`)
	for i := 0; i < 100; i++ {
		id, err := Generate(PrefixOrganization)
		if err != nil {
			t.Fatalf("Generate() error on iteration %d: %v", i, err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("Generate() = %q, does not match expected charset pattern", id)
		}
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := Generate(PrefixUser)
		if err != nil {
			t.Fatalf("Generate() error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestSession(t *testing.T) {
	id, err := Session()
	if err != nil {
		t.Fatalf("Session() error: %v", err)
	}
	if wantLen := len(PrefixSession) + SessionLength; len(id) != wantLen {
		t.Errorf("Session() length = %d, want %d (id=%q)", len(id), wantLen, id)
	}
	if id[:len(PrefixSession)] != PrefixSession {
		t.Errorf("Session() = %q, want prefix %q", id, PrefixSession)
	}
}
