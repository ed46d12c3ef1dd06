package vault

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ctx400/pv/internal/crypto"
)

func TestRekey(t *testing.T) {
	v, _ := New()
	oldPw, newPw := []byte("old_password"), []byte("new_password")

	if err := v.StoreSecret("a", []byte("value-a"), oldPw); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := v.StoreSecret("b", []byte("value-b"), oldPw); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	oldSalt := append([]byte(nil), v.Salt...)

	if err := v.Rekey(oldPw, newPw); err != nil {
		t.Fatalf("Rekey failed: %v", err)
	}

	if bytes.Equal(v.Salt, oldSalt) {
		t.Error("Rekey should generate a fresh salt")
	}

	for name, want := range map[string]string{"a": "value-a", "b": "value-b"} {
		got, err := v.ReadSecret(name, newPw)
		if err != nil {
			t.Fatalf("ReadSecret(%s) with new password failed: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("ReadSecret(%s) = %q, want %q", name, got, want)
		}
	}

	if _, err := v.ReadSecret("a", oldPw); !errors.Is(err, crypto.ErrDecryption) {
		t.Errorf("Old password should no longer work, got %v", err)
	}
}

func TestRekeyWrongPassword(t *testing.T) {
	v, _ := New()
	password := []byte("pw")
	if err := v.StoreSecret("a", []byte("value"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	oldSalt := append([]byte(nil), v.Salt...)

	if err := v.Rekey([]byte("wrong"), []byte("new")); !errors.Is(err, crypto.ErrDecryption) {
		t.Fatalf("Expected ErrDecryption, got %v", err)
	}

	// Failed rotation must leave the vault untouched
	if !bytes.Equal(v.Salt, oldSalt) {
		t.Error("Salt changed after failed rekey")
	}
	if got, err := v.ReadSecret("a", password); err != nil || !bytes.Equal(got, []byte("value")) {
		t.Errorf("ReadSecret after failed rekey = %q, %v", got, err)
	}
}

func TestRekeyMixedPasswords(t *testing.T) {
	v, _ := New()
	if err := v.StoreSecret("a", []byte("value-a"), []byte("pw1")); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := v.StoreSecret("b", []byte("value-b"), []byte("pw2")); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	// An entry under a different password blocks rotation wholesale
	if err := v.Rekey([]byte("pw1"), []byte("new")); !errors.Is(err, crypto.ErrDecryption) {
		t.Errorf("Expected ErrDecryption, got %v", err)
	}
}

func TestMergeAddsAndUnchanged(t *testing.T) {
	password := []byte("pw")

	dst, _ := New()
	src, _ := New()

	if err := dst.StoreSecret("shared", []byte("same"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := src.StoreSecret("shared", []byte("same"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := src.StoreSecret("only-src", []byte("new value"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	result, err := dst.Merge(src, password, MergeSkip)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if len(result.Added) != 1 || result.Added[0] != "only-src" {
		t.Errorf("Added = %v, want [only-src]", result.Added)
	}
	if len(result.Unchanged) != 1 || result.Unchanged[0] != "shared" {
		t.Errorf("Unchanged = %v, want [shared]", result.Unchanged)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("Conflicts = %v, want none", result.Conflicts)
	}

	// Copied entry must decrypt under the destination's salt
	got, err := dst.ReadSecret("only-src", password)
	if err != nil {
		t.Fatalf("ReadSecret failed: %v", err)
	}
	if !bytes.Equal(got, []byte("new value")) {
		t.Errorf("ReadSecret = %q, want new value", got)
	}
}

func TestMergeConflictSkip(t *testing.T) {
	password := []byte("pw")

	dst, _ := New()
	src, _ := New()
	if err := dst.StoreSecret("key", []byte("ours\n"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := src.StoreSecret("key", []byte("theirs\n"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	result, err := dst.Merge(src, password, MergeSkip)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if len(result.Conflicts) != 1 || result.Conflicts[0].Name != "key" {
		t.Fatalf("Conflicts = %v, want one for key", result.Conflicts)
	}
	if !strings.Contains(result.Conflicts[0].Diff, "ours/key") {
		t.Errorf("Conflict diff missing header: %q", result.Conflicts[0].Diff)
	}

	got, _ := dst.ReadSecret("key", password)
	if !bytes.Equal(got, []byte("ours\n")) {
		t.Errorf("MergeSkip should keep our value, got %q", got)
	}
}

func TestMergeConflictTheirs(t *testing.T) {
	password := []byte("pw")

	dst, _ := New()
	src, _ := New()
	if err := dst.StoreSecret("key", []byte("ours"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := src.StoreSecret("key", []byte("theirs"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	result, err := dst.Merge(src, password, MergeTheirs)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if len(result.Replaced) != 1 || result.Replaced[0] != "key" {
		t.Errorf("Replaced = %v, want [key]", result.Replaced)
	}

	got, _ := dst.ReadSecret("key", password)
	if !bytes.Equal(got, []byte("theirs")) {
		t.Errorf("MergeTheirs should take their value, got %q", got)
	}
}

func TestMergeConflictAbort(t *testing.T) {
	password := []byte("pw")

	dst, _ := New()
	src, _ := New()
	if err := dst.StoreSecret("key", []byte("ours"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := src.StoreSecret("key", []byte("theirs"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	if _, err := dst.Merge(src, password, MergeAbort); err == nil {
		t.Error("MergeAbort should fail on conflict")
	}

	got, _ := dst.ReadSecret("key", password)
	if !bytes.Equal(got, []byte("ours")) {
		t.Errorf("Aborted merge should leave our value, got %q", got)
	}
}

func TestMergeWrongPassword(t *testing.T) {
	dst, _ := New()
	src, _ := New()
	if err := src.StoreSecret("key", []byte("value"), []byte("pw")); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	if _, err := dst.Merge(src, []byte("wrong"), MergeSkip); !errors.Is(err, crypto.ErrDecryption) {
		t.Errorf("Expected ErrDecryption, got %v", err)
	}
}

func TestIsText(t *testing.T) {
	cases := []struct {
		data []byte
		want bool
	}{
		{[]byte(""), true},
		{[]byte("plain text secret\n"), true},
		{[]byte("multi\nline\twith\ttabs"), true},
		{[]byte{0x00, 0x01, 0x02}, false},
		{[]byte{0xff, 0xfe, 0x41}, false},
	}
	for i, c := range cases {
		if got := IsText(c.data); got != c.want {
			t.Errorf("Case %d: IsText(%v) = %v, want %v", i, c.data, got, c.want)
		}
	}
}
