package validate

import (
	"strings"
	"testing"

	"soundwars/internal/apperr"
)

func TestSanitize(t *testing.T) {
	got := Sanitize("  <script>alert(1)</script><b>Midnight</b> Drive  ")
	if strings.Contains(got, "<") {
		t.Fatalf("markup survived: %q", got)
	}
	if !strings.Contains(got, "Midnight") {
		t.Fatalf("text lost: %q", got)
	}
	if long := Sanitize(strings.Repeat("a", 1500)); len(long) != 1000 {
		t.Fatalf("len = %d, want 1000", len(long))
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		pw string
		ok bool
	}{
		{"Str0ng!pass", true},
		{"short1!", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoSpecial12", false},
	}
	for _, tt := range tests {
		err := Password(tt.pw)
		if (err == nil) != tt.ok {
			t.Errorf("Password(%q) err = %v, want ok=%v", tt.pw, err, tt.ok)
		}
		if err != nil && apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("Password(%q) kind = %q", tt.pw, apperr.KindOf(err))
		}
	}
}

func TestUsername(t *testing.T) {
	for _, ok := range []string{"ada", "beat_maker_99"} {
		if err := Username(ok); err != nil {
			t.Errorf("Username(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ab", strings.Repeat("x", 31), "has space", "dash-name"} {
		if err := Username(bad); err == nil {
			t.Errorf("Username(%q) accepted", bad)
		}
	}
}

func TestTxRef(t *testing.T) {
	if err := TxRef("abc1234567"); err != nil {
		t.Errorf("10 chars rejected: %v", err)
	}
	if err := TxRef("SW_1700000000-42"); err != nil {
		t.Errorf("underscore/dash rejected: %v", err)
	}
	for _, bad := range []string{"abc123456", strings.Repeat("a", 101), "abc 1234567", "abc1234567;"} {
		if err := TxRef(bad); err == nil {
			t.Errorf("TxRef(%q) accepted", bad)
		}
	}
}

func TestEmail(t *testing.T) {
	if err := Email("fan@soundwars.app"); err != nil {
		t.Error(err)
	}
	if err := Email("not-an-email"); err == nil {
		t.Error("bad email accepted")
	}
}
