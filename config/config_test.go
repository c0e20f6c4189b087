package config

import "testing"

func TestParseRlimitSymbolic(t *testing.T) {
	for _, s := range []string{"max", "def"} {
		r, err := ParseRlimit(s)
		if err != nil {
			t.Fatalf("ParseRlimit(%q): %v", s, err)
		}
		if s == "max" && r.Kind != RlimitMax {
			t.Errorf("ParseRlimit(%q).Kind = %v, want RlimitMax", s, r.Kind)
		}
		if s == "def" && r.Kind != RlimitDef {
			t.Errorf("ParseRlimit(%q).Kind = %v, want RlimitDef", s, r.Kind)
		}
	}
}

func TestParseRlimitNumeric(t *testing.T) {
	r, err := ParseRlimit("16")
	if err != nil {
		t.Fatalf("ParseRlimit(16): %v", err)
	}
	if r.Kind != RlimitNumeric || r.Value != 16 {
		t.Errorf("ParseRlimit(16) = %+v, want Numeric/16", r)
	}
}

func TestParseRlimitRejectsHexAndJunk(t *testing.T) {
	for _, s := range []string{"0x10", "16x", "x16", "-1", "abc", ""} {
		if _, err := ParseRlimit(s); err == nil {
			t.Errorf("ParseRlimit(%q) succeeded, want error", s)
		}
	}
}

func TestRlimitResolveNumericAppliesUnit(t *testing.T) {
	r, _ := ParseRlimit("16")
	got := r.Resolve("as", 0, 0)
	want := uint64(16) * ResourceUnit("as")
	if got != want {
		t.Errorf("Resolve numeric = %d, want %d", got, want)
	}
}

func TestRlimitResolveMaxAndDef(t *testing.T) {
	maxR, _ := ParseRlimit("max")
	if got := maxR.Resolve("nofile", 4096, 1024); got != 4096 {
		t.Errorf("Resolve(max) = %d, want hard limit 4096", got)
	}
	defR, _ := ParseRlimit("def")
	if got := defR.Resolve("nofile", 4096, 1024); got != 1024 {
		t.Errorf("Resolve(def) = %d, want soft limit 1024", got)
	}
}

func TestResourceUnitCountVsByteScale(t *testing.T) {
	byteScaled := []string{"as", "core", "fsize", "stack"}
	countScaled := []string{"cpu", "nofile", "nproc"}
	for _, r := range byteScaled {
		if ResourceUnit(r) != 1024*1024 {
			t.Errorf("ResourceUnit(%q) = %d, want 1MB unit", r, ResourceUnit(r))
		}
	}
	for _, r := range countScaled {
		if ResourceUnit(r) != 1 {
			t.Errorf("ResourceUnit(%q) = %d, want unit 1", r, ResourceUnit(r))
		}
	}
}

func TestValidateRequiresArgv(t *testing.T) {
	c := &JailConfig{Mode: ModeStandaloneOnce}
	if err := c.Validate(); err == nil {
		t.Error("Validate() with empty Argv succeeded, want error")
	}
}

func TestValidateRequiresPortInListenMode(t *testing.T) {
	c := &JailConfig{Mode: ModeListenTCP, Argv: []string{"/bin/true"}}
	if err := c.Validate(); err == nil {
		t.Error("Validate() with zero port in listen mode succeeded, want error")
	}
}
