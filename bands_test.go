package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBandLabel(t *testing.T) {
	cases := []struct {
		freq  uint
		label string
	}{
		{146520000, "2m"},
		{7074000, "40m"},
		{14250000, "20m"},
		{433500000, "70cm"},
		{100000000, ""},
		{0, ""},
	}
	for _, c := range cases {
		if got := bandLabel(c.freq); got != c.label {
			t.Errorf("bandLabel(%d) = %q, expected %q", c.freq, got, c.label)
		}
	}
}

func TestTxAllowed(t *testing.T) {
	if !txAllowed(146520000) {
		t.Error("146.52 MHz should be inside the 2m band")
	}
	if txAllowed(100000000) {
		t.Error("100 MHz broadcast band should not allow TX")
	}
	// band edges are inclusive
	if !txAllowed(144000000) || !txAllowed(148000000) {
		t.Error("2m band edges should allow TX")
	}
}

func writeBandPlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bands.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBandPlan(t *testing.T) {
	saved := civBands
	defer func() { civBands = saved }()

	path := writeBandPlan(t, `bands:
  - from: 144000000
    to: 146000000
    label: 2m-cept
  - from: 430000000
    to: 440000000
    label: 70cm-cept
`)
	if err := loadBandPlan(path); err != nil {
		t.Fatalf("loadBandPlan failed: %v", err)
	}
	if len(civBands) != 2 {
		t.Fatalf("loaded %d bands, expected 2", len(civBands))
	}
	if got := bandLabel(145000000); got != "2m-cept" {
		t.Errorf("bandLabel(145 MHz) = %q after load", got)
	}
	// the file replaces the built-in table, it does not extend it
	if txAllowed(7074000) {
		t.Error("40m should be gone after loading a two band plan")
	}
}

func TestLoadBandPlanErrors(t *testing.T) {
	saved := civBands
	defer func() { civBands = saved }()

	cases := []struct {
		name    string
		content string
	}{
		{"empty range", "bands:\n  - from: 148000000\n    to: 144000000\n    label: backwards\n"},
		{"no bands", "other: stuff\n"},
		{"not yaml", "bands: [\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeBandPlan(t, c.content)
			if err := loadBandPlan(path); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if err := loadBandPlan(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
