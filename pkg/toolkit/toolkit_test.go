package toolkit

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `@{
    RootModule = 'PSAppDeployToolkit.psm1'
    ModuleVersion = '4.0.5'
    GUID = '8c3c366b-8606-4576-9f2d-4051144f7ca2'
}`

func TestParseModuleVersion(t *testing.T) {
	got, err := ParseModuleVersion([]byte(sampleManifest))
	if err != nil {
		t.Fatal(err)
	}
	if got != "4.0.5" {
		t.Errorf("version = %q, want 4.0.5", got)
	}
}

func TestParseModuleVersion_MissingEntry(t *testing.T) {
	if _, err := ParseModuleVersion([]byte("@{ RootModule = 'x.psm1' }")); err == nil {
		t.Error("expected error for manifest without ModuleVersion")
	}
}

func TestInstalledVersion_ReadsManifestNextToToolkit(t *testing.T) {
	dir := t.TempDir()
	manifestDir := filepath.Join(dir, "PSAppDeployToolkit")
	if err := os.MkdirAll(manifestDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(manifestDir, "PSAppDeployToolkit.psd1"), []byte(sampleManifest), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := InstalledVersion(filepath.Join(dir, "Invoke-AppDeployToolkit.exe"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "4.0.5" {
		t.Errorf("version = %q, want 4.0.5", got)
	}
}

func TestMeetsMinimum(t *testing.T) {
	cases := []struct {
		installed string
		minimum   string
		want      bool
	}{
		{"4.0.5", "4.0.0", true},
		{"4.0.0", "4.0.0", true},
		{"3.10.2", "4.0.0", false},
		{"4.1", "4.0.5", true},
	}
	for _, tc := range cases {
		got, err := MeetsMinimum(tc.installed, tc.minimum)
		if err != nil {
			t.Fatalf("MeetsMinimum(%q, %q) error: %v", tc.installed, tc.minimum, err)
		}
		if got != tc.want {
			t.Errorf("MeetsMinimum(%q, %q) = %t, want %t", tc.installed, tc.minimum, got, tc.want)
		}
	}
}

func TestMeetsMinimum_UnparseableVersion(t *testing.T) {
	if _, err := MeetsMinimum("not-a-version", "4.0.0"); err == nil {
		t.Error("expected error for unparseable installed version")
	}
}
