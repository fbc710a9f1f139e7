package styles

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

func TestIsValidHexColor(t *testing.T) {
	tests := []struct {
		name     string
		color    string
		expected bool
	}{
		{"valid 6-digit hex", "#A78BFA", true},
		{"valid 6-digit hex lowercase", "#a78bfa", true},
		{"valid 3-digit hex", "#ABC", true},
		{"invalid - no hash", "A78BFA", false},
		{"invalid - too short", "#AB", false},
		{"invalid - 4 digits", "#ABCD", false},
		{"invalid - bad characters", "#GHIJKL", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isValidHexColor(tt.color)
			if got != tt.expected {
				t.Errorf("isValidHexColor(%q) = %v, want %v", tt.color, got, tt.expected)
			}
		})
	}
}

func validTheme() ThemeFile {
	return ThemeFile{
		Name:    "Test Theme",
		Version: "1",
		Colors: ThemeColors{
			Primary:   "#A78BFA",
			Secondary: "#10B981",
			Warning:   "#F59E0B",
			Error:     "#F87171",
			Muted:     "#9CA3AF",
			Surface:   "#1F2937",
			Text:      "#F9FAFB",
			Border:    "#6B7280",
		},
	}
}

func TestThemeFileValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ThemeFile)
		errMsg string
	}{
		{"valid minimal theme", func(*ThemeFile) {}, ""},
		{"missing name", func(f *ThemeFile) { f.Name = "" }, "theme name is required"},
		{"missing version", func(f *ThemeFile) { f.Version = "" }, "theme version is required"},
		{"unsupported version", func(f *ThemeFile) { f.Version = "2" }, "unsupported theme version"},
		{"missing primary", func(f *ThemeFile) { f.Colors.Primary = "" }, "color 'primary' is required"},
		{"invalid border", func(f *ThemeFile) { f.Colors.Border = "gray" }, "color 'border' has invalid format"},
		{"invalid optional status", func(f *ThemeFile) { f.Colors.Status.Paid = "#12" }, "color 'status.paid' has invalid format"},
		{"valid optional status", func(f *ThemeFile) { f.Colors.Status.Pending = "#FFF" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := validTheme()
			tt.modify(&theme)
			err := theme.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestToPalette_StatusDefaults(t *testing.T) {
	theme := validTheme()
	p := theme.ToPalette()
	if p.StatusPaid != p.Secondary {
		t.Errorf("StatusPaid = %q, want secondary %q", p.StatusPaid, p.Secondary)
	}
	if p.StatusPending != p.Warning {
		t.Errorf("StatusPending = %q, want warning %q", p.StatusPending, p.Warning)
	}

	theme.Colors.Status.Paid = "#00FF00"
	if got := theme.ToPalette().StatusPaid; got != "#00FF00" {
		t.Errorf("StatusPaid = %q, want %q", got, "#00FF00")
	}
}

// -----------------------------------------------------------------------------
// Resolve
// -----------------------------------------------------------------------------

func writeTheme(t *testing.T, fs afero.Fs, path string, theme ThemeFile) {
	t.Helper()
	data, err := yaml.Marshal(&theme)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestResolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	custom := validTheme()
	custom.Colors.Primary = "#123456"
	writeTheme(t, fs, "/themes/shop.yaml", custom)
	if err := afero.WriteFile(fs, "/themes/broken.yml", []byte("name: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		value       string
		wantPrimary string
		wantErr     string
	}{
		{"empty selects default", "", string(DefaultPalette().Primary), ""},
		{"built-in name", "nord", string(NordPalette().Primary), ""},
		{"built-in with spaces", "  dracula ", string(DraculaPalette().Primary), ""},
		{"custom file", "/themes/shop.yaml", "#123456", ""},
		{"missing file", "/themes/none.yaml", "", "reading theme file"},
		{"malformed file", "/themes/broken.yml", "", "parsing theme file"},
		{"unknown name", "neon", "", `unknown theme "neon"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Resolve(fs, tt.value)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want containing %q", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.value, err)
			}
			if string(p.Primary) != tt.wantPrimary {
				t.Errorf("Resolve(%q).Primary = %q, want %q", tt.value, p.Primary, tt.wantPrimary)
			}
		})
	}
}

func TestExportTheme_RoundTripsThroughLoader(t *testing.T) {
	for _, name := range BuiltinThemes() {
		t.Run(name, func(t *testing.T) {
			data, err := ExportTheme(ThemeName(name))
			if err != nil {
				t.Fatalf("ExportTheme() error = %v", err)
			}
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "t.yaml", data, 0o644); err != nil {
				t.Fatal(err)
			}
			p, err := Resolve(fs, "t.yaml")
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if *p != *GetPalette(ThemeName(name)) {
				t.Errorf("palette mismatch after export:\n got %+v\nwant %+v", *p, *GetPalette(ThemeName(name)))
			}
		})
	}

	if _, err := ExportTheme("neon"); err == nil {
		t.Error("ExportTheme(neon) error = nil, want error")
	}
}
