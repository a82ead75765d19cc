package process

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// Table-Driven Tests: defaults
// =============================================================================

func TestDefaultConfigs(t *testing.T) {
	rs := DefaultRedshiftConfig()
	xf := DefaultXfluxConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"redshift BinaryPath", rs.BinaryPath, "redshift"},
		{"redshift DayTemperature", rs.DayTemperature, "6500K"},
		{"xflux BinaryPath", xf.BinaryPath, "xflux"},
		{"xflux NoFork", xf.NoFork, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

// =============================================================================
// Table-Driven Tests: redshift BuildArgs
// =============================================================================

func TestRedshiftDriver_BuildArgs(t *testing.T) {
	tests := []struct {
		name  string
		color string
		loc   Location
		want  []string
	}{
		{
			name:  "location and color",
			color: "3400",
			loc:   Location{Latitude: "40.7", Longitude: "-74.0"},
			want:  []string{"-l", "40.7:-74.0", "-t", "6500K:3400"},
		},
		{
			name:  "no location",
			color: "2700",
			loc:   Location{},
			want:  []string{"-t", "6500K:2700"},
		},
		{
			name:  "no color",
			color: "",
			loc:   Location{Latitude: "51.5", Longitude: "0.1"},
			want:  []string{"-l", "51.5:0.1"},
		},
		{
			name:  "nothing configured",
			color: "",
			loc:   Location{},
			want:  nil,
		},
		{
			name:  "whitespace trimmed",
			color: " 4200 ",
			loc:   Location{Latitude: " 1 ", Longitude: " 2 "},
			want:  []string{"-l", "1:2", "-t", "6500K:4200"},
		},
		{
			name:  "zipcode ignored",
			color: "3400",
			loc:   Location{Zipcode: "10001"},
			want:  []string{"-t", "6500K:3400"},
		},
	}

	d := NewRedshiftDriver(DefaultRedshiftConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.BuildArgs(tt.color, tt.loc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedshiftDriver_BuildArgs_Pure(t *testing.T) {
	d := NewRedshiftDriver(DefaultRedshiftConfig())
	loc := Location{Latitude: "40.7", Longitude: "-74.0"}

	first := d.BuildArgs("3400", loc)
	for i := 0; i < 10; i++ {
		if got := d.BuildArgs("3400", loc); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d: BuildArgs() = %q, want %q", i, got, first)
		}
	}

	// Mutating the result must not leak into later calls
	first[0] = "mutated"
	if got := d.BuildArgs("3400", loc); got[0] != "-l" {
		t.Errorf("BuildArgs() shares state between calls: %q", got)
	}
}

func TestRedshiftDriver_Validate(t *testing.T) {
	d := NewRedshiftDriver(DefaultRedshiftConfig())

	tests := []struct {
		name    string
		loc     Location
		wantErr bool
	}{
		{"both set", Location{Latitude: "1", Longitude: "2"}, false},
		{"latitude only", Location{Latitude: "1"}, true},
		{"longitude only", Location{Longitude: "2"}, true},
		{"zipcode only", Location{Zipcode: "10001"}, true},
		{"empty", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Validate(tt.loc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrLocationRequired) {
				t.Errorf("Validate() error = %v, want ErrLocationRequired", err)
			}
		})
	}
}

func TestRedshiftDriver_NoLiveColor(t *testing.T) {
	d := NewRedshiftDriver(DefaultRedshiftConfig())
	if d.LiveColor() {
		t.Error("redshift should not support live color")
	}
	if cmd := d.ColorCommand("3400"); cmd != "" {
		t.Errorf("ColorCommand() = %q, want empty", cmd)
	}
}

// =============================================================================
// Table-Driven Tests: xflux BuildArgs
// =============================================================================

func TestXfluxDriver_BuildArgs(t *testing.T) {
	tests := []struct {
		name   string
		color  string
		loc    Location
		noFork bool
		want   []string
	}{
		{
			name:   "zipcode",
			color:  "3400",
			loc:    Location{Zipcode: "10001"},
			noFork: true,
			want:   []string{"-z", "10001", "-k", "3400", "-nofork"},
		},
		{
			name:   "coordinates",
			color:  "2700",
			loc:    Location{Latitude: "40.7", Longitude: "-74.0"},
			noFork: true,
			want:   []string{"-l", "40.7", "-g", "-74.0", "-k", "2700", "-nofork"},
		},
		{
			name:   "latitude without longitude",
			color:  "2700",
			loc:    Location{Latitude: "40.7"},
			noFork: true,
			want:   []string{"-l", "40.7", "-k", "2700", "-nofork"},
		},
		{
			name:   "no color no fork",
			color:  "",
			loc:    Location{Zipcode: "10001"},
			noFork: false,
			want:   []string{"-z", "10001"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultXfluxConfig()
			cfg.NoFork = tt.noFork
			got := NewXfluxDriver(cfg).BuildArgs(tt.color, tt.loc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestXfluxDriver_Validate(t *testing.T) {
	d := NewXfluxDriver(DefaultXfluxConfig())

	if err := d.Validate(Location{Zipcode: "10001"}); err != nil {
		t.Errorf("zipcode: unexpected error %v", err)
	}
	if err := d.Validate(Location{Latitude: "40"}); err != nil {
		t.Errorf("latitude: unexpected error %v", err)
	}
	if err := d.Validate(Location{}); !errors.Is(err, ErrLocationRequired) {
		t.Errorf("empty: error = %v, want ErrLocationRequired", err)
	}
}

func TestXfluxDriver_LiveColor(t *testing.T) {
	d := NewXfluxDriver(DefaultXfluxConfig())
	if !d.LiveColor() {
		t.Error("xflux should support live color")
	}
	if cmd := d.ColorCommand(" 2700"); cmd != "k=2700" {
		t.Errorf("ColorCommand() = %q, want %q", cmd, "k=2700")
	}
}

// =============================================================================
// NewDriver / CommandString
// =============================================================================

func TestNewDriver(t *testing.T) {
	tests := []struct {
		name       string
		daemon     string
		binaryPath string
		wantName   string
		wantBinary string
		wantErr    bool
	}{
		{"default is redshift", "", "", "redshift", "redshift", false},
		{"redshift", "redshift", "", "redshift", "redshift", false},
		{"case insensitive", "XFlux", "", "xflux", "xflux", false},
		{"custom binary", "redshift", "/opt/bin/redshift", "redshift", "/opt/bin/redshift", false},
		{"unknown", "gammastep", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDriver(tt.daemon, tt.binaryPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDriver() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if d.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.wantName)
			}
			if d.BinaryPath() != tt.wantBinary {
				t.Errorf("BinaryPath() = %q, want %q", d.BinaryPath(), tt.wantBinary)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	d := NewRedshiftDriver(DefaultRedshiftConfig())

	got := CommandString(d, "3400", Location{Latitude: "40.7", Longitude: "-74.0"})
	want := "redshift -l 40.7:-74.0 -t 6500K:3400"
	if got != want {
		t.Errorf("CommandString() = %q, want %q", got, want)
	}

	if got := CommandString(d, "", Location{}); got != "redshift" {
		t.Errorf("CommandString() without args = %q, want %q", got, "redshift")
	}
}

func TestLocation_HasCoordinates(t *testing.T) {
	if (Location{Latitude: "  "}).HasCoordinates() {
		t.Error("blank latitude should not count")
	}
	if !(Location{Latitude: "0"}).HasCoordinates() {
		t.Error("latitude 0 should count")
	}
	if strings.TrimSpace(NeutralColor) != "6500" {
		t.Errorf("NeutralColor = %q", NeutralColor)
	}
}
