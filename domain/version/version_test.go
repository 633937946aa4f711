package version_test

import (
	"testing"

	"github.com/artpar/modhost/domain/version"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		requirement string
		want        bool
	}{
		{"range inside", "4.8.0", "4.0 - 5.0", true},
		{"range above", "5.1.0", "4.0 - 5.0", false},
		{"range below", "3.9.9", "4.0 - 5.0", false},
		{"range inclusive lower", "4.0", "4.0 - 5.0", true},
		{"range inclusive upper", "5.0.0", "4.0 - 5.0", true},
		{"range without spaces", "4.2", "4.0-4.5", true},
		{"less than equal boundary", "5.8.0", "< 5.8", false},
		{"less than below", "5.7.9", "< 5.8", true},
		{"greater equal boundary", "6.5.0", ">= 6.5", true},
		{"greater equal below", "6.4.3", ">= 6.5", false},
		{"greater than", "4.7.1", "> 4.7", true},
		{"greater than equal value", "4.7", "> 4.7.0", false},
		{"less equal", "4.7", "<= 4.7", true},
		{"exact", "4.9.1", "= 4.9.1", true},
		{"exact mismatch", "4.9.2", "= 4.9.1", false},
		{"exact missing segments", "4.9", "= 4.9.0", true},
		{"no space after operator", "6.5", ">=6.5", true},
		{"absent companion upper bound", version.Zero, "< 5.8", true},
		{"absent companion lower bound", version.Zero, ">= 4.7", false},
		{"unparseable fails open", "1.0", "~> 2.0", true},
		{"empty fails open", "1.0", "", true},
		{"bare version fails open", "1.0", "2.0", true},
		{"four segments", "5.8.1.2", "> 5.8.1.1", true},
		{"pre-release ignored", "6.5.0-beta1", ">= 6.5", true},
		{"empty current is zero", "", "< 1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := version.Evaluate(tt.current, tt.requirement)
			if got != tt.want {
				t.Errorf("Evaluate(%q, %q) = %v, want %v", tt.current, tt.requirement, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		requirement string
		wantOK      bool
		wantOp      version.Op
		wantVersion string
		wantUpper   string
	}{
		{">= 4.7", true, version.OpGTE, "4.7", ""},
		{"  < 5.8  ", true, version.OpLT, "5.8", ""},
		{"= 1.2.3", true, version.OpEQ, "1.2.3", ""},
		{"4.0 - 5.0", true, version.OpRange, "4.0", "5.0"},
		{">= 6.5-rc1", true, version.OpGTE, "6.5-rc1", ""},
		{"1.0 - 2.0 - 3.0", false, "", "", ""},
		{"- 2.0", false, "", "", ""},
		{"latest", false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.requirement, func(t *testing.T) {
			c, ok := version.Parse(tt.requirement)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.requirement, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if c.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", c.Op, tt.wantOp)
			}
			if c.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", c.Version, tt.wantVersion)
			}
			if c.Upper != tt.wantUpper {
				t.Errorf("Upper = %q, want %q", c.Upper, tt.wantUpper)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0.0", 0},
		{"1.10", "1.9", 1},
		{"2", "10", -1},
		{"v1.2.3", "1.2.3", 0},
		{"1.2.3.4", "1.2.3", 1},
		{"1.2.3", "1.2.3.0", 0},
		{"abc", "0.0.0", 0},
	}

	for _, tt := range tests {
		if got := version.Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestConstraint_String(t *testing.T) {
	c, _ := version.Parse("4.0-5.0")
	if got := c.String(); got != "4.0 - 5.0" {
		t.Errorf("String() = %q, want %q", got, "4.0 - 5.0")
	}
	c, _ = version.Parse(">=6.5")
	if got := c.String(); got != ">= 6.5" {
		t.Errorf("String() = %q, want %q", got, ">= 6.5")
	}
}
