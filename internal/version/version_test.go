package version

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		want   int
		wantOK bool
	}{
		{"equal", "1.18.0", "1.18", 0, true},
		{"minor less", "1.17.2", "1.18", -1, true},
		{"major greater", "2.4.57", "1.99", 1, true},
		{"v prefix", "v2.0", "2.0.0", 0, true},
		{"build decoration ignored", "2.4.57 (Debian)", "2.4.50", 1, true},
		{"prerelease below release", "8.9.1-p1", "8.9.1", -1, true},
		{"non-version left", "openssh", "8.9", 0, false},
		{"non-version right", "1.0", "latest", 0, false},
		{"empty", "", "1.0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compare(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("Compare(%q, %q) ok = %v, want %v", tt.a, tt.b, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
