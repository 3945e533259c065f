package sanitizer

import "testing"

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase with spaces", "ba 2 pa 1234", "BA2PA1234"},
		{"already normalized", "BA2PA1234", "BA2PA1234"},
		{"tabs and multiple spaces", "ba\t2  pa 1234", "BA2PA1234"},
		{"leading and trailing spaces", "  ba2pa1234  ", "BA2PA1234"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePlate(tt.input); got != tt.want {
				t.Errorf("NormalizePlate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"e164 passthrough", "+9779841234567", "+9779841234567", false},
		{"local format", "9841234567", "+9779841234567", false},
		{"with spaces", " +977 984 123 4567 ", "+9779841234567", false},
		{"empty", "", "", true},
		{"garbage", "not-a-phone", "", true},
		{"too short", "12345", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePhone(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("SanitizePhone(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizePhone(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
