package errors

import (
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "A", false},
		{"valid with underscore", "A_min", false},
		{"valid with dash", "matrix-2", false},
		{"valid with dot", "A.v2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal", "../secrets", true},
		{"path separator", "npz/A", true},
		{"backslash", "npz\\A", true},
		{"null byte", "A\x00B", true},
		{"control char", "A\x01B", true},
		{"newline", "A\nB", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNames(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{"single valid", []string{"A"}, false},
		{"multiple valid", []string{"A", "A_min", "A_rec"}, false},
		{"empty list", nil, true},
		{"one invalid aborts", []string{"A", "../B"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNames(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNames(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
