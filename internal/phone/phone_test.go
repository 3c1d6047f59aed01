package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		region      string
		expected    string
		shouldError bool
	}{
		{
			name:     "UK mobile with country code",
			input:    "+44 7911 123456",
			region:   "GB",
			expected: "+447911123456",
		},
		{
			name:     "UK mobile without country code",
			input:    "07911 123456",
			region:   "GB",
			expected: "+447911123456",
		},
		{
			name:     "US number with dashes",
			input:    "212-555-0175",
			region:   "US",
			expected: "+12125550175",
		},
		{
			name:     "leading and trailing spaces",
			input:    "  +44 7911 123456  ",
			region:   "GB",
			expected: "+447911123456",
		},
		{
			name:        "too short",
			input:       "123",
			region:      "GB",
			shouldError: true,
		},
		{
			name:        "not a number",
			input:       "call me maybe",
			region:      "GB",
			shouldError: true,
		},
		{
			name:        "empty",
			input:       "",
			region:      "GB",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input, tt.region)
			if tt.shouldError {
				if err == nil {
					t.Fatalf("Normalize(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
