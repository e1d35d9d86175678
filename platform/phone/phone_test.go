package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{"national indian mobile", "9876543210", "IN", "+919876543210"},
		{"already e164", "+919876543210", "IN", "+919876543210"},
		{"spaces and dashes", " 98765-43210 ", "IN", "+919876543210"},
		{"default region when empty", "9876543210", "", "+919876543210"},
		{"empty input", "", "IN", ""},
		{"whitespace only", "   ", "IN", ""},
		{"too short", "12", "IN", ""},
		{"unparseable garbage", "not-a-number", "IN", ""},
		{"valid digits wrong region length", "98765", "IN", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input, tt.region); got != tt.want {
				t.Errorf("NormalizeE164(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		input  string
		region string
		want   bool
	}{
		{"9876543210", "IN", true},
		{"+919876543210", "", true},
		{"12", "IN", false},
		{"", "IN", false},
		{"abcdef", "IN", false},
	}

	for _, tt := range tests {
		if got := IsValid(tt.input, tt.region); got != tt.want {
			t.Errorf("IsValid(%q, %q) = %v, want %v", tt.input, tt.region, got, tt.want)
		}
	}
}
