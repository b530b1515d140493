package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"french national", "06 12 34 56 78", "+33612345678"},
		{"french international", "+33 6 12 34 56 78", "+33612345678"},
		{"moroccan international", "+212 661-234567", "+212661234567"},
		{"blank", "   ", ""},
		{"garbage passes through", "not a number", "not a number"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input); got != tc.want {
				t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
