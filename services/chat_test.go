package services

import "testing"

func TestRemoveBoldItalic(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "sin formato", "sin formato"},
		{"bold", "precio **$1200** final", "precio $1200 final"},
		{"italic", "es *muy* suave", "es muy suave"},
		{"mixed", "**Vichy** tiene *stock*", "Vichy tiene stock"},
		{"multiline", "**Hola**\n*chau*", "Hola\nchau"},
		{"several bold", "**a** y **b**", "a y b"},
		{"unclosed", "queda *solo", "queda *solo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveBoldItalic(tt.in); got != tt.want {
				t.Errorf("RemoveBoldItalic(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
