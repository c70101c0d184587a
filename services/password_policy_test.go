package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ngPass!word", false},
		{"too short", "Sh0rt!pw", true},
		{"no uppercase", "str0ngpass!word", true},
		{"no lowercase", "STR0NGPASS!WORD", true},
		{"no number", "StrongPass!word", true},
		{"no special", "Str0ngPassword1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
