package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  <b>Great</b> movie<script>alert(1)</script> ", "Great movie"},
		{"Tom & Jerry", "Tom & Jerry"},
		{`5 > 3 "quoted" it's`, `5 > 3 "quoted" it's`},
		{"AT&amp;T", "AT&T"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in), tt.in)
	}

	assert.Nil(t, SanitizeTextPtr(nil))
	in := "<i>plain</i>"
	assert.Equal(t, "plain", *SanitizeTextPtr(&in))
}
