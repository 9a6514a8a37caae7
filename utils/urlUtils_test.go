package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "full url", in: "https://app.test/products/7?ref=home", want: "/products/7"},
		{name: "bare path", in: "/checkout", want: "/checkout"},
		{name: "bare path with query", in: "/checkout?step=2", want: "/checkout"},
		{name: "bare path with fragment", in: "/docs#install", want: "/docs"},
		{name: "empty", in: "", want: ""},
		{name: "opaque name", in: "resolve page", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPath(tt.in))
		})
	}
}

func TestLooksLikePath(t *testing.T) {
	assert.True(t, LooksLikePath("/dashboard"))
	assert.True(t, LooksLikePath("/products/7"))
	assert.False(t, LooksLikePath("GET /dashboard"))
	assert.False(t, LooksLikePath("render route"))
	assert.False(t, LooksLikePath(""))
}

func TestNormalizeUrlPattern(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "numeric id", in: "https://app.test/api/users/42", want: "/api/users/*"},
		{name: "uuid", in: "/api/orders/550e8400-e29b-41d4-a716-446655440000", want: "/api/orders/*"},
		{name: "uppercase uuid", in: "/api/orders/550E8400-E29B-41D4-A716-446655440000", want: "/api/orders/*"},
		{name: "mongo object id", in: "/api/orders/507f1f77bcf86cd799439011", want: "/api/orders/*"},
		{name: "multiple segments", in: "/api/users/7/orders/12", want: "/api/users/*/orders/*"},
		{name: "nothing to collapse", in: "/api/users", want: "/api/users"},
		{name: "strips query", in: "/api/users/7?expand=true", want: "/api/users/*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeUrlPattern(tt.in))
		})
	}
}
