package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/obras-crm/internal/application/dto"
)

func TestDefaultPage(t *testing.T) {
	tests := []struct {
		name string
		in   dto.PageRequest
		want dto.PageRequest
	}{
		{"vacía", dto.PageRequest{}, dto.PageRequest{Limit: 20}},
		{"offset negativo", dto.PageRequest{Limit: 5, Offset: -3}, dto.PageRequest{Limit: 5}},
		{"límite sobre el tope", dto.PageRequest{Limit: 500, Offset: 40}, dto.PageRequest{Limit: dto.MaxPageLimit, Offset: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.DefaultPage()
			assert.Equal(t, tt.want, got)
		})
	}
}
