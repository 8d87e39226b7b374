package services_test

import (
	"errors"
	"testing"

	"brocante/internal/apperrors"
	"brocante/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestContentFilter_DetectViolations(t *testing.T) {
	filter := services.NewContentFilter()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "clean text",
			text: "excellent vintage figure",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "email also matches the handle detector",
			text: "contact me at a@b.com",
			want: []string{services.ViolationEmail, services.ViolationHandle},
		},
		{
			name: "french national phone",
			text: "appelle moi au 06 12 34 56 78",
			want: []string{services.ViolationPhone},
		},
		{
			name: "french international phone",
			text: "joignable au +33 6 12 34 56 78",
			want: []string{services.ViolationPhone},
		},
		{
			name: "generic international phone",
			text: "call +1 415 555 2671 anytime",
			want: []string{services.ViolationPhone},
		},
		{
			name: "url",
			text: "see https://shop.example.com/deal",
			want: []string{services.ViolationURL},
		},
		{
			name: "social media handle",
			text: "DM @collector_fan for details",
			want: []string{services.ViolationHandle},
		},
		{
			name: "url containing a handle yields both labels",
			text: "message me on https://t.me/@dealer",
			want: []string{services.ViolationURL, services.ViolationHandle},
		},
		{
			name: "repeated emails yield a single label",
			text: "a@b.com or backup c@d.org",
			want: []string{services.ViolationEmail, services.ViolationHandle},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.DetectViolations(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentFilter_DetectViolations_IsDeterministic(t *testing.T) {
	filter := services.NewContentFilter()
	text := "write to seller1@mail.fr or 06 99 88 77 66"

	first := filter.DetectViolations(text)
	second := filter.DetectViolations(text)

	assert.Equal(t, first, second)
	assert.Contains(t, first, services.ViolationEmail)
	assert.Contains(t, first, services.ViolationPhone)
}

func TestContentFilter_Validate(t *testing.T) {
	filter := services.NewContentFilter()

	// Clean text passes
	assert.NoError(t, filter.Validate("beautiful porcelain vase", "description"))

	// Violating text returns a ContentViolationError carrying the field name
	// and every detected label
	err := filter.Validate("mail me at buyer@mail.com", "description")
	assert.Error(t, err)

	var violation *apperrors.ContentViolationError
	assert.True(t, errors.As(err, &violation))
	assert.Equal(t, "description", violation.Field)
	assert.Contains(t, violation.Violations, services.ViolationEmail)
	assert.Contains(t, err.Error(), "description")
	assert.Contains(t, err.Error(), services.ViolationEmail)
}
