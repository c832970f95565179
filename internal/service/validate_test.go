package service

import (
	"errors"
	"testing"
)

type sample struct {
	Name  string   `json:"name" validate:"required"`
	Date  string   `json:"date" validate:"required,datetime=2006-01-02"`
	Slots []string `json:"time" validate:"min=1,max=2,dive,datetime=15:04"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name  string
		in    sample
		field string
	}{
		{"missing name", sample{Date: "2024-01-01", Slots: []string{"08:00"}}, "name"},
		{"bad date", sample{Name: "x", Date: "01/02/2024", Slots: []string{"08:00"}}, "date"},
		{"no slots", sample{Name: "x", Date: "2024-01-01"}, "time"},
		{"too many slots", sample{Name: "x", Date: "2024-01-01", Slots: []string{"08:00", "09:00", "10:00"}}, "time"},
		{"bad slot", sample{Name: "x", Date: "2024-01-01", Slots: []string{"08:00", "25:00"}}, "time[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStruct(tt.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatal("not an ErrValidation")
			}
			if ve.Field != tt.field {
				t.Fatalf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}

	if err := validateStruct(sample{Name: "x", Date: "2024-01-01", Slots: []string{"08:00"}}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestNormalizeClock(t *testing.T) {
	if got := normalizeClock("8:05"); got != "08:05" {
		t.Fatalf("got %q", got)
	}
}
