package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
)

func TestParseSlotDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "iso format",
			input: "2026-09-15",
			want:  time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "legacy day month year",
			input: "15_9_2026",
			want:  time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "legacy with surrounding whitespace",
			input: "  15_9_2026 ",
			want:  time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "next tuesday", wantErr: true},
		{name: "legacy missing part", input: "15_9", wantErr: true},
		{name: "legacy non numeric", input: "a_b_c", wantErr: true},
		{name: "legacy month out of range", input: "15_13_2026", wantErr: true},
		{name: "legacy day out of range", input: "32_1_2026", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := entities.ParseSlotDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestAppointmentSlotDateKey(t *testing.T) {
	appointment := &entities.Appointment{
		SlotDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "2026-01-02", appointment.SlotDateKey())
}
