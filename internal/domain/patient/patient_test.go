package patient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInsuranceCurrentAt(t *testing.T) {
	now := time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)

	ptr := func(ti time.Time) *time.Time { return &ti }

	tests := []struct {
		name        string
		lastPayment *time.Time
		want        bool
	}{
		{"never paid", nil, false},
		{"paid today", ptr(now), true},
		{"paid five months ago", ptr(now.AddDate(0, -5, 0)), true},
		{"paid exactly six months ago", ptr(now.AddDate(0, -6, 0)), true},
		{"paid just over six months ago", ptr(now.AddDate(0, -6, -1)), false},
		{"paid a year ago", ptr(now.AddDate(-1, 0, 0)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Patient{LastInsurancePaymentAt: tt.lastPayment}
			assert.Equal(t, tt.want, p.InsuranceCurrentAt(now))
		})
	}
}

func TestIsActive(t *testing.T) {
	p := &Patient{Status: StatusActive}
	assert.True(t, p.IsActive())

	p.Status = StatusInactive
	assert.False(t, p.IsActive())

	now := time.Now()
	p = &Patient{Status: StatusActive, DeletedAt: &now}
	assert.False(t, p.IsActive())
}
