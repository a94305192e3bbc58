package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		ok   bool
	}{
		{"complete", Record{ID: "T1", Origin: "BankA", Timestamp: "2024-01-01"}, true},
		{"missing id", Record{Origin: "BankA", Timestamp: "2024-01-01"}, false},
		{"missing origin", Record{ID: "T1", Timestamp: "2024-01-01"}, false},
		{"missing timestamp", Record{ID: "T1", Origin: "BankA"}, false},
	}
	for _, tt := range tests {
		err := tt.rec.Validate()
		if tt.ok {
			assert.NoError(t, err, tt.name)
		} else {
			assert.True(t, errors.Is(err, ErrInvalidRecord), tt.name)
		}
	}
}

func TestCSVRendersTwoDecimals(t *testing.T) {
	r := Record{ID: "T1", Amount: 12.5, Origin: "A", Destination: "B", Timestamp: "2024-03-04"}
	assert.Equal(t, "T1,12.50,A,B,2024-03-04", r.CSV())
}

func TestInRangeInclusive(t *testing.T) {
	assert.True(t, InRange("2024-01-01", "2024-01-01", "2024-01-05"))
	assert.True(t, InRange("2024-01-05", "2024-01-01", "2024-01-05"))
	assert.False(t, InRange("2024-01-06", "2024-01-01", "2024-01-05"))
	assert.False(t, InRange("2023-12-31", "2024-01-01", "2024-01-05"))
}
