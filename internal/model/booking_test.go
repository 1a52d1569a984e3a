package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"disjoint before", "09:00", "10:00", "10:30", "11:30", false},
		{"disjoint after", "11:00", "12:00", "09:00", "10:00", false},
		{"touching boundary", "09:00", "10:00", "10:00", "11:00", false},
		{"touching boundary reversed", "10:00", "11:00", "09:00", "10:00", false},
		{"partial overlap", "09:00", "10:00", "09:30", "10:30", true},
		{"contained", "09:00", "12:00", "10:00", "11:00", true},
		{"containing", "10:00", "11:00", "09:00", "12:00", true},
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s1, err := ParseClock(tc.s1)
			require.NoError(t, err)
			e1, err := ParseClock(tc.e1)
			require.NoError(t, err)
			s2, err := ParseClock(tc.s2)
			require.NoError(t, err)
			e2, err := ParseClock(tc.e2)
			require.NoError(t, err)

			assert.Equal(t, tc.want, Overlaps(s1, e1, s2, e2))
		})
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{
		"+79991234567",
		"+3801234567890",
		"09991234567",
		"0123456789012345",
	}
	for _, p := range valid {
		assert.True(t, ValidPhone(p), p)
	}

	invalid := []string{
		"",
		"123456789",
		"+7999",
		"79991234567",
		"+7 999 123 45 67",
		"0999-123-4567",
	}
	for _, p := range invalid {
		assert.False(t, ValidPhone(p), p)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-20")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, 20, d.Day())

	_, err = ParseDate("20.05.2024")
	assert.Error(t, err)
}
