package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinorUnitsRoundsInsteadOfTruncating(t *testing.T) {
	// 19.99 and 0.29 have no exact float64 representation and sit just
	// below the true value; truncation would bill 1998 and 28.
	assert.Equal(t, int64(1999), minorUnits(19.99))
	assert.Equal(t, int64(29), minorUnits(0.29))
	assert.Equal(t, int64(100), minorUnits(1))
	assert.Equal(t, int64(22500), minorUnits(225.00))
	assert.Equal(t, int64(0), minorUnits(0))
}
