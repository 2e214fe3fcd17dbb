package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney_ToDecimal(t *testing.T) {
	m := Money(10_050) // 100.50 RUB
	assert.Equal(t, "100.5", m.ToDecimal().String())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "100.00", Money(10_000).String())
	assert.Equal(t, "0.07", Money(7).String())
	assert.Equal(t, "-12.34", Money(-1_234).String())
}
