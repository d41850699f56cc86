package color_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pseudotrace/pkg/color"
)

func TestDisabledColorIsPlain(t *testing.T) {
	color.EnableColor(false)
	defer color.EnableColor(true)

	assert.False(t, color.IsColorEnabled())
	assert.Equal(t, "Error: boom", color.Error("boom"))
	assert.Equal(t, "▶   3 x ← 1", color.Listing(3, "x ← 1", true))
	assert.Equal(t, "   12 endif", color.Listing(12, "endif", false))
}

func TestEnabledColorWrapsText(t *testing.T) {
	color.EnableColor(true)

	assert.True(t, color.IsColorEnabled())
	assert.Contains(t, color.GreenText("ok"), "\x1b[")
	assert.Contains(t, color.GreenText("ok"), "ok")
}
