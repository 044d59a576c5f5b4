package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorScheme_Status(t *testing.T) {
	scheme := DefaultColorScheme()

	assert.Same(t, scheme.StatusOK, scheme.Status(200))
	assert.Same(t, scheme.StatusOK, scheme.Status(204))
	assert.Same(t, scheme.StatusWarn, scheme.Status(301))
	assert.Same(t, scheme.StatusError, scheme.Status(404))
	assert.Same(t, scheme.StatusError, scheme.Status(503))
}

func TestNoColorScheme(t *testing.T) {
	scheme := NoColorScheme()
	for _, c := range scheme.all() {
		assert.Equal(t, "text", c.Sprint("text"))
	}
}

func TestIcons(t *testing.T) {
	assert.Equal(t, "✓", SuccessIcon(true))
	assert.Equal(t, "✗", ErrorIcon(true))
	assert.Contains(t, SuccessIcon(false), "✓")
	assert.Contains(t, ErrorIcon(false), "✗")
}
