package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withOutputFormat temporarily overrides the global --output value.
func withOutputFormat(t *testing.T, format string) {
	t.Helper()

	previous := outputFormat
	outputFormat = format
	t.Cleanup(func() { outputFormat = previous })
}

// TestValidateOutputFormat verifies the accepted --output values and the
// rejection of everything else.
func TestValidateOutputFormat(t *testing.T) {
	for _, format := range []string{formatText, formatJSON, formatYAML} {
		withOutputFormat(t, format)
		assert.NoError(t, validateOutputFormat(), "format %q should be valid", format)
	}

	withOutputFormat(t, "xml")
	err := validateOutputFormat()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

// TestRenderStructuredJSON verifies the JSON renderer produces indented
// output with the expected fields.
func TestRenderStructuredJSON(t *testing.T) {
	withOutputFormat(t, formatJSON)

	out, err := renderStructured(map[string]string{"path": "/wt/feature"})
	require.NoError(t, err)
	assert.Contains(t, out, `"path": "/wt/feature"`)
}

// TestRenderStructuredYAML verifies the YAML renderer and that its
// output carries no trailing newline (printStructured adds one).
func TestRenderStructuredYAML(t *testing.T) {
	withOutputFormat(t, formatYAML)

	out, err := renderStructured(map[string]string{"path": "/wt/feature"})
	require.NoError(t, err)
	assert.Equal(t, "path: /wt/feature", out)
}

// TestIsStructuredOutput verifies text is the only non-structured format.
func TestIsStructuredOutput(t *testing.T) {
	withOutputFormat(t, formatText)
	assert.False(t, isStructuredOutput())

	withOutputFormat(t, formatJSON)
	assert.True(t, isStructuredOutput())

	withOutputFormat(t, formatYAML)
	assert.True(t, isStructuredOutput())
}
