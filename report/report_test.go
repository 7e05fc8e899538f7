package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEquityChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "equity.html")

	err := WriteEquityChart(path, "IBM portfolio", []float64{1000, 1010, 995, 1050})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	html := string(data)
	assert.True(t, strings.Contains(html, "IBM portfolio"))
	assert.True(t, strings.Contains(html, "1050"))
}

func TestWriteEquityChartEmpty(t *testing.T) {
	err := WriteEquityChart(filepath.Join(t.TempDir(), "x.html"), "empty", nil)
	assert.Error(t, err)
}
