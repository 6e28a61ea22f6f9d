package console_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/pkg/console"
)

func TestTableRendersHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	err := console.Table(&buf, []string{"Month", "Revenue"}, [][]string{
		{"Jan 2026", "350.00"},
		{"Feb 2026", "0"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Jan 2026")
	assert.Contains(t, out, "350.00")
	assert.Contains(t, out, "Feb 2026")
}
