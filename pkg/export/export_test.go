package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Course", "Grade"},
		Rows: []map[string]string{
			{"Course": "BIOL 1201", "Grade": "91.50"},
			{"Course": "ENGL, Honors", "Grade": "-"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Course,Grade\nBIOL 1201,91.50\n\"ENGL, Honors\",-\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render("Grades for Doe, Jane", []Section{{
		Title:    "BIOL 1201",
		Subtitle: "Fall 2025",
		Data: Dataset{
			Headers: []string{"Item", "Weight"},
			Rows:    []map[string]string{{"Item": "Quiz 1", "Weight": "20.00%"}},
		},
	}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRejectsEmptySection(t *testing.T) {
	_, err := NewPDFExporter().Render("x", []Section{{Title: "empty"}})
	assert.Error(t, err)
}
