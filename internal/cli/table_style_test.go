package cli

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
)

func TestPlainTableWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlainTableWriter(&buf)
	w.SetHeaders("model", "max tokens")
	w.AppendRow("oca/gpt-4.1", "32768")
	w.AppendRow("oca/llama4")
	w.Render()

	expected := "MODEL         MAX TOKENS\n" +
		"oca/gpt-4.1   32768\n" +
		"oca/llama4\n"
	assert.Equal(t, expected, buf.String())
}

func TestPlainTableWriter_IgnoresColorWidth(t *testing.T) {
	text.EnableColors()
	defer text.DisableColors()

	var buf bytes.Buffer
	w := NewPlainTableWriter(&buf)
	w.SetNoHeaders(true)
	w.SetHeaders("a", "b")
	w.AppendRow(text.FgGreen.Sprint("yes"), "x")
	w.AppendRow("no", "y")
	w.Render()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 2)
	assert.Equal(t, "no    y", string(lines[1]))
}

func TestPlainTableWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlainTableWriter(&buf)
	w.Render()
	assert.Empty(t, buf.String())

	w.SetHeaders("a")
	w.SetNoHeaders(true)
	w.Render()
	assert.Empty(t, buf.String())
}
