package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/trivernis/pngmsg/pngdata"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// writeChunkList prints one block per chunk of the png
func writeChunkList(w io.Writer, path string, png *pngdata.PngData, verbose bool) {
	chunks := png.Chunks()
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %d chunks", path, len(chunks))))
	for i, c := range chunks {
		ct := c.Type()
		fmt.Fprintf(w, "%s %s %d bytes\n",
			dimStyle.Render(fmt.Sprintf("#%-3d", i)),
			labelStyle.Render(ct.String()),
			c.Length())
		if !verbose {
			continue
		}
		indent := "     "
		fmt.Fprintf(w, "%sis critical: %t\n", indent, ct.IsCritical())
		fmt.Fprintf(w, "%sis public: %t\n", indent, ct.IsPublic())
		fmt.Fprintf(w, "%shas valid reserved bit: %t\n", indent, ct.IsReservedBitValid())
		fmt.Fprintf(w, "%sis safe to copy: %t\n", indent, ct.IsSafeToCopy())
		fmt.Fprintf(w, "%sis valid: %t\n", indent, ct.IsValid())
		fmt.Fprintf(w, "%scrc as dec: %d\n", indent, c.CRC())
		fmt.Fprintf(w, "%scrc as hex: %08x\n", indent, c.CRC())
	}
}

func writeInfo(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf(format, args...)))
}
