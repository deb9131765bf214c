// Package summary renders the per-asset stats printed after a build.
package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/engine/compilation"
	"go.trai.ch/csspost/internal/ui/style"
)

// Printer writes build summaries.
type Printer struct {
	w      io.Writer
	name   lipgloss.Style
	size   lipgloss.Style
	flag   lipgloss.Style
	cached lipgloss.Style
	failed lipgloss.Style
}

// NewPrinter creates a Printer writing to w with styles from r.
func NewPrinter(w io.Writer, r *lipgloss.Renderer) *Printer {
	return &Printer{
		w:      w,
		name:   r.NewStyle().Bold(true),
		size:   r.NewStyle().Foreground(style.Slate),
		flag:   r.NewStyle().Foreground(style.Green).Bold(true),
		cached: r.NewStyle().Foreground(style.Slate),
		failed: r.NewStyle().Foreground(style.Red),
	}
}

// Print writes one aligned line per asset: name, size, flags in brackets and the
// processing status of assets that were not freshly transformed.
func (p *Printer) Print(stats []compilation.AssetStat) error {
	nameWidth, sizeWidth := 0, 0
	sizes := make([]string, len(stats))
	for i, s := range stats {
		sizes[i] = FormatSize(s.Size)
		nameWidth = max(nameWidth, len(s.Name))
		sizeWidth = max(sizeWidth, len(sizes[i]))
	}

	for i, s := range stats {
		var b strings.Builder
		b.WriteString(p.name.Render(s.Name))
		b.WriteString(strings.Repeat(" ", nameWidth-len(s.Name)+2))
		b.WriteString(strings.Repeat(" ", sizeWidth-len(sizes[i])))
		b.WriteString(p.size.Render(sizes[i]))
		for _, flag := range s.Flags {
			b.WriteString(" " + p.flag.Render("["+flag+"]"))
		}
		switch s.Status {
		case domain.AssetStatusCached:
			b.WriteString(" " + p.cached.Render("(cached)"))
		case domain.AssetStatusFailed:
			b.WriteString(" " + p.failed.Render("(failed)"))
		}
		if _, err := fmt.Fprintln(p.w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// jsonStat is the machine readable form of a summary row.
type jsonStat struct {
	Name   string   `json:"name"`
	Size   int      `json:"size"`
	Flags  []string `json:"flags"`
	Status string   `json:"status,omitempty"`
}

// PrintJSON writes the stats as an indented JSON array.
func (p *Printer) PrintJSON(stats []compilation.AssetStat) error {
	out := make([]jsonStat, 0, len(stats))
	for _, s := range stats {
		flags := s.Flags
		if flags == nil {
			flags = []string{}
		}
		out = append(out, jsonStat{Name: s.Name, Size: s.Size, Flags: flags, Status: string(s.Status)})
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(n int) string {
	const unit = 1024
	switch {
	case n < unit:
		return fmt.Sprintf("%d B", n)
	case n < unit*unit:
		return fmt.Sprintf("%.2f KiB", float64(n)/unit)
	default:
		return fmt.Sprintf("%.2f MiB", float64(n)/(unit*unit))
	}
}
