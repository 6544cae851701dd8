package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"sdkmatch/scoring"
	"sdkmatch/validator"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	bestStyle   = cellStyle.Foreground(lipgloss.Color("42"))
	fatalStyle  = cellStyle.Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...)
}

// RenderText writes the human-readable form of r.
func RenderText(w io.Writer, r *Report) error {
	var b strings.Builder
	if r.Counts != nil {
		b.WriteString(titleStyle.Render("Scan") + "\n")
		fmt.Fprintf(&b, "%d application, %d bootloader, %d configuration (%d files visited, %d excluded)\n",
			r.Counts.Application, r.Counts.SBL, r.Counts.Config, r.Counts.TotalFiles, r.Counts.Excluded)
	}
	if len(r.Applications) > 0 {
		b.WriteString(titleStyle.Render("Applications") + "\n")
		t := newTable("#", "description", "size", "path").StyleFunc(plainStyle)
		for i, fw := range r.Applications {
			t.Row(strconv.Itoa(i+1), fw.Description, strconv.FormatInt(fw.SizeBytes, 10), fw.Path)
		}
		b.WriteString(t.String() + "\n")
	}
	if r.Firmware != nil {
		b.WriteString(titleStyle.Render("Firmware") + "\n")
		fmt.Fprintf(&b, "%s\n%s\n", r.Firmware.Description, dimStyle.Render(r.Firmware.Path))
	}
	if len(r.Bootloaders) > 0 {
		b.WriteString(titleStyle.Render("Bootloaders") + "\n")
		b.WriteString(bootloaderTable(r.Bootloaders) + "\n")
	}
	if len(r.Configs) > 0 {
		b.WriteString(titleStyle.Render("Configurations") + "\n")
		b.WriteString(configTable(r.Configs) + "\n")
		b.WriteString(configNotes(r.Configs))
	}
	for _, d := range r.Images {
		b.WriteString(titleStyle.Render("Image") + "\n")
		t := newTable("field", "value").StyleFunc(plainStyle)
		t.Row("path", d.Path)
		t.Row("layout", string(d.Layout))
		t.Row("flashable", strconv.FormatBool(d.Flashable))
		t.Row("size", strconv.FormatInt(d.SizeBytes, 10))
		t.Row("magic", d.Magic)
		t.Row("sentinel", strconv.FormatUint(uint64(d.Sentinel), 10))
		t.Row("expected length", strconv.FormatInt(d.Expected, 10))
		t.Row("kind", d.Kind)
		b.WriteString(t.String() + "\n")
	}
	if len(r.Validations) > 0 {
		b.WriteString(titleStyle.Render("Validation") + "\n")
		b.WriteString(validationTable(r.Validations) + "\n")
	}
	if r.Handoff != nil {
		b.WriteString(titleStyle.Render("Handoff") + "\n")
		b.WriteString(handoffTable(r.Handoff) + "\n")
		if !r.Handoff.Flashable {
			b.WriteString(warnStyle.Render("bootloader is not a multi-image container and cannot be flashed") + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func plainStyle(row, col int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return cellStyle
}

func bootloaderTable(matches []scoring.BootloaderMatch) string {
	t := newTable("#", "score", "variant", "layout", "path")
	for i, m := range matches {
		t.Row(strconv.Itoa(i+1), strconv.Itoa(m.Score), string(m.Diagnostics.Variant),
			string(m.Diagnostics.Layout), m.Candidate.Path)
	}
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row == 0:
			return bestStyle
		case !matches[row].Diagnostics.Layout.Flashable():
			return fatalStyle
		}
		return cellStyle
	}).String()
}

func configTable(matches []scoring.ConfigMatch) string {
	t := newTable("#", "score", "tier1", "tier2", "timing", "antenna", "path")
	for i, m := range matches {
		d := m.Diagnostics
		t.Row(strconv.Itoa(i+1), strconv.Itoa(m.Score), strconv.Itoa(d.Tier1.Total()),
			strconv.Itoa(d.Tier2.Total()), yesNo(d.TimingMatch), string(d.AntennaMode), m.Candidate.Path)
	}
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case len(matches[row].Diagnostics.Fatal) > 0:
			return fatalStyle
		case row == 0:
			return bestStyle
		}
		return cellStyle
	}).String()
}

func configNotes(matches []scoring.ConfigMatch) string {
	var b strings.Builder
	for i, m := range matches {
		if len(m.Diagnostics.Fatal) == 0 && len(m.Diagnostics.Warnings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "#%d %s\n", i+1, m.Candidate.Filename)
		for _, f := range m.Diagnostics.Fatal {
			b.WriteString("  " + fatalStyle.UnsetPadding().Render("fatal: "+f) + "\n")
		}
		for _, w := range m.Diagnostics.Warnings {
			b.WriteString("  " + warnStyle.Render("warning: "+w) + "\n")
		}
	}
	return b.String()
}

func validationTable(reports []validator.Report) string {
	t := newTable("path", "required", "antenna", "encoding", "timing", "invalid", "digest")
	for _, r := range reports {
		required := "ok"
		if !r.Readable {
			required = "unreadable"
		} else if !r.Required.AllPresent {
			required = "missing " + strings.Join(r.Required.Missing, ",")
		}
		timing := "ok"
		if !r.Core.TimingMatch {
			timing = r.Core.Diff
		}
		t.Row(r.Path, required, antennaSummary(r), encodingSummary(r.Encoding), timing,
			strings.Join(r.InvalidDirectives, ","), r.Digest)
	}
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		r := reports[row]
		if !r.Required.AllPresent || len(r.InvalidDirectives) > 0 {
			return fatalStyle
		}
		return cellStyle
	}).String()
}

func antennaSummary(r validator.Report) string {
	if r.Antenna.UsesBoardDirective {
		return string(r.Required.Antenna)
	}
	return fmt.Sprintf("%s %d/%d", r.Required.Antenna, r.Antenna.ManualCount, len(validator.ManualAntennaDirectives))
}

func encodingSummary(e validator.Encoding) string {
	var parts []string
	if e.HasBOM {
		parts = append(parts, "bom")
	}
	if e.NonASCII {
		parts = append(parts, fmt.Sprintf("non-ascii@%d", e.NonASCIIOffset))
	}
	if e.WideChar {
		parts = append(parts, fmt.Sprintf("wide@%d", e.WideCharOffset))
	}
	if len(parts) == 0 {
		return "ascii"
	}
	return strings.Join(parts, " ")
}

func handoffTable(h *Handoff) string {
	t := newTable("field", "value").StyleFunc(plainStyle)
	t.Row("firmware", h.Firmware.Path)
	t.Row("bootloader", h.Bootloader.Path)
	t.Row("flash address", h.FlashAddress)
	t.Row("flash size", strconv.FormatInt(h.FlashSize, 10))
	t.Row("layout", string(h.Layout))
	addDigests(t, "firmware", h.Firmware.Digests)
	addDigests(t, "bootloader", h.Bootloader.Digests)
	if h.Config != nil {
		t.Row("config", h.Config.Path)
		addDigests(t, "config", h.Config.Digests)
	}
	return t.String()
}

func addDigests(t *table.Table, prefix string, digests map[string]string) {
	for _, algo := range sortedKeys(digests) {
		t.Row(prefix+" "+algo, digests[algo])
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
