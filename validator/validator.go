// Package validator inspects radar configuration files for mandatory
// directives, encoding problems, antenna setup and core timing parameters.
package validator

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"sdkmatch/fileio"
	"sdkmatch/logger"

	"github.com/cespare/xxhash/v2"
	"github.com/mattn/go-runewidth"
)

// RequiredDirectives must all appear for a configuration to start the sensor.
var RequiredDirectives = []string{"channelCfg", "frameCfg", "sensorStart"}

const BoardDirective = "antGeometryBoard"

// ManualAntennaDirectives describe the antenna layout without the board
// shortcut.
var ManualAntennaDirectives = []string{"antGeometry0", "antGeometry1", "antPhaseRot", "compRangeBiasAndRxChanPhase"}

// InvalidDirectives belong to older device families and are rejected by the
// xWRL6844 command parser.
var InvalidDirectives = []string{"profileCfg", "chirpCfg", "adcbufCfg", "lvdsStreamCfg", "bpmCfg"}

const (
	DefaultLoopCount = 64
	DefaultPeriod    = 100
)

// Unset marks a tri-state directive that does not appear in the file.
const Unset = -1

type AntennaMode string

const (
	AntennaBoard  AntennaMode = "board"
	AntennaManual AntennaMode = "manual"
	AntennaMixed  AntennaMode = "mixed"
	AntennaNone   AntennaMode = "none"
)

type Required struct {
	AllPresent bool        `json:"all_present"`
	Missing    []string    `json:"missing,omitempty"`
	Antenna    AntennaMode `json:"antenna_mode"`
}

// Encoding offsets are -1 when nothing was found.
type Encoding struct {
	HasBOM            bool `json:"has_bom"`
	NonASCII          bool `json:"non_ascii"`
	NonASCIIOffset    int  `json:"non_ascii_offset"`
	WideChar          bool `json:"wide_char"`
	WideCharOffset    int  `json:"wide_char_offset"`
	HasPercentComment bool `json:"has_percent_comment"`
}

type Antenna struct {
	UsesBoardDirective bool `json:"uses_board_directive"`
	ManualCount        int  `json:"manual_count"`
	Complete           bool `json:"complete"`
}

type Core struct {
	TimingFound bool    `json:"timing_found"`
	TimingMatch bool    `json:"timing_match"`
	LoopCount   float64 `json:"loop_count,omitempty"`
	Period      float64 `json:"period,omitempty"`
	Diff        string  `json:"diff,omitempty"`
	Calibration int     `json:"calibration"`
	LowPower    int     `json:"low_power"`
}

// Report bundles every check for one file.
type Report struct {
	Path              string   `json:"path"`
	Readable          bool     `json:"readable"`
	ReadError         string   `json:"read_error,omitempty"`
	Digest            string   `json:"digest,omitempty"`
	Required          Required `json:"required"`
	Encoding          Encoding `json:"encoding"`
	Antenna           Antenna  `json:"antenna"`
	Core              Core     `json:"core"`
	DirectiveCount    int      `json:"directive_count"`
	InvalidDirectives []string `json:"invalid_directives,omitempty"`
	ParseError        string   `json:"parse_error,omitempty"`
}

type Validator struct {
	RefLoopCount float64
	RefPeriod    float64
	Read         fileio.Options
}

func New(refLoopCount, refPeriod float64, read fileio.Options) *Validator {
	return &Validator{RefLoopCount: refLoopCount, RefPeriod: refPeriod, Read: read}
}

var Default = New(DefaultLoopCount, DefaultPeriod, fileio.Options{MaxSize: 1024 * 1024})

// Failed is the report for a file that could not be read.
func Failed(path string, err error) Report {
	r := Report{
		Path:     path,
		Required: Required{Missing: append([]string(nil), RequiredDirectives...), Antenna: AntennaNone},
		Encoding: Encoding{NonASCIIOffset: -1, WideCharOffset: -1},
		Core:     Core{Calibration: Unset, LowPower: Unset},
	}
	if err != nil {
		r.ReadError = err.Error()
	}
	return r
}

// Validate reads path once and runs all checks. It never fails; read errors
// produce the Failed report.
func (v *Validator) Validate(path string) Report {
	raw, err := fileio.ReadContent(path, v.Read)
	if err != nil {
		logger.Debugf("Failed to read config %s: %v", path, err)
		return Failed(path, err)
	}
	r := v.Check(raw)
	r.Path = path
	return r
}

// Check runs all checks over in-memory content.
func (v *Validator) Check(raw []byte) Report {
	r := Report{
		Readable: true,
		Digest:   fmt.Sprintf("%016x", xxhash.Sum64(raw)),
		Required: CheckRequired(raw),
		Encoding: CheckEncoding(raw),
		Antenna:  CheckAntenna(raw),
		Core:     v.CheckCore(raw),
	}
	invalid, count, err := CheckInvalidDirectives(raw)
	r.InvalidDirectives = invalid
	r.DirectiveCount = count
	if err != nil {
		r.ParseError = err.Error()
	}
	return r
}

func asciiText(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c < utf8.RuneSelf {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func CheckRequired(raw []byte) Required {
	text := asciiText(raw)
	r := Required{AllPresent: true}
	for _, name := range RequiredDirectives {
		if !strings.Contains(text, name) {
			r.AllPresent = false
			r.Missing = append(r.Missing, name)
		}
	}
	board := strings.Contains(text, BoardDirective)
	manual := false
	for _, name := range ManualAntennaDirectives {
		if strings.Contains(text, name) {
			manual = true
			break
		}
	}
	switch {
	case board && manual:
		r.Antenna = AntennaMixed
	case board:
		r.Antenna = AntennaBoard
	case manual:
		r.Antenna = AntennaManual
	default:
		r.Antenna = AntennaNone
	}
	return r
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var widthCond = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

func CheckEncoding(raw []byte) Encoding {
	e := Encoding{NonASCIIOffset: -1, WideCharOffset: -1}
	start := 0
	if bytes.HasPrefix(raw, utf8BOM) {
		e.HasBOM = true
		start = len(utf8BOM)
	}
	for i := start; i < len(raw); i++ {
		if raw[i] >= utf8.RuneSelf {
			e.NonASCII = true
			e.NonASCIIOffset = i
			break
		}
	}
	if e.NonASCII {
		for i := e.NonASCIIOffset; i < len(raw); {
			r, size := utf8.DecodeRune(raw[i:])
			if r != utf8.RuneError && size > 1 && widthCond.RuneWidth(r) == 2 {
				e.WideChar = true
				e.WideCharOffset = i
				break
			}
			i += size
		}
	}
	for _, line := range bytes.Split(raw[start:], []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("%")) {
			e.HasPercentComment = true
			break
		}
	}
	return e
}

func CheckAntenna(raw []byte) Antenna {
	text := asciiText(raw)
	if strings.Contains(text, BoardDirective) {
		return Antenna{UsesBoardDirective: true, Complete: true}
	}
	a := Antenna{}
	for _, name := range ManualAntennaDirectives {
		if strings.Contains(text, name) {
			a.ManualCount++
		}
	}
	a.Complete = a.ManualCount == len(ManualAntennaDirectives)
	return a
}

var (
	frameCfgRe = regexp.MustCompile(`(?m)^[ \t]*frameCfg[ \t]+(\S+)[ \t]+(\S+)[ \t]+(\S+)[ \t]+(\S+)[ \t]+(\S+)[ \t]+(\S+)`)
	calibRe    = regexp.MustCompile(`(?m)^[ \t]*runtimeCalibCfg[ \t]+([-+]?\d+)`)
	lowPowerRe = regexp.MustCompile(`(?m)^[ \t]*lowPowerCfg[ \t]+([-+]?\d+)`)
)

// CheckCore compares the frameCfg loop count (field 3) and period (field 5)
// against the reference values and reads the calibration and low-power flags.
func (v *Validator) CheckCore(raw []byte) Core {
	text := asciiText(raw)
	c := Core{Calibration: triState(calibRe, text), LowPower: triState(lowPowerRe, text)}

	m := frameCfgRe.FindStringSubmatch(text)
	if m == nil {
		c.Diff = "frameCfg with six fields not found"
		return c
	}
	loops, errLoops := strconv.ParseFloat(m[3], 64)
	period, errPeriod := strconv.ParseFloat(m[5], 64)
	if errLoops != nil || errPeriod != nil {
		c.Diff = fmt.Sprintf("frameCfg fields not numeric: %q %q", m[3], m[5])
		return c
	}
	c.TimingFound = true
	c.LoopCount = loops
	c.Period = period

	var diffs []string
	if loops != v.RefLoopCount {
		diffs = append(diffs, fmt.Sprintf("loops %s != %s", formatNum(loops), formatNum(v.RefLoopCount)))
	}
	if period != v.RefPeriod {
		diffs = append(diffs, fmt.Sprintf("period %s != %s", formatNum(period), formatNum(v.RefPeriod)))
	}
	c.TimingMatch = len(diffs) == 0
	c.Diff = strings.Join(diffs, "; ")
	return c
}

func triState(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Unset
	}
	n, err := strconv.Atoi(strings.TrimPrefix(m[1], "+"))
	if err != nil {
		return Unset
	}
	if n == 0 {
		return 0
	}
	return 1
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CheckInvalidDirectives returns the rejected directive names in order of
// first appearance and the number of directives found.
func CheckInvalidDirectives(raw []byte) ([]string, int, error) {
	directives, err := ParseDirectives([]byte(asciiText(raw)))
	var found []string
	seen := make(map[string]bool)
	for _, d := range directives {
		if seen[d.Name] {
			continue
		}
		for _, bad := range InvalidDirectives {
			if d.Name == bad {
				found = append(found, d.Name)
				seen[d.Name] = true
				break
			}
		}
	}
	return found, len(directives), err
}
