package scoring

import (
	"fmt"
	"path"
	"strings"

	"sdkmatch/ranking"
	"sdkmatch/scanner"
	"sdkmatch/utils"
	"sdkmatch/validator"
)

// Tier1 itemizes the dominant positive signals.
type Tier1 struct {
	Keywords   int `json:"keywords"`
	SDK        int `json:"sdk"`
	DemoDir    int `json:"demo_dir"`
	Parameters int `json:"parameters"`
	Scenes     int `json:"scenes"`
}

func (t Tier1) Total() int {
	return t.Keywords + t.SDK + t.DemoDir + t.Parameters + t.Scenes
}

type Tier2 struct {
	Application int `json:"application"`
	Chip        int `json:"chip"`
	Range       int `json:"range"`
	Power       int `json:"power"`
}

func (t Tier2) Total() int {
	return t.Application + t.Chip + t.Range + t.Power
}

// ConfigDiagnostics explains a configuration score without recomputing it.
type ConfigDiagnostics struct {
	AllRequired        bool                  `json:"all_required"`
	Missing            []string              `json:"missing,omitempty"`
	InvalidDirectives  []string              `json:"invalid_directives,omitempty"`
	HasBOM             bool                  `json:"has_bom"`
	NonASCII           bool                  `json:"non_ascii"`
	WideChar           bool                  `json:"wide_char"`
	PercentComment     bool                  `json:"percent_comment"`
	AntennaMode        validator.AntennaMode `json:"antenna_mode"`
	AntennaBoard       bool                  `json:"antenna_board"`
	AntennaManualCount int                   `json:"antenna_manual_count"`
	AntennaComplete    bool                  `json:"antenna_complete"`
	TimingMatch        bool                  `json:"timing_match"`
	Calibration        int                   `json:"calibration"`
	LowPower           int                   `json:"low_power"`
	Structural         int                   `json:"structural"`
	Tier1              Tier1                 `json:"tier1"`
	Tier2              Tier2                 `json:"tier2"`
	DemoFamily         string                `json:"demo_family,omitempty"`
	Scenes             []string              `json:"scenes,omitempty"`
	Digest             string                `json:"digest,omitempty"`
	Warnings           []string              `json:"warnings,omitempty"`
	Fatal              []string              `json:"fatal,omitempty"`
}

// ScoreConfigs scores every candidate against fw and returns them best
// first. Every check runs for every candidate so diagnostics are complete
// even when a fatal problem decides the score.
func (s *Scorer) ScoreConfigs(fw *scanner.FirmwareRecord, candidates []*scanner.ConfigRecord) []ConfigMatch {
	results := make([]ConfigMatch, 0, len(candidates))
	for _, cfg := range candidates {
		score, diag := s.scoreConfig(fw, cfg)
		results = append(results, ConfigMatch{Candidate: cfg, Score: score, Diagnostics: diag})
	}
	ranking.SortDescending(results)
	return results
}

func (s *Scorer) scoreConfig(fw *scanner.FirmwareRecord, cfg *scanner.ConfigRecord) (int, ConfigDiagnostics) {
	report := cfg.Validation(s.Validator)
	diag := ConfigDiagnostics{
		AllRequired:        report.Required.AllPresent,
		Missing:            report.Required.Missing,
		InvalidDirectives:  report.InvalidDirectives,
		HasBOM:             report.Encoding.HasBOM,
		NonASCII:           report.Encoding.NonASCII,
		WideChar:           report.Encoding.WideChar,
		PercentComment:     report.Encoding.HasPercentComment,
		AntennaMode:        report.Required.Antenna,
		AntennaBoard:       report.Antenna.UsesBoardDirective,
		AntennaManualCount: report.Antenna.ManualCount,
		AntennaComplete:    report.Antenna.Complete,
		TimingMatch:        report.Core.TimingMatch,
		Calibration:        report.Core.Calibration,
		LowPower:           report.Core.LowPower,
		Digest:             report.Digest,
	}

	penalty := 0
	if !report.Readable {
		diag.Fatal = append(diag.Fatal, "configuration unreadable: "+report.ReadError)
	}
	if !report.Required.AllPresent {
		diag.Fatal = append(diag.Fatal, "missing required directives: "+strings.Join(report.Required.Missing, ", "))
	}
	if len(report.InvalidDirectives) > 0 {
		penalty = invalidPenalty
		diag.Fatal = append(diag.Fatal, "directives not supported on xWRL6844: "+strings.Join(report.InvalidDirectives, ", "))
	}

	if report.Encoding.NonASCII {
		diag.Structural += nonASCIIPenalty
		diag.Warnings = append(diag.Warnings, fmt.Sprintf("non-ASCII byte at offset %d", report.Encoding.NonASCIIOffset))
	}
	if report.Encoding.WideChar {
		diag.Structural += wideCharPenalty
		diag.Warnings = append(diag.Warnings, fmt.Sprintf("wide character found at byte offset %d", report.Encoding.WideCharOffset))
	}
	if report.Encoding.HasBOM {
		diag.Warnings = append(diag.Warnings, "UTF-8 byte order mark present")
	}
	if report.Readable && !report.Antenna.Complete {
		diag.Warnings = append(diag.Warnings, fmt.Sprintf("antenna configuration incomplete (%d/%d manual directives)",
			report.Antenna.ManualCount, len(validator.ManualAntennaDirectives)))
	}
	if report.Readable && !report.Core.TimingMatch && report.Core.Diff != "" {
		diag.Warnings = append(diag.Warnings, "timing: "+report.Core.Diff)
	}
	if report.ParseError != "" {
		diag.Warnings = append(diag.Warnings, "unparsed lines: "+report.ParseError)
	}

	if fw != nil {
		diag.Tier1 = tier1(fw, cfg, report, &diag)
		diag.Tier2 = tier2(fw, cfg)
	} else {
		diag.Tier1.Parameters = parameterScore(report.Core)
	}
	// Tiers stay in the diagnostics but cannot lift a config that is
	// missing directives off the sentinel.
	if !report.Required.AllPresent {
		return s.FatalScore + penalty, diag
	}
	return penalty + diag.Structural + diag.Tier1.Total() + diag.Tier2.Total(), diag
}

func tier1(fw *scanner.FirmwareRecord, cfg *scanner.ConfigRecord, report validator.Report, diag *ConfigDiagnostics) Tier1 {
	var t Tier1
	t.Keywords = keywordOverlap(expand(fw.Keywords()), cfg.Keywords())

	switch {
	case SameSDK(fw.Path, cfg.Path):
		t.SDK = sdkSame
	case RelatedSDK(fw.Path, cfg.Path):
		t.SDK = sdkRelated
	}

	fwPath := utils.SlashLower(fw.Path)
	cfgPath := utils.SlashLower(cfg.Path)
	for _, family := range demoFamilies {
		if family.firmware.ContainsAny(fwPath) && family.configDirs.ContainsAny(cfgPath) {
			t.DemoDir = demoDirectory
			diag.DemoFamily = family.name
			break
		}
	}

	t.Parameters = parameterScore(report.Core)

	if inCabinTokens.ContainsAny(fwPath) {
		diag.Scenes = sceneTokens.Matches(strings.ToLower(cfg.Filename))
		t.Scenes = sceneKeyword * len(diag.Scenes)
	}
	return t
}

func parameterScore(core validator.Core) int {
	score := 0
	if core.TimingMatch {
		score += timingMatch
	}
	switch core.Calibration {
	case 1:
		score += calibrationOn
	case 0:
		score += calibrationOff
	}
	switch core.LowPower {
	case 1:
		score += lowPowerOn
	case 0:
		score += lowPowerOff
	}
	return score
}

// expand appends synonyms of each firmware token, keeping first-seen order.
func expand(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	push := func(tok string) {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	for _, tok := range tokens {
		push(tok)
	}
	for _, tok := range tokens {
		for _, syn := range synonyms[tok] {
			push(syn)
		}
	}
	return out
}

func keywordOverlap(fwTokens, cfgTokens []string) int {
	score := 0
	for _, f := range fwTokens {
		for _, c := range cfgTokens {
			switch {
			case f == c:
				score += keywordEqual
			case strings.Contains(f, c) || strings.Contains(c, f):
				score += keywordContains
			}
			if score >= keywordCap {
				return keywordCap
			}
		}
	}
	return score
}

func tier2(fw *scanner.FirmwareRecord, cfg *scanner.ConfigRecord) Tier2 {
	var t Tier2
	if cfg.Application != "" && cfg.Application != otherApplication {
		fwText := strings.ToLower(fw.Category + " " + fw.Subcategory)
		app := strings.ToLower(cfg.Application)
		switch {
		case strings.Contains(fwText, app):
			t.Application = appLabelInFw
		case fw.Category != "" && fw.Category != otherCategory && strings.Contains(app, strings.ToLower(fw.Category)):
			t.Application = fwLabelInApp
		}
	}

	cfgName := strings.ToLower(path.Base(utils.SlashLower(cfg.Filename)))
	switch {
	case chipExactTokens.ContainsAny(cfgName):
		t.Chip = chipExact
	case chipGenericTokens.ContainsAny(cfgName):
		t.Chip = chipGeneric
	}

	fwPath := utils.SlashLower(fw.Path)
	if shortRangeTokens.ContainsAny(fwPath) && cfg.RangeMeters > 0 {
		switch {
		case cfg.RangeMeters <= 5:
			t.Range = rangeNear
		case cfg.RangeMeters <= 10:
			t.Range = rangeMid
		case cfg.RangeMeters <= 20:
			t.Range = rangeFar
		}
	}

	if lowPowerTokens.ContainsAny(fwPath) && cfg.PowerMode == "low power" {
		t.Power = powerAlignment
	}
	return t
}
