package scoring

import (
	"fmt"

	"sdkmatch/imageformat"
	"sdkmatch/metadata"
	"sdkmatch/ranking"
	"sdkmatch/scanner"
	"sdkmatch/utils"
)

type BootloaderDiagnostics struct {
	SameSDK      bool               `json:"same_sdk"`
	ToolsPath    bool               `json:"tools_path"`
	PrebuiltPath bool               `json:"prebuilt_path"`
	Layout       imageformat.Layout `json:"layout"`
	PlatformPath bool               `json:"platform_path"`
	Variant      metadata.Variant   `json:"variant"`
	Reasons      []string           `json:"reasons,omitempty"`
}

// ScoreBootloaders scores every candidate against fw and returns them best
// first. Ties keep enumeration order. A SingleImage candidate loses more
// than any other signal can add back.
func (s *Scorer) ScoreBootloaders(fw *scanner.FirmwareRecord, candidates []*scanner.BootloaderRecord) []BootloaderMatch {
	results := make([]BootloaderMatch, 0, len(candidates))
	for _, sbl := range candidates {
		score, diag := s.scoreBootloader(fw, sbl)
		results = append(results, BootloaderMatch{Candidate: sbl, Score: score, Diagnostics: diag})
	}
	ranking.SortDescending(results)
	return results
}

func (s *Scorer) scoreBootloader(fw *scanner.FirmwareRecord, sbl *scanner.BootloaderRecord) (int, BootloaderDiagnostics) {
	path := utils.SlashLower(sbl.Path)
	diag := BootloaderDiagnostics{Variant: sbl.Variant}
	score := 0
	add := func(points int, reason string) {
		score += points
		diag.Reasons = append(diag.Reasons, fmt.Sprintf("%+d %s", points, reason))
	}

	if fw != nil && SameSDK(fw.Path, sbl.Path) {
		diag.SameSDK = true
		add(bootSameSDK, "same SDK root")
	}
	if toolsBootTokens.ContainsAny(path) {
		diag.ToolsPath = true
		add(bootToolsPath, "official tools/boot location")
	}
	if prebuiltTokens.ContainsAny(path) {
		diag.PrebuiltPath = true
		add(bootPrebuilt, "prebuilt example location")
	}

	diag.Layout = sbl.ImageLayout(s.Inspector)
	switch diag.Layout {
	case imageformat.MultiImage:
		add(bootMultiImage, "multi-image container")
	case imageformat.SingleImage:
		add(bootSingleImage, "single-image container, RAM load only")
	}

	if platformTokens.ContainsAny(path) {
		diag.PlatformPath = true
		add(bootPlatformPath, "target platform in path")
	}
	switch sbl.Variant {
	case metadata.VariantStandard:
		add(bootStandard, "standard variant")
	case metadata.VariantLite:
		add(bootLite, "lite variant")
	}
	return score, diag
}
