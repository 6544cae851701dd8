package scanner

import (
	"path"
	"regexp"
	"strings"

	"sdkmatch/utils"
)

type Kind int

const (
	KindNone Kind = iota
	KindApplication
	KindSBL
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindSBL:
		return "sbl"
	case KindConfig:
		return "config"
	default:
		return "none"
	}
}

const (
	imageExt  = ".appimage"
	configExt = ".cfg"
)

// Exclusion rules match the lowercased, '/'-separated full path and run
// before any inclusion rule.
var exclusionRules = []*regexp.Regexp{
	regexp.MustCompile(`/\.git/`),
	regexp.MustCompile(`/\.metadata/`),
	regexp.MustCompile(`/backup/`),
	regexp.MustCompile(`/deprecated/`),
	regexp.MustCompile(`/obj/`),
	regexp.MustCompile(`/\.settings/`),
	regexp.MustCompile(`/temp/`),
}

var (
	sblPathTokens   = utils.NewTokenSet("/sbl/", "/sbl_", "/bootloader/", "/boot/sbl")
	platformTokens  = utils.NewTokenSet("6844", "xwrl6844", "iwrl6844", "awrl6844")
	systemCfgTokens = utils.NewTokenSet("freertos", "nortos", "board", "syscfg", "sysconfig", "linker", "makefile")
	configDirTokens = utils.NewTokenSet("/profiles/", "/chirp_configs/", "/configs/", "/cfg/", "/visualizer/", "/gui/", "/chirp_config/")
	chipTokens      = utils.NewTokenSet("6844", "68xx", "xwrl68")

	// Demo tool directories such as in_cabin_gui or industrial_visualizer.
	toolDirSuffixes = []string{"_gui", "_visualizer"}
)

// IsExcluded applies the built-in exclusion rules to a path.
func IsExcluded(filePath string) bool {
	slashed := utils.SlashLower(filePath)
	for _, re := range exclusionRules {
		if re.MatchString(slashed) {
			return true
		}
	}
	return false
}

// Classify decides what a file is from its path alone. An image is either an
// SBL or an application, never both; SBL rules are checked first.
func Classify(filePath string) Kind {
	slashed := utils.SlashLower(filePath)
	name := path.Base(slashed)
	switch path.Ext(name) {
	case imageExt:
		if sblPathTokens.ContainsAny(slashed) || strings.HasPrefix(name, "sbl") {
			return KindSBL
		}
		if platformTokens.ContainsAny(slashed) {
			return KindApplication
		}
	case configExt:
		if strings.HasPrefix(name, "ti_") || systemCfgTokens.ContainsAny(name) {
			return KindNone
		}
		if configDirTokens.ContainsAny(slashed) || inToolDir(slashed) || chipTokens.ContainsAny(name) {
			return KindConfig
		}
	}
	return KindNone
}

// inToolDir reports whether any parent directory of a slashed path is a demo
// GUI or visualizer directory.
func inToolDir(slashed string) bool {
	for _, segment := range strings.Split(path.Dir(slashed), "/") {
		for _, suffix := range toolDirSuffixes {
			if strings.HasSuffix(segment, suffix) {
				return true
			}
		}
	}
	return false
}
