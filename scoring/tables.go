package scoring

import "sdkmatch/utils"

// MinValidScore is the lowest score a config with every required directive
// can reach. A fatal sentinel must stay below it.
const MinValidScore = invalidPenalty + nonASCIIPenalty + wideCharPenalty + calibrationOff + lowPowerOff

// Bootloader weights.
const (
	bootSameSDK      = 50
	bootToolsPath    = 40
	bootPrebuilt     = -80
	bootMultiImage   = 30
	bootSingleImage  = -100
	bootPlatformPath = 20
	bootStandard     = 20
	bootLite         = 10
)

// Configuration weights.
const (
	DefaultFatalScore = -1000
	invalidPenalty    = -500
	nonASCIIPenalty   = -30
	wideCharPenalty   = -50

	keywordEqual     = 30
	keywordContains  = 15
	keywordCap       = 60
	sdkSame          = 40
	sdkRelated       = 30
	demoDirectory    = 30
	timingMatch      = 50
	calibrationOn    = 30
	calibrationOff   = -20
	lowPowerOn       = 20
	lowPowerOff      = -10
	sceneKeyword     = 60
	appLabelInFw     = 20
	fwLabelInApp     = 15
	chipExact        = 20
	chipGeneric      = 15
	rangeNear        = 15
	rangeMid         = 10
	rangeFar         = 5
	powerAlignment   = 10
	otherApplication = "Other"
	otherCategory    = "Other"
)

var (
	toolsBootTokens = utils.NewTokenSet("tools/boot")
	prebuiltTokens  = utils.NewTokenSet("prebuilt_examples", "examples/drivers/boot")
	platformTokens  = utils.NewTokenSet("xwrl6844")

	chipExactTokens   = utils.NewTokenSet("6844", "xwrl6844", "iwrl6844", "awrl6844")
	chipGenericTokens = utils.NewTokenSet("68xx", "xwrl68")

	inCabinTokens = utils.NewTokenSet("in_cabin", "incabin", "cabin")
	sceneTokens   = utils.NewTokenSet("cpd", "sbr", "intrusion")

	shortRangeTokens = utils.NewTokenSet(
		"in_cabin", "incabin", "cabin", "cpd", "sbr", "intrusion", "occupancy",
		"gesture", "presence", "kick", "vital", "level_sensing",
	)
	lowPowerTokens = utils.NewTokenSet("low_power", "lowpower", "_lp")
)

// synonyms expand firmware keywords only.
var synonyms = map[string][]string{
	"cabin":    {"incabin", "cpd", "sbr", "intrusion"},
	"incabin":  {"cabin", "cpd", "sbr", "intrusion"},
	"people":   {"tracking", "counting"},
	"tracking": {"people", "counting"},
	"counting": {"people", "tracking"},
	"vital":    {"vitals", "heart", "breath"},
	"presence": {"occupancy", "motion"},
	"mmwave":   {"mmw"},
	"mmw":      {"mmwave"},
}

// demoFamily links a product demo to the tool directories that ship its
// configurations.
type demoFamily struct {
	name       string
	firmware   *utils.TokenSet
	configDirs *utils.TokenSet
}

var demoFamilies = []demoFamily{
	{
		name:       "mmWave Demo",
		firmware:   utils.NewTokenSet("mmw_demo", "mmwave_demo"),
		configDirs: utils.NewTokenSet("/mmwave_demo_visualizer/", "/mmw_demo_visualizer/", "/mmw_demo/profiles/", "/mmwave_demo/profiles/"),
	},
	{
		name:       "In-Cabin Sensing",
		firmware:   utils.NewTokenSet("in_cabin", "incabin"),
		configDirs: utils.NewTokenSet("/in_cabin_gui/", "/incabin_gui/", "/in_cabin_visualizer/", "/in_cabin_sensing/chirp_configs/", "/incabin/chirp_configs/"),
	},
	{
		name:       "People Tracking",
		firmware:   utils.NewTokenSet("people_counting", "people_tracking"),
		configDirs: utils.NewTokenSet("/industrial_visualizer/", "/people_tracking/chirp_configs/", "/people_counting/chirp_configs/"),
	},
	{
		name:       "Kick-to-Open",
		firmware:   utils.NewTokenSet("kick_to_open"),
		configDirs: utils.NewTokenSet("/kick_to_open/gui/", "/kick_to_open/chirp_configs/"),
	},
	{
		name:       "Level Sensing",
		firmware:   utils.NewTokenSet("level_sensing"),
		configDirs: utils.NewTokenSet("/level_sensing/gui/", "/level_sensing/chirp_configs/"),
	},
}
