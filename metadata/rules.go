package metadata

import "strings"

// Rule maps a lowercase keyword to a display label. Rules are evaluated in
// declaration order; the first keyword contained in a path segment wins.
type Rule struct {
	Keyword string
	Label   string
}

// RuleSet is an ordered rule table with the label used when nothing matches.
type RuleSet struct {
	Name     string
	Rules    []Rule
	Fallback string
}

// Resolve walks segments in order and, for each, the rules in declaration
// order. Segments are compared lowercased.
func (rs RuleSet) Resolve(segments []string) string {
	label, _ := rs.ResolveKeyword(segments)
	return label
}

// ResolveKeyword is Resolve that also reports which keyword matched.
func (rs RuleSet) ResolveKeyword(segments []string) (string, string) {
	for _, segment := range segments {
		segment = strings.ToLower(segment)
		for _, rule := range rs.Rules {
			if strings.Contains(segment, rule.Keyword) {
				return rule.Label, rule.Keyword
			}
		}
	}
	return rs.Fallback, ""
}

var Categories = RuleSet{
	Name: "category",
	Rules: []Rule{
		{"in_cabin", "In-Cabin Sensing"},
		{"incabin", "In-Cabin Sensing"},
		{"mmw_demo", "mmWave Demo"},
		{"mmwave_demo", "mmWave Demo"},
		{"kick_to_open", "Kick-to-Open"},
		{"gesture", "Gesture Recognition"},
		{"presence", "Presence Detection"},
		{"people_counting", "People Counting"},
		{"vital", "Vital Signs"},
		{"level_sensing", "Level Sensing"},
		{"motion", "Motion Detection"},
		{"hello_world", "Hello World"},
		{"drivers", "Driver Example"},
		{"kernel", "Kernel Example"},
		{"mmwave_control", "mmWave Control"},
	},
	Fallback: "Other",
}

var Subcategories = RuleSet{
	Name: "subcategory",
	Rules: []Rule{
		{"cpd", "Child Presence Detection"},
		{"intrusion", "Intrusion Detection"},
		{"seat_belt", "Seat Belt Reminder"},
		{"sbr", "Seat Belt Reminder"},
		{"occupancy", "Occupancy Detection"},
		{"uart", "UART"},
		{"gpio", "GPIO"},
		{"adc", "ADC"},
		{"edma", "EDMA"},
		{"mcspi", "MCSPI"},
		{"qspi", "QSPI"},
		{"i2c", "I2C"},
		{"crc", "CRC"},
		{"watchdog", "Watchdog"},
		{"timer", "Timer"},
		{"hwa", "Hardware Accelerator"},
		{"freertos", "FreeRTOS"},
		{"nortos", "No-RTOS"},
	},
	Fallback: "",
}

var Processors = RuleSet{
	Name: "processor",
	Rules: []Rule{
		{"r5fss0-0", "R5F Core 0"},
		{"r5fss0-1", "R5F Core 1"},
		{"r5f", "R5F"},
		{"c66ss0", "C66x DSP"},
		{"c66", "C66x DSP"},
		{"m4f", "M4F"},
		{"hwass0", "HWA"},
	},
	Fallback: "",
}

var Compilers = RuleSet{
	Name: "compiler",
	Rules: []Rule{
		{"ti-arm-clang", "TI ARM Clang"},
		{"ti-c6000", "TI C6000"},
		{"gcc-armv7", "GCC ARMv7"},
		{"gcc", "GCC"},
	},
	Fallback: "",
}

var Platforms = RuleSet{
	Name: "platform",
	Rules: []Rule{
		{"xwrl6844-evm", "xWRL6844 EVM"},
		{"xwrl6844", "xWRL6844"},
		{"awrl6844", "AWRL6844"},
		{"iwrl6844", "IWRL6844"},
		{"6844", "xWRL6844"},
	},
	Fallback: "",
}

var Applications = RuleSet{
	Name: "application",
	Rules: []Rule{
		{"cpd", "Child Presence Detection"},
		{"intrusion", "Intrusion Detection"},
		{"sbr", "Seat Belt Reminder"},
		{"seat_belt", "Seat Belt Reminder"},
		{"in_cabin", "In-Cabin Sensing"},
		{"incabin", "In-Cabin Sensing"},
		{"people_counting", "People Counting"},
		{"gesture", "Gesture Recognition"},
		{"vital", "Vital Signs"},
		{"kick", "Kick-to-Open"},
		{"presence", "Presence Detection"},
		{"level", "Level Sensing"},
		{"motion", "Motion Detection"},
		{"mmw_demo", "mmWave Demo"},
		{"mmwave_demo", "mmWave Demo"},
		{"profile", "mmWave Demo"},
	},
	Fallback: "Other",
}

// Token tables for configuration filenames. Defaults apply when no token
// is contained in the lowercased filename.
var Modes = RuleSet{
	Name: "mode",
	Rules: []Rule{
		{"tdm", "TDM-MIMO"},
		{"bpm", "BPM-MIMO"},
		{"ddm", "DDM-MIMO"},
		{"siso", "SISO"},
	},
	Fallback: "",
}

var PowerModes = RuleSet{
	Name: "power",
	Rules: []Rule{
		{"low_power", "low power"},
		{"lowpower", "low power"},
		{"_lp", "low power"},
		{"high_power", "high power"},
	},
	Fallback: "standard power",
}

var Bandwidths = RuleSet{
	Name: "bandwidth",
	Rules: []Rule{
		{"high_bw", "high bandwidth"},
		{"hbw", "high bandwidth"},
		{"low_bw", "low bandwidth"},
		{"lbw", "low bandwidth"},
	},
	Fallback: "standard bandwidth",
}

var Packages = RuleSet{
	Name: "package",
	Rules: []Rule{
		{"aop", "AOP"},
		{"fccsp", "FCCSP"},
		{"abl", "ABL"},
	},
	Fallback: "",
}

// ChannelFamily gives the TX/RX counts implied by a chip family when the
// filename carries no explicit <n>T<m>R token.
type ChannelFamily struct {
	Token string
	TX    int
	RX    int
}

var ChannelFamilies = []ChannelFamily{
	{"6844", 4, 4},
	{"6843", 3, 4},
	{"1843", 3, 4},
	{"6432", 2, 3},
	{"1432", 2, 3},
}

// AllRuleSets lists the tables for inspection tooling and tests.
func AllRuleSets() []RuleSet {
	return []RuleSet{
		Categories, Subcategories, Processors, Compilers, Platforms,
		Applications, Modes, PowerModes, Bandwidths, Packages,
	}
}
