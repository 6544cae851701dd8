package metadata

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

type Version string

const (
	VersionRelease Version = "Release"
	VersionDebug   Version = "Debug"
	VersionUnknown Version = "Unknown"
)

var (
	channelPattern = regexp.MustCompile(`(?i)(\d+)t(\d+)r`)
	rangePattern   = regexp.MustCompile(`(?i)(\d+)m(?:[^a-z]|$)`)
)

// Firmware holds the fields resolved for an application image.
type Firmware struct {
	Category    string
	Subcategory string
	Platform    string
	Processor   string
	Compiler    string
	Version     Version
}

// Config holds the fields resolved for a radar configuration file.
type Config struct {
	Application string
	TXChannels  int
	RXChannels  int
	RangeMeters int
	Mode        string
	PowerMode   string
	Bandwidth   string
	PackageType string
}

// Segments splits a path into its non-empty components, accepting both
// separator styles since SDK trees are often copied from Windows hosts.
func Segments(path string) []string {
	path = strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ExtractFirmware resolves firmware fields from the path segments (root
// first, filename last).
func ExtractFirmware(path string) Firmware {
	segments := Segments(path)
	filename := filepath.Base(strings.ReplaceAll(path, "\\", "/"))
	return Firmware{
		Category:    Categories.Resolve(segments),
		Subcategory: Subcategories.Resolve(segments),
		Platform:    Platforms.Resolve(segments),
		Processor:   Processors.Resolve(segments),
		Compiler:    Compilers.Resolve(segments),
		Version:     ParseVersion(filename),
	}
}

// ExtractConfig resolves configuration fields. Numeric and tag fields come
// from the filename only; the application label also considers parent
// directories, nearest first.
func ExtractConfig(path string) Config {
	segments := Segments(path)
	filename := ""
	if len(segments) > 0 {
		filename = segments[len(segments)-1]
	}
	nearestFirst := make([]string, 0, len(segments))
	for i := len(segments) - 1; i >= 0; i-- {
		nearestFirst = append(nearestFirst, segments[i])
	}
	lower := strings.ToLower(filename)
	tx, rx := ParseChannels(lower)
	return Config{
		Application: Applications.Resolve(nearestFirst),
		TXChannels:  tx,
		RXChannels:  rx,
		RangeMeters: ParseRange(lower),
		Mode:        Modes.Resolve([]string{lower}),
		PowerMode:   PowerModes.Resolve([]string{lower}),
		Bandwidth:   Bandwidths.Resolve([]string{lower}),
		PackageType: Packages.Resolve([]string{lower}),
	}
}

func ParseVersion(filename string) Version {
	switch {
	case strings.Contains(filename, ".release.") ||
		strings.Contains(filename, ".Release.") ||
		strings.Contains(filename, ".RELEASE."):
		return VersionRelease
	case strings.Contains(filename, ".debug.") ||
		strings.Contains(filename, ".Debug.") ||
		strings.Contains(filename, ".DEBUG."):
		return VersionDebug
	default:
		return VersionUnknown
	}
}

// ParseChannels reads an explicit <n>T<m>R token, falling back to the
// channel counts of a known chip family. Zero means unknown.
func ParseChannels(filename string) (int, int) {
	if m := channelPattern.FindStringSubmatch(filename); m != nil {
		tx, _ := strconv.Atoi(m[1])
		rx, _ := strconv.Atoi(m[2])
		return tx, rx
	}
	lower := strings.ToLower(filename)
	for _, family := range ChannelFamilies {
		if strings.Contains(lower, family.Token) {
			return family.TX, family.RX
		}
	}
	return 0, 0
}

// ParseRange reads a <digits>m detection-range token; zero means absent.
func ParseRange(filename string) int {
	m := rangePattern.FindStringSubmatch(filename)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func (f Firmware) Description() string {
	parts := nonEmpty(
		labelOrEmpty(f.Category, Categories.Fallback),
		f.Subcategory,
		f.Platform,
		f.Processor,
		f.Compiler,
		labelOrEmpty(string(f.Version), string(VersionUnknown)),
	)
	if len(parts) == 0 {
		return "Application image"
	}
	return strings.Join(parts, " - ")
}

func (c Config) Description() string {
	var channels, distance string
	if c.TXChannels > 0 || c.RXChannels > 0 {
		channels = strconv.Itoa(c.TXChannels) + "TX/" + strconv.Itoa(c.RXChannels) + "RX"
	}
	if c.RangeMeters > 0 {
		distance = strconv.Itoa(c.RangeMeters) + "m"
	}
	parts := nonEmpty(
		labelOrEmpty(c.Application, Applications.Fallback),
		channels,
		distance,
		c.Mode,
		labelOrEmpty(c.PowerMode, PowerModes.Fallback),
		labelOrEmpty(c.Bandwidth, Bandwidths.Fallback),
		c.PackageType,
	)
	if len(parts) == 0 {
		return "Radar configuration"
	}
	return strings.Join(parts, " | ")
}

// labelOrEmpty hides fallback labels so they do not pad descriptions.
func labelOrEmpty(label, fallback string) string {
	if label == fallback {
		return ""
	}
	return label
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
