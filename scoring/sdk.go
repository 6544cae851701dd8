package scoring

import (
	"regexp"
	"strings"

	"sdkmatch/utils"
)

var sdkRootPattern = regexp.MustCompile(`^(mmwave_l_sdk|mmwave_sdk|mmwave_mcuplus_sdk|radar_toolbox)[_-]?[0-9._]*$`)

// SDKRoot returns the first path segment naming an SDK release, lowercased,
// and the install prefix in front of it. Both are empty when no segment
// matches.
func SDKRoot(path string) (root, prefix string) {
	segments := strings.Split(utils.SlashLower(path), "/")
	for i, segment := range segments {
		if sdkRootPattern.MatchString(segment) {
			return segment, strings.Join(segments[:i], "/")
		}
	}
	return "", ""
}

// SameSDK reports whether both paths live in the same SDK release.
func SameSDK(a, b string) bool {
	rootA, _ := SDKRoot(a)
	rootB, _ := SDKRoot(b)
	return rootA != "" && rootA == rootB
}

// SDKFamily returns the product family of an SDK root segment, such as
// "mmwave_l_sdk" for "mmwave_l_sdk_06_00_04_01".
func SDKFamily(root string) string {
	m := sdkRootPattern.FindStringSubmatch(root)
	if m == nil {
		return ""
	}
	return m[1]
}

// RelatedSDK covers firmware built from an SDK's examples next to a config
// shipped in the tools of a sibling package from another family, both
// installed under one prefix. Two releases of the same family are never
// related.
func RelatedSDK(firmwarePath, configPath string) bool {
	fwRoot, fwPrefix := SDKRoot(firmwarePath)
	cfgRoot, cfgPrefix := SDKRoot(configPath)
	if fwRoot == "" || cfgRoot == "" || fwPrefix != cfgPrefix {
		return false
	}
	if SDKFamily(fwRoot) == SDKFamily(cfgRoot) {
		return false
	}
	return strings.Contains(utils.SlashLower(firmwarePath), "/examples/") &&
		strings.Contains(utils.SlashLower(configPath), "/tools/")
}
