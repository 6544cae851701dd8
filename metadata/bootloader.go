package metadata

import "strings"

type Variant string

const (
	VariantStandard    Variant = "Standard"
	VariantLite        Variant = "Lite"
	VariantImageSelect Variant = "ImageSelect"
)

// ParseVariant classifies an SBL filename. Image-select builds are checked
// first because their names may also carry "lite".
func ParseVariant(filename string) Variant {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "image_select") || strings.Contains(lower, "imageselect"):
		return VariantImageSelect
	case strings.Contains(lower, "lite"):
		return VariantLite
	default:
		return VariantStandard
	}
}

func BootloaderDescription(variant Variant, version Version) string {
	desc := "SBL " + string(variant)
	if version != VersionUnknown {
		desc += " (" + string(version) + ")"
	}
	return desc
}
