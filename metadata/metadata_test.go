package metadata

import "testing"

func TestRuleSetFirstMatchWins(t *testing.T) {
	rs := RuleSet{
		Rules:    []Rule{{"abc", "First"}, {"ab", "Second"}},
		Fallback: "None",
	}
	if got := rs.Resolve([]string{"xABCx"}); got != "First" {
		t.Fatalf("declaration order not honoured: %s", got)
	}
	if got := rs.Resolve([]string{"zab", "abc"}); got != "Second" {
		t.Fatalf("segment order not honoured: %s", got)
	}
	if got := rs.Resolve([]string{"zzz"}); got != "None" {
		t.Fatalf("expected fallback, got %s", got)
	}
	label, keyword := rs.ResolveKeyword([]string{"abc"})
	if label != "First" || keyword != "abc" {
		t.Fatalf("unexpected keyword resolution: %s %s", label, keyword)
	}
}

func TestRuleTablesAreLowercase(t *testing.T) {
	for _, rs := range AllRuleSets() {
		for _, rule := range rs.Rules {
			for _, r := range rule.Keyword {
				if r >= 'A' && r <= 'Z' {
					t.Fatalf("%s keyword %q must be lowercase", rs.Name, rule.Keyword)
				}
			}
		}
	}
}

func TestExtractFirmware(t *testing.T) {
	path := "/opt/ti/mmwave_l_sdk_06_00_04_01/examples/mmw_demo/in_cabin_sensing/xwrl6844-evm/r5fss0-0_freertos/ti-arm-clang/demo_in_cabin_sensing_6844.system.release.appimage"
	fw := ExtractFirmware(path)
	if fw.Category != "mmWave Demo" {
		t.Fatalf("unexpected category: %s", fw.Category)
	}
	if fw.Subcategory != "FreeRTOS" {
		t.Fatalf("unexpected subcategory: %s", fw.Subcategory)
	}
	if fw.Platform != "xWRL6844 EVM" {
		t.Fatalf("unexpected platform: %s", fw.Platform)
	}
	if fw.Processor != "R5F Core 0" {
		t.Fatalf("unexpected processor: %s", fw.Processor)
	}
	if fw.Compiler != "TI ARM Clang" {
		t.Fatalf("unexpected compiler: %s", fw.Compiler)
	}
	if fw.Version != VersionRelease {
		t.Fatalf("unexpected version: %s", fw.Version)
	}
	want := "mmWave Demo - FreeRTOS - xWRL6844 EVM - R5F Core 0 - TI ARM Clang - Release"
	if got := fw.Description(); got != want {
		t.Fatalf("unexpected description:\n got %q\nwant %q", got, want)
	}
}

func TestFirmwareFallbacks(t *testing.T) {
	fw := ExtractFirmware("misc/thing.appimage")
	if fw.Category != "Other" || fw.Platform != "" || fw.Version != VersionUnknown {
		t.Fatalf("unexpected fallbacks: %+v", fw)
	}
	if fw.Description() != "Application image" {
		t.Fatalf("unexpected fallback description: %s", fw.Description())
	}
}

func TestParseVersion(t *testing.T) {
	cases := map[string]Version{
		"app.release.appimage": VersionRelease,
		"app.Release.appimage": VersionRelease,
		"app.debug.appimage":   VersionDebug,
		"app.Debug.appimage":   VersionDebug,
		"app.appimage":         VersionUnknown,
		"releaseapp.appimage":  VersionUnknown,
	}
	for name, want := range cases {
		if got := ParseVersion(name); got != want {
			t.Fatalf("%s: got %s want %s", name, got, want)
		}
	}
}

func TestParseChannels(t *testing.T) {
	tx, rx := ParseChannels("cpd_3T4R_tdm.cfg")
	if tx != 3 || rx != 4 {
		t.Fatalf("unexpected explicit channels: %d %d", tx, rx)
	}
	tx, rx = ParseChannels("profile_6844_demo.cfg")
	if tx != 4 || rx != 4 {
		t.Fatalf("expected 6844 family fallback: %d %d", tx, rx)
	}
	tx, rx = ParseChannels("generic.cfg")
	if tx != 0 || rx != 0 {
		t.Fatalf("expected unknown channels: %d %d", tx, rx)
	}
}

func TestParseRange(t *testing.T) {
	if got := ParseRange("intrusion_5m.cfg"); got != 5 {
		t.Fatalf("unexpected range: %d", got)
	}
	if got := ParseRange("frame_100ms.cfg"); got != 0 {
		t.Fatalf("milliseconds must not parse as range: %d", got)
	}
	if got := ParseRange("long_range_150m"); got != 150 {
		t.Fatalf("unexpected trailing range: %d", got)
	}
}

func TestExtractConfig(t *testing.T) {
	cfg := ExtractConfig("/opt/ti/radar_toolbox/tools/visualizer/incabin/chirp_configs/cpd_4T4R_tdm_low_power_aop_2m.cfg")
	if cfg.Application != "Child Presence Detection" {
		t.Fatalf("unexpected application: %s", cfg.Application)
	}
	if cfg.TXChannels != 4 || cfg.RXChannels != 4 || cfg.RangeMeters != 2 {
		t.Fatalf("unexpected numeric fields: %+v", cfg)
	}
	if cfg.Mode != "TDM-MIMO" || cfg.PowerMode != "low power" || cfg.PackageType != "AOP" {
		t.Fatalf("unexpected tags: %+v", cfg)
	}
	if cfg.Bandwidth != "standard bandwidth" {
		t.Fatalf("expected bandwidth default: %s", cfg.Bandwidth)
	}
	want := "Child Presence Detection | 4TX/4RX | 2m | TDM-MIMO | low power | AOP"
	if got := cfg.Description(); got != want {
		t.Fatalf("unexpected description:\n got %q\nwant %q", got, want)
	}
}

func TestPowerModeTokens(t *testing.T) {
	cases := map[string]string{
		"x/profiles/6844_cpd_lp.cfg":     "low power",
		"x/profiles/6844_LowPower.cfg":   "low power",
		"x/profiles/6844_high_power.cfg": "high power",
		"x/profiles/help_6844.cfg":       "standard power",
		"x/profiles/6844_lp_alt.cfg":     "low power",
		"x/profiles/lpddr_6844.cfg":      "standard power",
	}
	for path, want := range cases {
		if got := ExtractConfig(path).PowerMode; got != want {
			t.Fatalf("%s: got %q, want %q", path, got, want)
		}
	}
}

func TestConfigDefaultsAndFallbackDescription(t *testing.T) {
	cfg := ExtractConfig("x/y/unnamed.cfg")
	if cfg.PowerMode != "standard power" || cfg.Bandwidth != "standard bandwidth" || cfg.PackageType != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Description() != "Radar configuration" {
		t.Fatalf("unexpected fallback description: %s", cfg.Description())
	}
}

func TestParseVariant(t *testing.T) {
	if ParseVariant("sbl.release.appimage") != VariantStandard {
		t.Fatal("expected standard")
	}
	if ParseVariant("sbl_lite.release.appimage") != VariantLite {
		t.Fatal("expected lite")
	}
	if ParseVariant("sbl_image_select_lite.release.appimage") != VariantImageSelect {
		t.Fatal("expected image select")
	}
	if got := BootloaderDescription(VariantLite, VersionDebug); got != "SBL Lite (Debug)" {
		t.Fatalf("unexpected description: %s", got)
	}
}
