package validator

import (
	"os"
	"path/filepath"
	"testing"

	"sdkmatch/fileio"
	"sdkmatch/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init("error")
}

const goodCfg = `% xWRL6844 people tracking
sensorStop 0
channelCfg 153 255 0
antGeometryBoard xWRL6844EVM
frameCfg 2 0 64 1 100 0
runtimeCalibCfg 1
lowPowerCfg 0
sensorStart 0 0 0 0
`

func writeCfg(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.cfg")
	require.NoError(t, os.WriteFile(path, content, 0600))
	return path
}

func TestRequiredMissingReportedInOrder(t *testing.T) {
	r := CheckRequired([]byte("sensorStart\n"))
	assert.False(t, r.AllPresent)
	assert.Equal(t, []string{"channelCfg", "frameCfg"}, r.Missing)
	assert.Equal(t, AntennaNone, r.Antenna)

	r = CheckRequired([]byte(goodCfg))
	assert.True(t, r.AllPresent)
	assert.Empty(t, r.Missing)
	assert.Equal(t, AntennaBoard, r.Antenna)
}

func TestRequiredIgnoresNonASCIIBytes(t *testing.T) {
	r := CheckRequired([]byte("channel\xc3\xa9Cfg\nframe\xffCfg\nsensorStart\n"))
	assert.True(t, r.AllPresent)
}

func TestAntennaModes(t *testing.T) {
	assert.Equal(t, AntennaManual, CheckRequired([]byte("antPhaseRot 1 1\n")).Antenna)
	assert.Equal(t, AntennaMixed, CheckRequired([]byte("antGeometryBoard x\nantGeometry0 0 1\n")).Antenna)
}

func TestAntennaCheck(t *testing.T) {
	a := CheckAntenna([]byte(goodCfg))
	assert.True(t, a.UsesBoardDirective)
	assert.True(t, a.Complete)

	manual := "antGeometry0 0 1 2 3\nantGeometry1 0 0 0 0\nantPhaseRot 1 1 1 1\n"
	a = CheckAntenna([]byte(manual))
	assert.False(t, a.UsesBoardDirective)
	assert.Equal(t, 3, a.ManualCount)
	assert.False(t, a.Complete)

	a = CheckAntenna([]byte(manual + "compRangeBiasAndRxChanPhase 0.0 1 0 1 0\n"))
	assert.Equal(t, 4, a.ManualCount)
	assert.True(t, a.Complete)
}

func TestEncodingCheck(t *testing.T) {
	e := CheckEncoding([]byte(goodCfg))
	assert.False(t, e.HasBOM)
	assert.False(t, e.NonASCII)
	assert.Equal(t, -1, e.NonASCIIOffset)
	assert.True(t, e.HasPercentComment)

	e = CheckEncoding(append([]byte{0xEF, 0xBB, 0xBF}, "sensorStart\n"...))
	assert.True(t, e.HasBOM)
	assert.False(t, e.NonASCII)
	assert.False(t, e.HasPercentComment)

	e = CheckEncoding([]byte("frameCfg caf\xc3\xa9\n"))
	assert.True(t, e.NonASCII)
	assert.Equal(t, 12, e.NonASCIIOffset)
	assert.False(t, e.WideChar)

	e = CheckEncoding([]byte("% 中文注释\nsensorStart\n"))
	assert.True(t, e.NonASCII)
	assert.True(t, e.WideChar)
	assert.Equal(t, 2, e.WideCharOffset)
	assert.True(t, e.HasPercentComment)
}

func TestCoreParameters(t *testing.T) {
	c := Default.CheckCore([]byte(goodCfg))
	assert.True(t, c.TimingFound)
	assert.True(t, c.TimingMatch)
	assert.Empty(t, c.Diff)
	assert.Equal(t, 1, c.Calibration)
	assert.Equal(t, 0, c.LowPower)

	c = Default.CheckCore([]byte("frameCfg 64 0 32 64 50 0\n"))
	assert.True(t, c.TimingFound)
	assert.False(t, c.TimingMatch)
	assert.Equal(t, "loops 32 != 64; period 50 != 100", c.Diff)
	assert.Equal(t, Unset, c.Calibration)
	assert.Equal(t, Unset, c.LowPower)

	c = Default.CheckCore([]byte("frameCfg 64 0\n"))
	assert.False(t, c.TimingFound)
	assert.False(t, c.TimingMatch)
	assert.NotEmpty(t, c.Diff)

	custom := New(32, 50, fileio.Options{})
	assert.True(t, custom.CheckCore([]byte("frameCfg 64 0 32 64 50.0 0\n")).TimingMatch)
}

func TestInvalidDirectives(t *testing.T) {
	cfg := "profileCfg 0 60\nchirpCfg 0 0\nprofileCfg 1 60\nsensorStart\n"
	invalid, count, err := CheckInvalidDirectives([]byte(cfg))
	require.NoError(t, err)
	assert.Equal(t, []string{"profileCfg", "chirpCfg"}, invalid)
	assert.Equal(t, 4, count)

	invalid, _, err = CheckInvalidDirectives([]byte(goodCfg))
	require.NoError(t, err)
	assert.Empty(t, invalid)
}

func TestParseDirectives(t *testing.T) {
	ds, err := ParseDirectives([]byte("% header\r\nchannelCfg 153 255 0 % trailing\r\n\r\nframeCfg 2 0 64 1 100 0\n"))
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "channelCfg", ds[0].Name)
	assert.Equal(t, []string{"153", "255", "0"}, ds[0].Args)
	assert.Equal(t, 2, ds[0].Line)
	assert.Equal(t, "frameCfg", ds[1].Name)
	assert.Equal(t, 4, ds[1].Line)
}

func TestParseDirectivesFallback(t *testing.T) {
	ds, err := ParseDirectives([]byte("42 stray\nbpmCfg 1\n"))
	assert.Error(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "bpmCfg", ds[1].Name)

	invalid, _, err := CheckInvalidDirectives([]byte("42 stray\nbpmCfg 1\n"))
	assert.Error(t, err)
	assert.Equal(t, []string{"bpmCfg"}, invalid)
}

func TestValidateFile(t *testing.T) {
	path := writeCfg(t, []byte(goodCfg))
	r := Default.Validate(path)
	assert.True(t, r.Readable)
	assert.Equal(t, path, r.Path)
	assert.Len(t, r.Digest, 16)
	assert.True(t, r.Required.AllPresent)
	assert.True(t, r.Core.TimingMatch)
	assert.Empty(t, r.ParseError)
	assert.Equal(t, 7, r.DirectiveCount)

	assert.Equal(t, r.Digest, Default.Validate(writeCfg(t, []byte(goodCfg))).Digest)
}

func TestValidateUnreadableFile(t *testing.T) {
	r := Default.Validate(filepath.Join(t.TempDir(), "missing.cfg"))
	assert.False(t, r.Readable)
	assert.NotEmpty(t, r.ReadError)
	assert.False(t, r.Required.AllPresent)
	assert.Equal(t, RequiredDirectives, r.Required.Missing)
	assert.Equal(t, Unset, r.Core.Calibration)
	assert.Equal(t, Unset, r.Core.LowPower)
	assert.False(t, r.Antenna.Complete)
}
