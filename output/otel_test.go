package output

import (
	"testing"

	"sdkmatch/config"
	"sdkmatch/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otelLog "go.opentelemetry.io/otel/log"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

func findAttr(kvs []otelLog.KeyValue, key string) (otelLog.Value, bool) {
	for _, kv := range kvs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return otelLog.Value{}, false
}

func TestResolveOtelEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "https://logs.example.test/v1/logs")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://fallback.example.test")

	cfg := &config.Config{OtelEndpoint: "  https://explicit.example.test  ", OtelFromEnv: true}
	assert.Equal(t, "https://explicit.example.test", resolveOtelEndpoint(cfg))

	cfg = &config.Config{OtelFromEnv: true}
	assert.Equal(t, "https://logs.example.test/v1/logs", resolveOtelEndpoint(cfg))

	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "")
	assert.Equal(t, "https://fallback.example.test", resolveOtelEndpoint(cfg))

	assert.Empty(t, resolveOtelEndpoint(&config.Config{}))
	assert.Empty(t, resolveOtelEndpoint(nil))
}

func TestOtelLoggerEndpointAndValidation(t *testing.T) {
	o, err := newOtelLogger(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, o)
	assert.Empty(t, o.Endpoint())

	_, err = newOtelLogger(&config.Config{OtelEndpoint: "collector:4318"})
	assert.Error(t, err)

	o, err = newOtelLogger(&config.Config{OtelEndpoint: "http://127.0.0.1:4318/v1/logs", OtelServiceName: "sdkmatch"})
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "http://127.0.0.1:4318/v1/logs", o.Endpoint())
	o.Shutdown()
}

func TestSanitizePayloadStripsPaths(t *testing.T) {
	payload := map[string]interface{}{
		"path":     "/opt/ti/mmwave_l_sdk/tools/boot/sbl.release.appimage",
		"firmware": "/opt/ti/app.appimage",
		"score":    160,
		"diagnostics": map[string]interface{}{
			"config": "/home/user/profile.cfg",
		},
	}
	out := sanitizePayload(payload, otelPolicy{})
	assert.Equal(t, "sbl.release.appimage", out["path"])
	assert.Equal(t, "app.appimage", out["firmware"])
	assert.Equal(t, 160, out["score"])
	assert.Equal(t, "profile.cfg", out["diagnostics"].(map[string]interface{})["config"])
	assert.Equal(t, "/opt/ti/app.appimage", payload["firmware"])

	kept := sanitizePayload(payload, otelPolicy{includePaths: true})
	assert.Equal(t, payload["path"], kept["path"])
}

func TestSemanticAttributesMatch(t *testing.T) {
	data := map[string]interface{}{
		"path":     "sbl.release.appimage",
		"score":    float64(160),
		"rank":     float64(1),
		"firmware": "app.appimage",
	}
	kvs := semanticAttributes("bootloader_match", data)

	v, ok := findAttr(kvs, string(semconv.FileNameKey))
	require.True(t, ok)
	assert.Equal(t, "sbl.release.appimage", v.AsString())
	v, ok = findAttr(kvs, "sdkmatch.match.score")
	require.True(t, ok)
	assert.Equal(t, int64(160), v.AsInt64())
	_, ok = findAttr(kvs, "sdkmatch.match.firmware")
	assert.True(t, ok)
}

func TestSemanticAttributesScan(t *testing.T) {
	data := payloadToMap(scanner.Counts{Application: 2, SBL: 3, TotalFiles: 9})
	kvs := semanticAttributes("scan", data)
	v, ok := findAttr(kvs, "sdkmatch.scan.sbl")
	require.True(t, ok)
	assert.Equal(t, int64(3), v.AsInt64())
	v, ok = findAttr(kvs, "sdkmatch.scan.total_files")
	require.True(t, ok)
	assert.Equal(t, int64(9), v.AsInt64())
}

func TestToLogValueComposite(t *testing.T) {
	v := toLogValue(map[string]interface{}{
		"b":     []interface{}{"x", float64(1)},
		"a":     true,
		"names": []string{"channelCfg"},
	})
	require.Equal(t, otelLog.KindMap, v.Kind())
	kvs := v.AsMap()
	require.Len(t, kvs, 3)
	assert.Equal(t, "a", kvs[0].Key)
	assert.Equal(t, "b", kvs[1].Key)
	assert.Equal(t, otelLog.KindSlice, kvs[1].Value.Kind())
	assert.Equal(t, otelLog.KindEmpty, toLogValue(nil).Kind())
}
