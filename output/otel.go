package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sdkmatch/config"
	"sdkmatch/logger"
	"sdkmatch/version"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otelLog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

type otelLogger struct {
	provider *sdklog.LoggerProvider
	logger   otelLog.Logger
	timeout  time.Duration
	endpoint string
	policy   otelPolicy
}

type otelPolicy struct {
	includePaths bool
}

// pathKeys are payload fields that carry local paths.
var pathKeys = []string{"path", "firmware", "bootloader", "config"}

func newOtelLogger(cfg *config.Config) (*otelLogger, error) {
	if cfg == nil {
		return nil, nil
	}
	endpoint := resolveOtelEndpoint(cfg)
	if endpoint == "" {
		return nil, nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("otel endpoint must include scheme (http or https)")
	}

	opts := []otlploghttp.Option{otlploghttp.WithEndpointURL(endpoint)}
	if len(cfg.OtelHeaders) > 0 {
		opts = append(opts, otlploghttp.WithHeaders(cfg.OtelHeaders))
	}
	if cfg.OtelTimeout > 0 {
		opts = append(opts, otlploghttp.WithTimeout(cfg.OtelTimeout))
	}

	exp, err := otlploghttp.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(cfg.OtelServiceName),
		semconv.ServiceVersionKey.String(version.Version),
	)
	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		sdklog.WithResource(res),
	)

	return &otelLogger{
		provider: provider,
		logger:   provider.Logger("sdkmatch"),
		timeout:  cfg.OtelTimeout,
		endpoint: endpoint,
		policy:   otelPolicy{includePaths: cfg.OtelExportPaths},
	}, nil
}

func resolveOtelEndpoint(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	if endpoint := strings.TrimSpace(cfg.OtelEndpoint); endpoint != "" {
		return endpoint
	}
	if !cfg.OtelFromEnv {
		return ""
	}
	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT")); endpoint != "" {
		return endpoint
	}
	return strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
}

func (o *otelLogger) Endpoint() string {
	if o == nil {
		return ""
	}
	return o.endpoint
}

func (o *otelLogger) Emit(recordType string, payload interface{}) {
	if o == nil || o.logger == nil {
		return
	}
	data := sanitizePayload(payloadToMap(payload), o.policy)

	var record otelLog.Record
	now := time.Now()
	record.SetTimestamp(now)
	record.SetObservedTimestamp(now)
	record.SetEventName("sdkmatch." + recordType)
	record.AddAttributes(
		otelLog.String("record_type", recordType),
		otelLog.String("schema_version", SchemaVersion),
	)
	if attrs := semanticAttributes(recordType, data); len(attrs) > 0 {
		record.AddAttributes(attrs...)
	}
	record.SetBody(toLogValue(data))

	o.logger.Emit(context.Background(), record)
}

func (o *otelLogger) Shutdown() {
	if o == nil || o.provider == nil {
		return
	}
	timeout := o.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := o.provider.Shutdown(ctx); err != nil {
		logger.Debugf("OTEL shutdown failed: %v", err)
	}
}

// sanitizePayload replaces local paths with their base names unless path
// export is enabled. The input map is not modified.
func sanitizePayload(data map[string]interface{}, policy otelPolicy) map[string]interface{} {
	if policy.includePaths || len(data) == 0 {
		return data
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case map[string]interface{}:
			out[k] = sanitizePayload(val, policy)
		case string:
			if isPathKey(k) && val != "" {
				out[k] = filepath.Base(val)
			} else {
				out[k] = val
			}
		default:
			out[k] = v
		}
	}
	return out
}

func isPathKey(key string) bool {
	for _, k := range pathKeys {
		if k == key {
			return true
		}
	}
	return false
}

func semanticAttributes(recordType string, data map[string]interface{}) []otelLog.KeyValue {
	var kvs []otelLog.KeyValue
	switch recordType {
	case "bootloader_match", "config_match":
		if path := getStringField(data, "path"); path != "" {
			kvs = append(kvs, otelLog.String(string(semconv.FileNameKey), filepath.Base(path)))
		}
		if score, ok := getInt64Field(data, "score"); ok {
			kvs = append(kvs, otelLog.Int64("sdkmatch.match.score", score))
		}
		if rank, ok := getInt64Field(data, "rank"); ok {
			kvs = append(kvs, otelLog.Int64("sdkmatch.match.rank", rank))
		}
		kvs = appendStringAttr(kvs, "sdkmatch.match.firmware", getStringField(data, "firmware"))
	case "scan":
		for _, key := range []string{"application", "sbl", "config", "total_files", "excluded"} {
			if n, ok := getInt64Field(data, key); ok {
				kvs = append(kvs, otelLog.Int64("sdkmatch.scan."+key, n))
			}
		}
	case "handoff":
		kvs = appendStringAttr(kvs, "sdkmatch.handoff.flash_address", getStringField(data, "flash_address"))
		if size, ok := getInt64Field(data, "flash_size"); ok {
			kvs = append(kvs, otelLog.Int64("sdkmatch.handoff.flash_size", size))
		}
	}
	return kvs
}

func toLogValue(value interface{}) otelLog.Value {
	switch v := value.(type) {
	case nil:
		return otelLog.Value{}
	case string:
		return otelLog.StringValue(v)
	case bool:
		return otelLog.BoolValue(v)
	case int:
		return otelLog.IntValue(v)
	case int64:
		return otelLog.Int64Value(v)
	case float64:
		return otelLog.Float64Value(v)
	case map[string]interface{}:
		return otelLog.MapValue(toLogKeyValues(v)...)
	case []string:
		values := make([]otelLog.Value, 0, len(v))
		for _, item := range v {
			values = append(values, otelLog.StringValue(item))
		}
		return otelLog.SliceValue(values...)
	case []interface{}:
		values := make([]otelLog.Value, 0, len(v))
		for _, item := range v {
			values = append(values, toLogValue(item))
		}
		return otelLog.SliceValue(values...)
	default:
		return otelLog.StringValue(fmt.Sprint(v))
	}
}

// toLogKeyValues emits keys in sorted order so records are reproducible.
func toLogKeyValues(values map[string]interface{}) []otelLog.KeyValue {
	kvs := make([]otelLog.KeyValue, 0, len(values))
	for _, key := range sortedKeys(values) {
		kvs = append(kvs, otelLog.KeyValue{Key: key, Value: toLogValue(values[key])})
	}
	return kvs
}

func payloadToMap(payload interface{}) map[string]interface{} {
	switch v := payload.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		return v
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil
		}
		var decoded map[string]interface{}
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil
		}
		return decoded
	}
}

func getStringField(values map[string]interface{}, key string) string {
	value, ok := values[key]
	if !ok || value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return fmt.Sprint(value)
}

func getInt64Field(values map[string]interface{}, key string) (int64, bool) {
	value, ok := values[key]
	if !ok || value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

func appendStringAttr(kvs []otelLog.KeyValue, key, value string) []otelLog.KeyValue {
	if value == "" {
		return kvs
	}
	return append(kvs, otelLog.String(key, value))
}
