package utils

import (
	"fmt"

	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
)

// ConvertKVListToMap flattens an OTLP attribute list into a plain map.
// Nested lists and kv-lists are stringified; the core only ever reads
// string, number and bool attributes.
func ConvertKVListToMap(kvList []*commonv1.KeyValue) map[string]interface{} {
	attrMap := map[string]interface{}{}
	for _, kv := range kvList {
		if kv == nil || kv.Value == nil {
			continue
		}
		attrMap[kv.Key] = AnyValueToInterface(kv.Value)
	}
	return attrMap
}

func AnyValueToInterface(value *commonv1.AnyValue) interface{} {
	switch v := value.Value.(type) {
	case *commonv1.AnyValue_StringValue:
		return v.StringValue
	case *commonv1.AnyValue_BoolValue:
		return v.BoolValue
	case *commonv1.AnyValue_IntValue:
		return float64(v.IntValue)
	case *commonv1.AnyValue_DoubleValue:
		return v.DoubleValue
	default:
		return fmt.Sprintf("%v", value)
	}
}
