package experiments

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var errNotEncoded = errors.New("payload is not JSON text")

// DecodeEnabled turns the host's answer to Experiments:GetActive into an
// EnabledSet. Older hosts send a JSON-encoded string, newer ones send the
// array itself, so two decode attempts are made in order:
//
//  1. the payload is JSON text (string or bytes) encoding an array of strings;
//  2. the payload already is an array of strings.
//
// A payload that passes neither is malformed.
func DecodeEnabled(payload any) (EnabledSet, error) {
	names, encodedErr := decodeEncoded(payload)
	if encodedErr == nil {
		return NewEnabledSet(names...), nil
	}

	names, err := structuredNames(payload)
	if err != nil {
		if !errors.Is(encodedErr, errNotEncoded) {
			return nil, malformed("enabled experiments: %v", encodedErr)
		}
		return nil, malformed("enabled experiments: %v", err)
	}
	return NewEnabledSet(names...), nil
}

func decodeEncoded(payload any) ([]string, error) {
	var names []string
	switch v := payload.(type) {
	case string:
		if err := sonic.UnmarshalString(v, &names); err != nil {
			return nil, err
		}
	case json.RawMessage:
		if err := sonic.Unmarshal(v, &names); err != nil {
			return nil, err
		}
	case []byte:
		if err := sonic.Unmarshal(v, &names); err != nil {
			return nil, err
		}
	default:
		return nil, errNotEncoded
	}
	if names == nil {
		return nil, fmt.Errorf("expected an array, got null")
	}
	return names, nil
}

func structuredNames(payload any) ([]string, error) {
	switch v := payload.(type) {
	case []string:
		return v, nil
	case EnabledSet:
		return v.Names(), nil
	case []any:
		names := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, want string", i, item)
			}
			names = append(names, s)
		}
		return names, nil
	case nil:
		return nil, fmt.Errorf("empty payload")
	default:
		return nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}
