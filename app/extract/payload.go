package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// dataConfig mirrors the player configuration embedded in data-config.
type dataConfig struct {
	MC *struct {
		MediaArray []struct {
			MediaStreamArray []struct {
				Stream json.RawMessage `json:"_stream"`
			} `json:"_mediaStreamArray"`
		} `json:"_mediaArray"`
	} `json:"mc"`
}

// ParseDataConfig returns the stream of the last (highest fidelity) entry
// of mc._mediaArray[0]._mediaStreamArray.
func ParseDataConfig(raw string) (string, error) {
	var cfg dataConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	if cfg.MC == nil {
		return "", errors.New("payload has no mc")
	}
	if len(cfg.MC.MediaArray) == 0 {
		return "", errors.New("payload has empty _mediaArray")
	}
	streams := cfg.MC.MediaArray[0].MediaStreamArray
	if len(streams) == 0 {
		return "", errors.New("payload has empty _mediaStreamArray")
	}

	stream, err := streamValue(streams[len(streams)-1].Stream)
	if err != nil {
		return "", err
	}
	return stream, nil
}

// streamValue accepts "_stream" as a string or as a list of mirrors,
// in which case the last one wins.
func streamValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("payload stream entry has no _stream")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			return "", errors.New("payload _stream is empty")
		}
		return single, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", fmt.Errorf("payload _stream has unexpected type: %w", err)
	}
	for i := len(list) - 1; i >= 0; i-- {
		if strings.TrimSpace(list[i]) != "" {
			return list[i], nil
		}
	}
	return "", errors.New("payload _stream list is empty")
}
