package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration decodes Go duration strings such as "1ns" or "2.5us". Bare
// integers are read as nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	switch v := value.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		d.Duration = parsed
	case float64:
		d.Duration = time.Duration(v)
	default:
		return fmt.Errorf("invalid duration %s", data)
	}
	return nil
}
