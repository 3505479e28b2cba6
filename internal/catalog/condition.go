package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnmarshalJSON accepts both the canonical shape and the flat shape saved by
// the browser version of the app, where targetValue may be a string naming
// the target and extra keys (quizId, problemSetId, ...) sit beside it.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Condition{}

	for k, v := range raw {
		if string(v) == "null" {
			continue
		}
		switch k {
		case "type":
			if err := json.Unmarshal(v, &c.Type); err != nil {
				return fmt.Errorf("condition type: %w", err)
			}
		case "targetValue":
			var n float64
			if err := json.Unmarshal(v, &n); err == nil {
				c.TargetValue = n
				continue
			}
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("condition targetValue: %w", err)
			}
			if c.Ref == "" {
				c.Ref = s
			}
			c.TargetValue = 1
		case "ref":
			if err := json.Unmarshal(v, &c.Ref); err != nil {
				return fmt.Errorf("condition ref: %w", err)
			}
		case "params":
			var p map[string]string
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("condition params: %w", err)
			}
			for pk, pv := range p {
				c.setParam(pk, pv)
			}
		default:
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				c.setParam(k, s)
				continue
			}
			c.setParam(k, strings.TrimSpace(string(v)))
		}
	}
	return nil
}

func (c *Condition) setParam(k, v string) {
	if c.Params == nil {
		c.Params = make(map[string]string)
	}
	c.Params[k] = v
}
