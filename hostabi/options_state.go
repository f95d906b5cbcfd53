package hostabi

import (
	"encoding/json"
	"strconv"
	"strings"
)

// optionState is the host-side source of truth for configuration flags:
// the thing get_options_version()/get_options_as_json()/parse_option()
// front. It is intentionally dumb — validating key names and semantics is
// the Options Layer's job (package options); the host just stores
// whatever it is told and bumps its version counter.
type optionState struct {
	version int
	bools   map[string]bool
	nums    map[string]float64
}

func newOptionState() *optionState {
	return &optionState{bools: map[string]bool{}, nums: map[string]float64{}}
}

// apply parses a "--name", "--no-name" or "--name=value" argument, the
// same three shapes the Options Layer's applyOptions produces.
func (s *optionState) apply(arg string) error {
	arg = strings.TrimPrefix(arg, "--")
	if eq := strings.IndexByte(arg, '='); eq >= 0 {
		name, val := arg[:eq], arg[eq+1:]
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		s.nums[name] = n
		s.version++
		return nil
	}
	if strings.HasPrefix(arg, "no-") {
		s.bools[strings.TrimPrefix(arg, "no-")] = false
	} else {
		s.bools[arg] = true
	}
	s.version++
	return nil
}

func (s *optionState) json() (string, error) {
	out := map[string]interface{}{}
	for k, v := range s.bools {
		out[k] = v
	}
	for k, v := range s.nums {
		out[k] = v
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
