package api

import (
	"fmt"
	"strconv"
)

func parseID(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(v), nil
}
