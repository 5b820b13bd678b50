package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseToolArgs turns key=value pairs into tool arguments. Finite numbers
// become float64; anything else stays a string.
func parseToolArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", pair)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			args[key] = f
			continue
		}
		args[key] = value
	}
	return args, nil
}
