package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseServerVersion parses a server_version_num style value ("150004").
func ParseServerVersion(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid server version %q: %w", raw, err)
	}
	return v, nil
}
