package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ToString converts a scanned database value to string.
// NULL becomes "". Floats are printed without an exponent so large
// numeric account ids survive a float column.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool interprets a ledger flag. "1" and "true" in any case are true,
// surrounding whitespace is ignored.
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		return parseFlag(v)
	case []byte:
		return parseFlag(string(v))
	case int:
		return v == 1
	case int64:
		return v == 1
	default:
		return false
	}
}

func parseFlag(s string) bool {
	s = strings.TrimSpace(s)
	return s == "1" || strings.EqualFold(s, "true")
}
