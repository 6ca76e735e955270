package activity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxStringLen  = 200
	maxSliceItems = 20
	maxDepth      = 4
	ellipsis      = "…"
	redacted      = "***"
)

var sensitiveKeys = []string{"password", "secret", "token", "apikey", "api_key", "authorization", "cookie"}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// Truncate обрезает строку до 200 символов и ставит многоточие.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxStringLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxStringLen]) + ellipsis
}

// Snapshot делает безопасную для журнала копию значения: длинные строки обрезаны,
// секреты заменены заглушкой, вложенность и размер срезов ограничены.
func Snapshot(v any) any {
	return snapshot(v, 0)
}

func snapshot(v any, depth int) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return Truncate(x)
	case bool, float64, float32, int, int64, int32, uint, uint64, uint32:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return Truncate(x.String())
	case map[string]any:
		if depth >= maxDepth {
			return "{…}"
		}
		out := make(map[string]any, len(x))
		for k, val := range x {
			if isSensitive(k) {
				out[k] = redacted
				continue
			}
			out[k] = snapshot(val, depth+1)
		}
		return out
	case []any:
		if depth >= maxDepth {
			return "[…]"
		}
		n := len(x)
		if n > maxSliceItems {
			n = maxSliceItems
		}
		out := make([]any, 0, n+1)
		for _, val := range x[:n] {
			out = append(out, snapshot(val, depth+1))
		}
		if len(x) > maxSliceItems {
			out = append(out, fmt.Sprintf("… %d more", len(x)-maxSliceItems))
		}
		return out
	}
	return redacted
}

// reduceBody применяет правила для известных чувствительных запросов.
func reduceBody(section, action string, body any) any {
	if section == "auth" && action == "login" {
		m, ok := body.(map[string]any)
		if !ok {
			return redacted
		}
		email, _ := m["email"].(string)
		return map[string]any{"email": Truncate(email)}
	}
	return Snapshot(body)
}
