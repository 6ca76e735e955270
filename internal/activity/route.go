package activity

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// describeRoute выводит раздел и действие из шаблона маршрута gin,
// например "/api/v2/payments/:id" -> ("payments", "view").
func describeRoute(route, method string, hasID bool) (section, action string) {
	segs := strings.Split(strings.Trim(route, "/"), "/")
	if len(segs) > 0 && segs[0] == "api" {
		segs = segs[1:]
	}
	if len(segs) > 0 && isVersion(segs[0]) {
		segs = segs[1:]
	}
	if len(segs) > 0 && segs[0] != "" {
		section = segs[0]
		for _, s := range segs[1:] {
			if !strings.HasPrefix(s, ":") && !strings.HasPrefix(s, "*") {
				action = s
			}
		}
	}
	if action != "" {
		return section, action
	}

	switch method {
	case "GET", "HEAD":
		if hasID {
			return section, "view"
		}
		return section, "list"
	case "POST":
		return section, "create"
	case "PUT", "PATCH":
		return section, "update"
	case "DELETE":
		return section, "delete"
	}
	return section, strings.ToLower(method)
}

func isVersion(s string) bool {
	return len(s) > 1 && s[0] == 'v' && strings.Trim(s[1:], "0123456789") == ""
}

func category(section string) string {
	switch section {
	case "auth":
		return "auth"
	case "suggestions":
		return "lookup"
	case "":
		return "other"
	}
	return "data"
}

func objectType(section string) string {
	switch {
	case section == "", section == "auth", section == "suggestions":
		return ""
	case strings.HasSuffix(section, "s"):
		return strings.TrimSuffix(section, "s")
	}
	return section
}

// objectID — первое найденное значение параметра с именем "id": маршрут, затем то, что выставил обработчик, затем query и тело.
func objectID(c *gin.Context, cl *call) string {
	if id := c.Param("id"); id != "" {
		return Truncate(id)
	}
	if v, ok := c.Get(ObjectIDKey); ok {
		return Truncate(fmt.Sprint(v))
	}
	if id := c.Query("id"); id != "" {
		return Truncate(id)
	}
	if m, ok := cl.body.(map[string]any); ok {
		if v, ok := m["id"]; ok && v != nil {
			return Truncate(fmt.Sprint(v))
		}
	}
	return ""
}
