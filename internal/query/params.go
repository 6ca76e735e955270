package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// ParamError — некорректный параметр запроса, отдаётся клиенту как 400.
type ParamError struct {
	Param string
	Msg   string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Msg)
}

// Params — разобранные параметры списка. Пустые значения означают "фильтр не задан".
type Params struct {
	From        *time.Time
	To          *time.Time
	ToInclusive bool // false, если to передан датой без времени: тогда To — начало следующего дня

	ClientID *uint
	CaseID   *uint
	Search   string
	Status   string
	IsActive *bool
	Type     string

	SortBy   string
	SortDesc bool

	Page     int
	PageSize int
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ClampPage приводит номер страницы и размер к допустимым границам.
// Сверху страница ограничена так, чтобы смещение (page-1)*pageSize помещалось в int.
func ClampPage(page, pageSize int) (int, int) {
	switch {
	case pageSize < 1:
		pageSize = 1
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	return page, pageSize
}

// Parse разбирает query-строку. Значения, которые не удаётся распарсить, отклоняются, а не игнорируются.
func Parse(v url.Values) (Params, error) {
	p := Params{Page: 1, PageSize: DefaultPageSize}
	var err error

	if p.From, _, err = parseTime(v, "from", false); err != nil {
		return p, err
	}
	if p.To, p.ToInclusive, err = parseTime(v, "to", true); err != nil {
		return p, err
	}
	if p.ClientID, err = parseID(v, "clientId"); err != nil {
		return p, err
	}
	if p.CaseID, err = parseID(v, "caseId"); err != nil {
		return p, err
	}

	p.Search = strings.TrimSpace(v.Get("search"))
	p.Status = strings.ToLower(strings.TrimSpace(v.Get("status")))
	p.Type = strings.ToLower(strings.TrimSpace(v.Get("type")))

	if s := strings.TrimSpace(v.Get("isActive")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return p, &ParamError{Param: "isActive", Msg: "expected true or false"}
		}
		p.IsActive = &b
	}

	p.SortBy = strings.ToLower(strings.TrimSpace(v.Get("sortBy")))
	switch dir := strings.ToLower(strings.TrimSpace(v.Get("sortDir"))); dir {
	case "", "asc":
	case "desc":
		p.SortDesc = true
	default:
		return p, &ParamError{Param: "sortDir", Msg: "expected asc or desc"}
	}

	page, pageSize := 1, DefaultPageSize
	if s := strings.TrimSpace(v.Get("page")); s != "" {
		if page, err = strconv.Atoi(s); err != nil {
			return p, &ParamError{Param: "page", Msg: "not an integer"}
		}
	}
	if s := strings.TrimSpace(v.Get("pageSize")); s != "" {
		if pageSize, err = strconv.Atoi(s); err != nil {
			return p, &ParamError{Param: "pageSize", Msg: "not an integer"}
		}
	}
	p.Page, p.PageSize = ClampPage(page, pageSize)

	if p.From != nil && p.To != nil && p.To.Before(*p.From) {
		return p, &ParamError{Param: "to", Msg: "is before from"}
	}

	return p, nil
}

func parseID(v url.Values, name string) (*uint, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return nil, &ParamError{Param: name, Msg: "expected a positive integer"}
	}
	id := uint(n)
	return &id, nil
}

// parseTime понимает YYYY-MM-DD и RFC3339. Для верхней границы дата без времени покрывает весь день.
func parseTime(v url.Values, name string, upper bool) (*time.Time, bool, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, true, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil, false, &ParamError{Param: name, Msg: "expected YYYY-MM-DD or RFC3339"}
	}
	if upper {
		t = t.AddDate(0, 0, 1)
		return &t, false, nil
	}
	return &t, true, nil
}
