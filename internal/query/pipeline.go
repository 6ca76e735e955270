package query

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cond — готовое условие WHERE для значения перечислимого фильтра.
type Cond struct {
	Query string
	Args  []any
}

// Entity описывает, как фильтровать и сортировать одну коллекцию.
// Пустое имя колонки означает, что соответствующий фильтр сущностью не поддерживается.
type Entity struct {
	Name          string
	DateColumn    string
	ClientColumn  string
	CaseColumn    string
	ActiveColumn  string
	SearchColumns []string

	// ключи в нижнем регистре
	Sorts       map[string]string
	DefaultSort string

	Statuses map[string]Cond
	Types    map[string]Cond
}

// Page — ответ v2 со страницей и общим количеством после фильтров.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// Validate отклоняет фильтры, которых у сущности нет, и проверяет значения перечислимых параметров.
func (e Entity) Validate(p Params) error {
	filters := []struct {
		param string
		set   bool
		ok    bool
	}{
		{"from", p.From != nil, e.DateColumn != ""},
		{"to", p.To != nil, e.DateColumn != ""},
		{"clientId", p.ClientID != nil, e.ClientColumn != ""},
		{"caseId", p.CaseID != nil, e.CaseColumn != ""},
		{"isActive", p.IsActive != nil, e.ActiveColumn != ""},
		{"search", p.Search != "", len(e.SearchColumns) > 0},
	}
	for _, f := range filters {
		if f.set && !f.ok {
			return &ParamError{Param: f.param, Msg: "not supported for " + e.Name}
		}
	}

	if p.SortBy != "" {
		if _, ok := e.Sorts[p.SortBy]; !ok {
			return &ParamError{Param: "sortBy", Msg: "expected one of " + keys(e.Sorts)}
		}
	}
	if p.Status != "" {
		if e.Statuses == nil {
			return &ParamError{Param: "status", Msg: "not supported for " + e.Name}
		}
		if _, ok := e.Statuses[p.Status]; !ok {
			return &ParamError{Param: "status", Msg: "expected one of " + keys(e.Statuses)}
		}
	}
	if p.Type != "" {
		if e.Types == nil {
			return &ParamError{Param: "type", Msg: "not supported for " + e.Name}
		}
		if _, ok := e.Types[p.Type]; !ok {
			return &ParamError{Param: "type", Msg: "expected one of " + keys(e.Types)}
		}
	}
	return nil
}

// Filter возвращает scope со всеми фильтрами. Один и тот же scope используется для count и для выборки.
func (e Entity) Filter(p Params) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if e.DateColumn != "" {
			if p.From != nil {
				db = db.Where(clause.Gte{Column: clause.Column{Name: e.DateColumn}, Value: *p.From})
			}
			if p.To != nil {
				col := clause.Column{Name: e.DateColumn}
				if p.ToInclusive {
					db = db.Where(clause.Lte{Column: col, Value: *p.To})
				} else {
					db = db.Where(clause.Lt{Column: col, Value: *p.To})
				}
			}
		}
		if e.ClientColumn != "" && p.ClientID != nil {
			db = db.Where(clause.Eq{Column: clause.Column{Name: e.ClientColumn}, Value: *p.ClientID})
		}
		if e.CaseColumn != "" && p.CaseID != nil {
			db = db.Where(clause.Eq{Column: clause.Column{Name: e.CaseColumn}, Value: *p.CaseID})
		}
		if e.ActiveColumn != "" && p.IsActive != nil {
			db = db.Where(clause.Eq{Column: clause.Column{Name: e.ActiveColumn}, Value: *p.IsActive})
		}
		if c, ok := e.Statuses[p.Status]; ok && p.Status != "" {
			db = db.Where(c.Query, c.Args...)
		}
		if c, ok := e.Types[p.Type]; ok && p.Type != "" {
			db = db.Where(c.Query, c.Args...)
		}
		if p.Search != "" && len(e.SearchColumns) > 0 {
			db = db.Where(searchClause(e.SearchColumns, p.Search))
		}
		return db
	}
}

// Order — сортировка по колонке из таблицы сущности, id как второй ключ для стабильных страниц.
func (e Entity) Order(p Params) func(*gorm.DB) *gorm.DB {
	col, ok := e.Sorts[p.SortBy]
	if !ok {
		col = e.Sorts[e.DefaultSort]
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: p.SortDesc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: p.SortDesc})
	}
}

// All — отфильтрованный и отсортированный список без пагинации (API v1).
func All[T any](db *gorm.DB, e Entity, p Params) ([]T, error) {
	if err := e.Validate(p); err != nil {
		return nil, err
	}
	items := []T{}
	if err := db.Scopes(e.Filter(p), e.Order(p)).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", e.Name, err)
	}
	return items, nil
}

// Paged — страница результатов и общее количество (API v2).
func Paged[T any](db *gorm.DB, e Entity, p Params) (Page[T], error) {
	page := Page[T]{Items: []T{}, Page: p.Page, PageSize: p.PageSize}
	if err := e.Validate(p); err != nil {
		return page, err
	}

	filter := e.Filter(p)
	if err := db.Model(new(T)).Scopes(filter).Count(&page.Total).Error; err != nil {
		return page, fmt.Errorf("count %s: %w", e.Name, err)
	}
	if page.Total == 0 {
		return page, nil
	}

	err := db.Scopes(filter, e.Order(p)).
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&page.Items).Error
	if err != nil {
		return page, fmt.Errorf("list %s: %w", e.Name, err)
	}
	return page, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func searchClause(columns []string, term string) clause.Expression {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	exprs := make([]clause.Expression, 0, len(columns))
	for _, col := range columns {
		exprs = append(exprs, clause.Expr{
			SQL:  `LOWER(?) LIKE ? ESCAPE '\'`,
			Vars: []any{clause.Column{Name: col}, pattern},
		})
	}
	return clause.Or(exprs...)
}

func keys[V any](m map[string]V) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
