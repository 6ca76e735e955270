package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"casebook/internal/middleware"
	"casebook/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"
)

// Ключи gin.Context, через которые обработчик может уточнить запись журнала.
const (
	ObjectIDKey    = "activity.objectId"
	ActionKey      = "activity.action"
	DescriptionKey = "activity.description"
)

const (
	maxBodySnapshot = 64 << 10
	writeTimeout    = 10 * time.Second
)

type Store interface {
	Create(ctx context.Context, entry *models.ActivityLogEntry) error
}

// Logger пишет запись журнала на каждый API-запрос. Записи в хранилище идут строго по одной.
type Logger struct {
	store Store
	gate  *semaphore.Weighted
	wg    sync.WaitGroup
	now   func() time.Time
}

func New(store Store) *Logger {
	return &Logger{
		store: store,
		gate:  semaphore.NewWeighted(1),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// call — то, что снимаем до вызова обработчика.
type call struct {
	started time.Time
	method  string
	path    string
	query   string
	ip      string
	ua      string
	body    any
	hasBody bool
}

// Middleware оборачивает обработчик: before снимает запрос, after пишет итог, в том числе при панике.
func (l *Logger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if skip(c) {
			c.Next()
			return
		}

		cl := l.before(c)
		defer func() {
			if r := recover(); r != nil {
				l.enqueue(l.after(c, cl, r))
				panic(r)
			}
		}()

		c.Next()
		l.enqueue(l.after(c, cl, nil))
	}
}

func skip(c *gin.Context) bool {
	if c.Request.Method == "OPTIONS" {
		return true
	}
	p := c.Request.URL.Path
	return !strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/api/activity-logs")
}

func (l *Logger) before(c *gin.Context) *call {
	r := c.Request
	cl := &call{
		started: l.now(),
		method:  r.Method,
		path:    r.URL.Path,
		query:   Truncate(r.URL.RawQuery),
		ip:      c.ClientIP(),
		ua:      Truncate(r.UserAgent()),
	}

	if r.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
		buf, err := io.ReadAll(io.LimitReader(r.Body, maxBodySnapshot+1))
		// тело возвращаем обработчику целиком, даже если оно длиннее лимита
		r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
		if err == nil && len(buf) > 0 && len(buf) <= maxBodySnapshot {
			var v any
			if json.Unmarshal(buf, &v) == nil {
				cl.body = v
				cl.hasBody = true
			}
		}
	}
	return cl
}

type readCloser struct {
	io.Reader
	io.Closer
}

func (l *Logger) after(c *gin.Context, cl *call, recovered any) *models.ActivityLogEntry {
	elapsed := l.now().Sub(cl.started)
	route := c.FullPath()
	section, action := describeRoute(route, cl.method, c.Param("id") != "")
	if v := c.GetString(ActionKey); v != "" {
		action = v
	}

	entry := &models.ActivityLogEntry{
		CreatedAt:  l.now(),
		RequestID:  c.GetString(middleware.RequestIDKey),
		Category:   category(section),
		Action:     action,
		Section:    section,
		ObjectType: objectType(section),
		ObjectID:   objectID(c, cl),
		DurationMs: elapsed.Milliseconds(),
		Method:     cl.method,
		Path:       Truncate(cl.path),
		Query:      cl.query,
		IPAddress:  cl.ip,
		UserAgent:  cl.ua,
	}

	if u, ok := middleware.CurrentUser(c); ok {
		id := u.ID
		entry.UserID = &id
		entry.UserEmail = u.Email
		entry.UserName = u.Name
	}

	meta := datatypes.JSONMap{
		"route":   route,
		"handler": c.HandlerName(),
	}
	if len(c.Params) > 0 {
		params := map[string]any{}
		for _, p := range c.Params {
			params[p.Key] = Truncate(p.Value)
		}
		meta["params"] = params
	}
	if q := c.Request.URL.Query(); len(q) > 0 {
		query := map[string]any{}
		for k, vs := range q {
			if isSensitive(k) {
				query[k] = redacted
				continue
			}
			query[k] = Truncate(strings.Join(vs, ","))
		}
		meta["query"] = query
	}
	if cl.hasBody {
		meta["body"] = reduceBody(section, action, cl.body)
	}

	if recovered != nil {
		entry.StatusCode = 500
		entry.Status = models.ActivityFailure
		entry.Description = fmt.Sprintf("%s %s failed: %T: %s", cl.method, routeOrPath(route, cl.path), recovered, Truncate(fmt.Sprint(recovered)))
		meta["panic"] = fmt.Sprintf("%T", recovered)
	} else {
		entry.StatusCode = c.Writer.Status()
		entry.Status = StatusFor(entry.StatusCode)
		entry.Description = fmt.Sprintf("%s %s -> %d", cl.method, routeOrPath(route, cl.path), entry.StatusCode)
		if len(c.Errors) > 0 {
			msgs := make([]any, 0, len(c.Errors))
			for _, e := range c.Errors {
				msgs = append(msgs, Truncate(e.Error()))
			}
			meta["errors"] = msgs
			entry.Description += ": " + Truncate(c.Errors.Last().Error())
		}
	}
	if d := c.GetString(DescriptionKey); d != "" {
		entry.Description = Truncate(d) + " (" + entry.Description + ")"
	}

	entry.Metadata = meta
	return entry
}

// StatusFor переводит HTTP-код в статус записи журнала.
func StatusFor(code int) models.ActivityStatus {
	switch {
	case code >= 500:
		return models.ActivityFailure
	case code >= 400:
		return models.ActivityWarning
	case code >= 200:
		return models.ActivitySuccess
	}
	return models.ActivityInfo
}

func (l *Logger) enqueue(entry *models.ActivityLogEntry) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := l.Write(ctx, entry); err != nil {
			log.Error().Err(err).
				Str("request_id", entry.RequestID).
				Str("path", entry.Path).
				Msg("failed to write activity log entry")
		}
	}()
}

// Write сохраняет запись через общий шлюз: одновременно в хранилище пишет только один вызов.
func (l *Logger) Write(ctx context.Context, entry *models.ActivityLogEntry) (err error) {
	if err := l.gate.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire activity gate: %w", err)
	}
	defer l.gate.Release(1)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("activity store panic: %v", r)
		}
	}()
	return l.store.Create(ctx, entry)
}

// Wait дожидается всех фоновых записей.
func (l *Logger) Wait() {
	l.wg.Wait()
}

func routeOrPath(route, path string) string {
	if route != "" {
		return route
	}
	return path
}
