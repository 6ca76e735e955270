package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"casebook/internal/config"

	"github.com/rs/zerolog/log"
)

const (
	DefaultLimit = 5
	MaxLimit     = 20

	suggestPartyPath  = "/suggest/party"
	findPartyByIDPath = "/findById/party"
	maxResponseBody   = 1 << 20
)

// Party — организация-кандидат из DaData в том виде, в каком её отдаёт API.
type Party struct {
	Name     string `json:"name"`
	FullName string `json:"fullName,omitempty"`
	INN      string `json:"inn,omitempty"`
	KPP      string `json:"kpp,omitempty"`
	OGRN     string `json:"ogrn,omitempty"`
	Address  string `json:"address,omitempty"`
	Status   string `json:"status,omitempty"`
	Manager  string `json:"manager,omitempty"`
}

type partyRequest struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type partyResponse struct {
	Suggestions []struct {
		Value string `json:"value"`
		Data  struct {
			INN  string `json:"inn"`
			KPP  string `json:"kpp"`
			OGRN string `json:"ogrn"`
			Name struct {
				FullWithOPF  string `json:"full_with_opf"`
				ShortWithOPF string `json:"short_with_opf"`
			} `json:"name"`
			Address *struct {
				Value string `json:"value"`
			} `json:"address"`
			State *struct {
				Status string `json:"status"`
			} `json:"state"`
			Management *struct {
				Name string `json:"name"`
			} `json:"management"`
		} `json:"data"`
	} `json:"suggestions"`
}

// Client ходит в DaData за подсказками по организациям. Любая ошибка, кроме отмены контекста,
// превращается в пустой список.
type Client struct {
	apiKey    string
	secretKey string
	baseURL   string
	client    *http.Client

	cache Cache
	ttl   time.Duration
}

func New(cfg config.DaDataConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultDaDataURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		secretKey: strings.TrimSpace(cfg.SecretKey),
		baseURL:   strings.TrimRight(base, "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

// WithCache включает кэш успешных ответов. nil отключает кэш.
func (c *Client) WithCache(cache Cache, ttl time.Duration) *Client {
	c.cache = cache
	c.ttl = ttl
	return c
}

// Enabled сообщает, настроен ли ключ API.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Suggest ищет организации по свободному тексту (название, ИНН, ОГРН).
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]Party, error) {
	return c.lookup(ctx, suggestPartyPath, query, limit)
}

// FindByID ищет организацию по ИНН или ОГРН.
func (c *Client) FindByID(ctx context.Context, inn string, limit int) ([]Party, error) {
	return c.lookup(ctx, findPartyByIDPath, inn, limit)
}

// ClampLimit приводит limit к [1,20]; 0 и отрицательные значения дают значение по умолчанию.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

func (c *Client) lookup(ctx context.Context, path, query string, limit int) ([]Party, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	limit = ClampLimit(limit)
	if query == "" || !c.Enabled() {
		return []Party{}, nil
	}

	key := cacheKey(path, query, limit)
	if parties, ok := c.fromCache(ctx, key); ok {
		return parties, nil
	}

	parties, err := c.fetch(ctx, path, query, limit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn().Err(err).Str("path", path).Msg("dadata lookup failed")
		return []Party{}, nil
	}

	c.toCache(ctx, key, parties)
	return parties, nil
}

func (c *Client) fetch(ctx context.Context, path, query string, limit int) ([]Party, error) {
	body, err := json.Marshal(partyRequest{Query: query, Count: limit})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)
	if c.secretKey != "" {
		req.Header.Set("X-Secret", c.secretKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("dadata returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var decoded partyResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return toParties(decoded, limit), nil
}

func toParties(r partyResponse, limit int) []Party {
	out := make([]Party, 0, len(r.Suggestions))
	for _, s := range r.Suggestions {
		d := s.Data
		name := firstNonBlank(s.Value, d.Name.ShortWithOPF, d.Name.FullWithOPF)
		if name == "" {
			continue
		}
		p := Party{
			Name:     name,
			FullName: strings.TrimSpace(d.Name.FullWithOPF),
			INN:      d.INN,
			KPP:      d.KPP,
			OGRN:     d.OGRN,
		}
		if d.Address != nil {
			p.Address = d.Address.Value
		}
		if d.State != nil {
			p.Status = d.State.Status
		}
		if d.Management != nil {
			p.Manager = d.Management.Name
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func cacheKey(path, query string, limit int) string {
	return "dadata:" + strings.TrimPrefix(path, "/") + ":" + strconv.Itoa(limit) + ":" + strings.ToLower(query)
}
