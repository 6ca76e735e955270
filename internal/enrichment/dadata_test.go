package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"casebook/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const partyJSON = `{"suggestions":[
 {"value":"ООО \"Ромашка\"","data":{"inn":"7707083893","kpp":"773601001","ogrn":"1027700132195",
  "name":{"full_with_opf":"Общество с ограниченной ответственностью \"Ромашка\"","short_with_opf":"ООО \"Ромашка\""},
  "address":{"value":"г Москва, ул Вавилова, д 19"},"state":{"status":"ACTIVE"},"management":{"name":"Иванов Иван"}}},
 {"value":"  ","data":{"inn":"0000000000","name":{}}},
 {"value":"","data":{"inn":"5000000000","name":{"short_with_opf":"ИП Петров"}}}
]}`

func newClient(url, key string) *Client {
	return New(config.DaDataConfig{APIKey: key, SecretKey: "sec", BaseURL: url, Timeout: time.Second})
}

func TestSuggest_NoKeyReturnsEmpty(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := newClient(srv.URL, "")
	parties, err := c.Suggest(context.Background(), "ромашка", 5)
	require.NoError(t, err)
	assert.NotNil(t, parties)
	assert.Empty(t, parties)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSuggest_ParsesAndDropsNameless(t *testing.T) {
	var got partyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suggest/party", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Token key", r.Header.Get("Authorization"))
		assert.Equal(t, "sec", r.Header.Get("X-Secret"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(partyJSON))
	}))
	defer srv.Close()

	parties, err := newClient(srv.URL, "key").Suggest(context.Background(), "  ромашка ", 0)
	require.NoError(t, err)

	assert.Equal(t, partyRequest{Query: "ромашка", Count: DefaultLimit}, got)
	require.Len(t, parties, 2)
	assert.Equal(t, `ООО "Ромашка"`, parties[0].Name)
	assert.Equal(t, "7707083893", parties[0].INN)
	assert.Equal(t, "773601001", parties[0].KPP)
	assert.Equal(t, "ACTIVE", parties[0].Status)
	assert.Equal(t, "Иванов Иван", parties[0].Manager)
	assert.Equal(t, "г Москва, ул Вавилова, д 19", parties[0].Address)
	assert.Equal(t, "ИП Петров", parties[1].Name)
}

func TestFindByID_UsesFindPathAndClampsLimit(t *testing.T) {
	var got partyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/findById/party", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"suggestions":[]}`))
	}))
	defer srv.Close()

	parties, err := newClient(srv.URL+"/", "key").FindByID(context.Background(), "7707083893", 100)
	require.NoError(t, err)
	assert.Empty(t, parties)
	assert.Equal(t, MaxLimit, got.Count)
	assert.Equal(t, "7707083893", got.Query)
}

func TestSuggest_FailuresDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"suggestions":`))
		}},
		{"slow beyond client timeout", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(partyJSON))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New(config.DaDataConfig{APIKey: "key", BaseURL: srv.URL, Timeout: 100 * time.Millisecond})
			parties, err := c.Suggest(context.Background(), "x", 3)
			require.NoError(t, err)
			assert.NotNil(t, parties)
			assert.Empty(t, parties)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		parties, err := newClient(url, "key").Suggest(context.Background(), "x", 3)
		require.NoError(t, err)
		assert.Empty(t, parties)
	})
}

func TestSuggest_CancellationPropagates(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(config.DaDataConfig{APIKey: "key", BaseURL: srv.URL, Timeout: 10 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Suggest(ctx, "x", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = c.FindByID(cancelled, "7707083893", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 5, ClampLimit(0))
	assert.Equal(t, 5, ClampLimit(-3))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 20, ClampLimit(20))
	assert.Equal(t, 20, ClampLimit(21))
}

type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttl    time.Duration
	getErr error
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func TestSuggest_CachesSuccessfulResults(t *testing.T) {
	var calls int32
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(partyJSON))
	}))
	defer srv.Close()

	cache := &memCache{}
	c := newClient(srv.URL, "key").WithCache(cache, time.Minute)

	first, err := c.Suggest(context.Background(), "Ромашка", 5)
	require.NoError(t, err)
	second, err := c.Suggest(context.Background(), "ромашка", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, time.Minute, cache.ttl)

	// неуспешный ответ в кэш не попадает
	fail.Store(true)
	_, err = c.Suggest(context.Background(), "другое", 5)
	require.NoError(t, err)
	assert.Len(t, cache.data, 1)
}

func TestSuggest_CacheErrorsIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(partyJSON))
	}))
	defer srv.Close()

	c := newClient(srv.URL, "key").WithCache(&memCache{getErr: errors.New("redis down")}, time.Minute)
	parties, err := c.Suggest(context.Background(), "ромашка", 5)
	require.NoError(t, err)
	assert.Len(t, parties, 2)
}

func TestNewRedisCache_EmptyAddrDisablesCache(t *testing.T) {
	rc, err := NewRedisCache(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, rc)
}
