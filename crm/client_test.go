package crm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCRM struct {
	mu      sync.Mutex
	server  *httptest.Server
	records map[string]map[string]string // object -> key -> id
	bodies  []map[string]any
	revoked []string
	nextID  int
	loginOK bool

	noInstance bool
}

func newFakeCRM(t *testing.T) *fakeCRM {
	t.Helper()
	f := &fakeCRM{records: map[string]map[string]string{}, loginOK: true}

	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if !f.loginOK || r.PostForm.Get("password") != "secretTOKEN" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"authentication failure"}`)
			return
		}
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client", r.PostForm.Get("client_id"))
		assert.Equal(t, "shh", r.PostForm.Get("client_secret"))
		w.Header().Set("Content-Type", "application/json")
		instance := f.server.URL
		if f.noInstance {
			instance = ""
		}
		_, _ = io.WriteString(w, `{"access_token":"tok-1","token_type":"Bearer","instance_url":"`+instance+`"}`)
	})
	mux.HandleFunc("/services/oauth2/revoke", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.mu.Lock()
		f.revoked = append(f.revoked, r.PostForm.Get("token"))
		f.mu.Unlock()
	})
	mux.HandleFunc("/services/data/v59.0/sobjects/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/services/data/v59.0/sobjects/"), "/")
		require.Len(t, parts, 3)
		object, value := parts[0], parts[2]

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["fail"] == true {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `[{"message":"bad field","errorCode":"INVALID_FIELD"}]`)
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		f.bodies = append(f.bodies, body)
		if f.records[object] == nil {
			f.records[object] = map[string]string{}
		}
		if _, ok := f.records[object][value]; ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		f.nextID++
		id := object + "-" + strconv.Itoa(f.nextID)
		f.records[object][value] = id
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"`+id+`","success":true,"created":true}`)
	})
	mux.HandleFunc("/services/data/v59.0/query", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		f.mu.Lock()
		defer f.mu.Unlock()
		for object, keys := range f.records {
			if !strings.Contains(q, "FROM "+object+" ") {
				continue
			}
			for value, id := range keys {
				if strings.Contains(q, "= '"+value+"'") {
					_, _ = io.WriteString(w, `{"totalSize":1,"records":[{"Id":"`+id+`"}]}`)
					return
				}
			}
		}
		_, _ = io.WriteString(w, `{"totalSize":0,"records":[]}`)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCRM) config() Config {
	return Config{
		LoginURL:      f.server.URL,
		Username:      "sync@hotel.test",
		Password:      "secret",
		SecurityToken: "TOKEN",
		ClientID:      "client",
		ClientSecret:  "shh",
		APIVersion:    "59.0",
	}
}

func TestDialAndClose(t *testing.T) {
	f := newFakeCRM(t)
	ctx := context.Background()

	c, err := Dial(ctx, f.config())
	require.NoError(t, err)
	assert.Equal(t, "v59.0", c.apiVersion)
	assert.Equal(t, f.server.URL, c.instanceURL)

	require.NoError(t, c.Close(ctx))
	assert.Equal(t, []string{"tok-1"}, f.revoked)

	_, err = c.FindID(ctx, ObjectBranch, NameField, "x")
	assert.Error(t, err)
}

func TestDialRejected(t *testing.T) {
	f := newFakeCRM(t)
	f.loginOK = false

	_, err := Dial(context.Background(), f.config())
	require.ErrorIs(t, err, ErrAuth)
	assert.Contains(t, err.Error(), "authentication failure")
}

func TestDialRequiresInstanceURL(t *testing.T) {
	f := newFakeCRM(t)
	f.noInstance = true

	_, err := Dial(context.Background(), f.config())
	require.ErrorIs(t, err, ErrAuth)
	assert.Contains(t, err.Error(), "instance_url")
}

func TestDialRequiresCredentials(t *testing.T) {
	_, err := Dial(context.Background(), Config{LoginURL: "http://unused"})
	assert.ErrorIs(t, err, ErrAuth)
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	f := newFakeCRM(t)
	ctx := context.Background()
	c, err := Dial(ctx, f.config())
	require.NoError(t, err)

	id, err := c.Upsert(ctx, ObjectBranch, NameField, "Bangkok", map[string]any{"City__c": "Bangkok"})
	require.NoError(t, err)
	assert.Equal(t, "Branch__c-1", id)

	// second call gets 204 and resolves the id through a query
	again, err := c.Upsert(ctx, ObjectBranch, NameField, "Bangkok", map[string]any{"City__c": "BKK"})
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Len(t, f.records[ObjectBranch], 1)
}

func TestUpsertReportsAPIError(t *testing.T) {
	f := newFakeCRM(t)
	ctx := context.Background()
	c, err := Dial(ctx, f.config())
	require.NoError(t, err)

	_, err = c.Upsert(ctx, ObjectBooking, ExternalIDField, "7", map[string]any{"fail": true})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "INVALID_FIELD", apiErr.Code)
	assert.Equal(t, "bad field", apiErr.Message)
}

func TestFindIDMissing(t *testing.T) {
	f := newFakeCRM(t)
	ctx := context.Background()
	c, err := Dial(ctx, f.config())
	require.NoError(t, err)

	id, err := c.FindID(ctx, ObjectRoom, NameField, "Nowhere-101")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestEscapeSOQL(t *testing.T) {
	assert.Equal(t, `O\'Hare \\ Inn`, escapeSOQL(`O'Hare \ Inn`))
}
