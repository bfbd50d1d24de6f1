package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/loader"
	"github.com/starford/harvest/internal/sessionservice"
	"github.com/starford/harvest/internal/testutil"
)

type viewBody struct {
	ID           string   `json:"id"`
	Mode         string   `json:"mode"`
	Query        string   `json:"query"`
	SelectedTags []string `json:"selected_tags"`
	Matched      int      `json:"matched"`
	Total        int      `json:"total"`
	Farms        []struct {
		Name string `json:"name"`
	} `json:"farms"`
	Placeholder *struct {
		Message   string `json:"message"`
		Available bool   `json:"available"`
	} `json:"placeholder"`
}

func (v viewBody) names() []string {
	out := make([]string, 0, len(v.Farms))
	for _, f := range v.Farms {
		out = append(out, f.Name)
	}
	return out
}

// testEnv builds a router over the seed catalog and a temp session database.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken, nil)
}

func testEnvWithSSE(t *testing.T, authToken string, sse http.Handler) http.Handler {
	t.Helper()
	src := loader.NewStaticSource(catalog.SeedCatalog())
	svc := sessionservice.NewService(src, testutil.TestSessions(t), nil)
	return NewRouter(svc, authToken != "", authToken, sse)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) viewBody {
	t.Helper()
	var v viewBody
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestListFarms(t *testing.T) {
	router := testEnv(t, "")

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"all", "/farms", []string{"Green Valley Farm", "Sunrise Ranch", "Meadow Brook Farm", "Orchard Hill"}},
		{"query", "/farms?q=ranch", []string{"Sunrise Ranch"}},
		{"tag", "/farms?tag=Organic", []string{"Green Valley Farm", "Sunrise Ranch"}},
		{"tags and", "/farms?tag=Organic&tag=Local+Delivery", []string{"Green Valley Farm"}},
		{"query and tag", "/farms?q=DAIRY&tag=Grass+Fed", []string{"Meadow Brook Farm"}},
		{"no match", "/farms?q=zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodGet, tt.target, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			if w.Header().Get("X-Catalog-Version") != catalog.SeedVersion {
				t.Errorf("version header = %q", w.Header().Get("X-Catalog-Version"))
			}
			v := decodeView(t, w)
			if diff := cmp.Diff(tt.want, v.names()); diff != "" {
				t.Errorf("farms (-want +got):\n%s", diff)
			}
			if v.Total != 4 || v.Matched != len(tt.want) {
				t.Errorf("total/matched = %d/%d", v.Total, v.Matched)
			}
		})
	}
}

func TestListFarms_QueryTooLong(t *testing.T) {
	router := testEnv(t, "")
	long := make([]byte, maxQueryLen+1)
	for i := range long {
		long[i] = 'a'
	}
	w := do(t, router, http.MethodGet, "/farms?q="+string(long), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetFarm(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/farms/"+url.PathEscape("orchard hill"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var farm struct {
		Name          string   `json:"name"`
		DeliveryAreas []string `json:"delivery_areas"`
	}
	if err := json.NewDecoder(w.Body).Decode(&farm); err != nil {
		t.Fatal(err)
	}
	if farm.Name != "Orchard Hill" {
		t.Errorf("name = %q", farm.Name)
	}

	w = do(t, router, http.MethodGet, "/farms/Nowhere", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing farm = %d, want 404", w.Code)
	}
}

func TestListTags(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/tags", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp TagListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(catalog.DefaultVocabulary, resp.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
}

func TestSessionLifecycle(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start = %d, body = %s", w.Code, w.Body.String())
	}
	v := decodeView(t, w)
	if v.ID == "" || v.Mode != "list" || v.Query != "" || len(v.SelectedTags) != 0 {
		t.Fatalf("initial view = %+v", v)
	}
	base := "/sessions/" + v.ID

	w = do(t, router, http.MethodPost, base+"/tags/"+url.PathEscape("Organic"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d", w.Code)
	}
	v = decodeView(t, w)
	if diff := cmp.Diff([]string{"Green Valley Farm", "Sunrise Ranch"}, v.names()); diff != "" {
		t.Errorf("after tag (-want +got):\n%s", diff)
	}

	w = do(t, router, http.MethodPut, base+"/query", map[string]string{"query": "eggs"})
	v = decodeView(t, w)
	if diff := cmp.Diff([]string{"Sunrise Ranch"}, v.names()); diff != "" {
		t.Errorf("after query (-want +got):\n%s", diff)
	}

	w = do(t, router, http.MethodPost, base+"/view-mode/toggle", nil)
	v = decodeView(t, w)
	if v.Mode != "map" || v.Placeholder == nil || v.Placeholder.Message != catalog.MapPlaceholderMessage {
		t.Errorf("map view = %+v", v)
	}
	if v.Placeholder != nil && v.Placeholder.Available {
		t.Error("map placeholder reported as available")
	}
	if v.Query != "eggs" || len(v.SelectedTags) != 1 {
		t.Errorf("mode switch changed filters: %+v", v)
	}

	w = do(t, router, http.MethodPut, base+"/view-mode", map[string]string{"mode": "list"})
	v = decodeView(t, w)
	if v.Mode != "list" || v.Placeholder != nil {
		t.Errorf("list view = %+v", v)
	}

	w = do(t, router, http.MethodDelete, base+"/tags", nil)
	v = decodeView(t, w)
	if v.Query != "" || len(v.SelectedTags) != 0 || v.Matched != 4 {
		t.Errorf("after clear = %+v", v)
	}

	w = do(t, router, http.MethodGet, base, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get = %d", w.Code)
	}

	w = do(t, router, http.MethodDelete, base, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("end = %d, want 204", w.Code)
	}
	w = do(t, router, http.MethodGet, base, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after end = %d, want 404", w.Code)
	}
}

func TestToggleTag_Twice(t *testing.T) {
	router := testEnv(t, "")
	v := decodeView(t, do(t, router, http.MethodPost, "/sessions", nil))
	target := "/sessions/" + v.ID + "/tags/" + url.PathEscape("Farm Stand")

	do(t, router, http.MethodPost, target, nil)
	v = decodeView(t, do(t, router, http.MethodPost, target, nil))
	if len(v.SelectedTags) != 0 || v.Matched != 4 {
		t.Errorf("double toggle = %+v", v)
	}
}

func TestToggleTag_PathDecoding(t *testing.T) {
	router := testEnv(t, "")

	tests := []struct {
		segment string
		want    string
	}{
		{"Farm%20Stand", "Farm Stand"},
		{"Tag%2541", "Tag%41"},
		{"Grass%2FFed", "Grass/Fed"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			v := decodeView(t, do(t, router, http.MethodPost, "/sessions", nil))
			w := do(t, router, http.MethodPost, "/sessions/"+v.ID+"/tags/"+tt.segment, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			v = decodeView(t, w)
			if diff := cmp.Diff([]string{tt.want}, v.SelectedTags); diff != "" {
				t.Errorf("selected (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetViewMode_Invalid(t *testing.T) {
	router := testEnv(t, "")
	v := decodeView(t, do(t, router, http.MethodPost, "/sessions", nil))

	w := do(t, router, http.MethodPut, "/sessions/"+v.ID+"/view-mode", map[string]string{"mode": "satellite"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid mode = %d, want 400", w.Code)
	}
	v = decodeView(t, do(t, router, http.MethodGet, "/sessions/"+v.ID, nil))
	if v.Mode != "list" {
		t.Errorf("mode after rejected update = %q", v.Mode)
	}
}

func TestSetQuery_BadBody(t *testing.T) {
	router := testEnv(t, "")
	v := decodeView(t, do(t, router, http.MethodPost, "/sessions", nil))

	req := httptest.NewRequest(http.MethodPut, "/sessions/"+v.ID+"/query", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid json = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodPut, "/sessions/"+v.ID+"/query", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing query = %d, want 400", w.Code)
	}
}

func TestSession_NotFound(t *testing.T) {
	router := testEnv(t, "")

	tests := []struct {
		method, target string
		body           any
	}{
		{http.MethodGet, "/sessions/ghost", nil},
		{http.MethodPut, "/sessions/ghost/query", map[string]string{"query": "x"}},
		{http.MethodPost, "/sessions/ghost/tags/Organic", nil},
		{http.MethodPost, "/sessions/ghost/view-mode/toggle", nil},
		{http.MethodDelete, "/sessions/ghost", nil},
	}
	for _, tt := range tests {
		w := do(t, router, tt.method, tt.target, tt.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s = %d, want 404", tt.method, tt.target, w.Code)
		}
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed start = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/farms", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/farms", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, "secret", dummySSE())

	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, "tok", dummySSE())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}

func dummySSE() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	router := testEnvWithSSE(t, "tok", dummySSE())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("query token = %d, want 200", w.Code)
	}

	// Only GET accepts the query parameter.
	w = do(t, router, http.MethodPost, "/sessions?access_token=tok", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("POST with query token = %d, want 401", w.Code)
	}
}
