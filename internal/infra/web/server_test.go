//go:build !integration

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// client keeps the session cookie between requests like a browser would.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "grasshopper_session" {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}
	return rec
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, "application/json", body)
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, "application/x-www-form-urlencoded", form.Encode())
}

func newClient(t *testing.T, h *harness) *client {
	return &client{t: t, h: h.server.Router()}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	c := newClient(t, newHarness(t, &fakeAI{}))
	rec := c.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Nil(t, c.cookie, "health must not start a session")
}

func TestMetricsEndpoint(t *testing.T) {
	c := newClient(t, newHarness(t, &fakeAI{}))
	rec := c.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_OutfitThenChatFlow(t *testing.T) {
	ai := &fakeAI{imageURL: "https://example.com/img1.png", reply: "Try strappy sandals."}
	h := newHarness(t, ai)
	c := newClient(t, h)

	rec := c.postJSON("/api/v1/outfits", `{"idea":"summer wedding guest"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, c.cookie, "expected a session cookie")
	assert.NotEmpty(t, rec.Header().Get(sessionTokenHeader))

	out := decode[struct {
		Record struct {
			Idea     string `json:"idea"`
			ImageURL string `json:"image_url"`
		} `json:"record"`
		SearchURL string `json:"search_url"`
	}](t, rec)
	assert.Equal(t, "summer wedding guest", out.Record.Idea)
	assert.Equal(t, "https://example.com/img1.png", out.Record.ImageURL)
	assert.Equal(t, "https://www.google.com/search?q=summer+wedding+guest+fashion+outfit", out.SearchURL)

	rec = c.postJSON("/api/v1/chat", `{"message":"what shoes go with this?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Try strappy sandals.", decode[chatResponse](t, rec).Reply)

	require.Len(t, ai.sent, 1)
	require.Len(t, ai.sent[0], 3)
	assert.Equal(t, "Generated outfit: summer wedding guest", ai.sent[0][1].Content)
	assert.Equal(t, "user", ai.sent[0][1].Role)

	rec = c.do(http.MethodGet, "/api/v1/history", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[historyResponse](t, rec)
	assert.Equal(t, []string{
		"Generated outfit: summer wedding guest",
		"User: what shoes go with this?",
		"AI: Try strappy sandals.",
	}, hist.Lines)

	rec = c.do(http.MethodGet, "/api/v1/wardrobe", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[wardrobeResponse](t, rec).Outfits, 1)
}

func TestAPI_BlankIdeaIsInvalidInput(t *testing.T) {
	ai := &fakeAI{imageURL: "u"}
	c := newClient(t, newHarness(t, ai))

	rec := c.postJSON("/api/v1/outfits", `{"idea":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, "invalid_input", body.Kind)
	assert.Equal(t, "Please enter a fashion idea.", body.Error)
	assert.NotEmpty(t, body.TraceID)
	assert.Zero(t, ai.images)

	rec = c.postJSON("/api/v1/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a question.", decode[errorResponse](t, rec).Error)
}

func TestAPI_ServiceFailureIsBadGateway(t *testing.T) {
	ai := &fakeAI{imageErr: errors.New("billing hard limit reached")}
	c := newClient(t, newHarness(t, ai))

	rec := c.postJSON("/api/v1/outfits", `{"idea":"boots"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, "external_service", body.Kind)
	assert.Equal(t, "Error generating outfit: billing hard limit reached", body.Error)

	rec = c.do(http.MethodGet, "/api/v1/wardrobe", "", "")
	assert.Empty(t, decode[wardrobeResponse](t, rec).Outfits)
}

func TestAPI_MalformedBody(t *testing.T) {
	c := newClient(t, newHarness(t, &fakeAI{}))
	rec := c.postJSON("/api/v1/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessions_AreIsolatedPerCookie(t *testing.T) {
	ai := &fakeAI{imageURL: "https://example.com/a.png"}
	h := newHarness(t, ai)
	alice, bob := newClient(t, h), newClient(t, h)

	require.Equal(t, http.StatusCreated, alice.postJSON("/api/v1/outfits", `{"idea":"red dress"}`).Code)
	rec := bob.do(http.MethodGet, "/api/v1/wardrobe", "", "")
	assert.Empty(t, decode[wardrobeResponse](t, rec).Outfits)

	n, err := h.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSessions_ForgedCookieStartsFreshSession(t *testing.T) {
	h := newHarness(t, &fakeAI{imageURL: "https://example.com/a.png"})
	c := newClient(t, h)
	require.Equal(t, http.StatusCreated, c.postJSON("/api/v1/outfits", `{"idea":"red dress"}`).Code)

	c.cookie = &http.Cookie{Name: "grasshopper_session", Value: "forged.token.value"}
	rec := c.do(http.MethodGet, "/api/v1/wardrobe", "", "")
	assert.Empty(t, decode[wardrobeResponse](t, rec).Outfits)
	require.NotNil(t, c.cookie)
	assert.NotEqual(t, "forged.token.value", c.cookie.Value)
}

func TestSessions_BearerTokenWorks(t *testing.T) {
	h := newHarness(t, &fakeAI{imageURL: "https://example.com/a.png"})
	router := h.server.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/outfits", strings.NewReader(`{"idea":"red dress"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	token := rec.Header().Get(sessionTokenHeader)
	require.NotEmpty(t, token)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/wardrobe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Len(t, decode[wardrobeResponse](t, rec).Outfits, 1)
}

func TestAPI_EndSession(t *testing.T) {
	h := newHarness(t, &fakeAI{imageURL: "https://example.com/a.png"})
	c := newClient(t, h)
	require.Equal(t, http.StatusCreated, c.postJSON("/api/v1/outfits", `{"idea":"red dress"}`).Code)

	rec := c.do(http.MethodDelete, "/api/v1/session", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, c.cookie)

	n, _ := h.repo.Count(context.Background())
	assert.Equal(t, 0, n)
}

func TestRecover_PanicsBecome500(t *testing.T) {
	c := newClient(t, newHarness(t, &fakeAI{panicked: true}))
	rec := c.postJSON("/api/v1/outfits", `{"idea":"boots"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decode[errorResponse](t, rec).Kind)
}

func TestCORS_OnlyWhenConfigured(t *testing.T) {
	h := newHarness(t, &fakeAI{})
	h.server.opts.AllowedOrigins = []string{"https://shop.example.com"}
	router := h.server.Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

type countingReporter struct{ n atomic.Int32 }

func (c *countingReporter) Capture(context.Context, error) { c.n.Add(1) }
func (c *countingReporter) Flush(time.Duration)            {}

func TestClassify_CanceledIsNotReported(t *testing.T) {
	h := newHarness(t, &fakeAI{})
	rep := &countingReporter{}
	h.server.reporter = rep

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil).WithContext(ctx)

	status, body := h.server.classify(req, ctx.Err(), "missing", "chat_error")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "canceled", body.Kind)
	assert.Zero(t, rep.n.Load())

	status, _ = h.server.classify(req, errors.New("boom"), "missing", "chat_error")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.EqualValues(t, 1, rep.n.Load())
}
