package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
	"github.com/tutorcenter/backend/internal/interfaces/http/middleware"
)

// APICase describes one request against a single handler mounted on Route.
// Actor, when set, is installed as the authenticated principal.
type APICase struct {
	Name       string
	Method     string
	Route      string
	Path       string
	Actor      *identity.Principal
	Body       any
	WantStatus int
	WantCode   string
	Check      func(t *testing.T, w *httptest.ResponseRecorder)
}

// RunAPICases runs each case as a subtest
func RunAPICases(t *testing.T, h gin.HandlerFunc, cases []APICase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			w := Serve(t, tc.Actor, tc.Method, tc.Route, tc.Path, tc.Body, h)
			if tc.WantStatus != 0 {
				require.Equal(t, tc.WantStatus, w.Code, w.Body.String())
			}
			if tc.WantCode != "" {
				resp := DecodeEnvelope(t, w)
				require.NotNil(t, resp.Error, "expected an error envelope")
				assert.Equal(t, tc.WantCode, resp.Error.Code)
			}
			if tc.Check != nil {
				tc.Check(t, w)
			}
		})
	}
}

// Serve mounts h on route behind a principal-injecting middleware and
// performs one request. A string body is sent verbatim, anything else as JSON.
func Serve(t *testing.T, actor *identity.Principal, method, route, path string, body any, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	if method == "" {
		method = http.MethodGet
	}
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.PrincipalKey, *actor)
		}
		c.Next()
	})
	engine.Handle(method, route, h)

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		reader = ToJSONReader(t, b)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope parses the standard response envelope
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// AssertErrorEnvelope checks the status and the error code of a failed response
func AssertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, status int, code string) dto.Response {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	resp := DecodeEnvelope(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, code, resp.Error.Code)
	return resp
}

// DataObject returns the envelope's data as a JSON object
func DataObject(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()

	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

// DataList returns the envelope's data as a JSON array
func DataList(t *testing.T, resp dto.Response) []any {
	t.Helper()

	items, ok := resp.Data.([]any)
	require.True(t, ok, "data is %T", resp.Data)
	return items
}

// ToJSONReader converts a value to a JSON io.Reader
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal JSON")
	return bytes.NewReader(data)
}
