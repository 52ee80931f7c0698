package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/convert"
	"github.com/Faultbox/objmesh/pkg/formats"
)

const scene = `o first
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
usemtl red
f 1/1 2/2 3/3
o second
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
usemtl blue
f 4 5 6 7
`

func newTestEcho(cfg *config.Config) *echo.Echo {
	if cfg == nil {
		cfg = config.Default()
	}
	e := echo.New()
	NewServer(cfg, nil).Register(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestEcho(nil), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("missing request id")
	}
}

func TestRequestIDIsKept(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	newTestEcho(nil).ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderXRequestID); got != "abc-123" {
		t.Errorf("request id: got %q", got)
	}
}

func TestConvertSingle(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestEcho(nil), http.MethodPost, "/v1/convert?name=scene", []byte(scene))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != echo.MIMEOctetStream {
		t.Errorf("content type: got %q", ct)
	}
	if got := rec.Header().Get(HeaderFaces); got != "3" {
		t.Errorf("%s: got %q", HeaderFaces, got)
	}
	if got := rec.Header().Get(HeaderPositions); got != "7" {
		t.Errorf("%s: got %q", HeaderPositions, got)
	}

	// Same bytes as a direct conversion
	out := &convert.MemoryOutput{}
	if _, err := convert.New(out, convert.Options{Name: "scene"}, nil).Convert(context.Background(), strings.NewReader(scene)); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	want, _ := out.File("scene.mesh")
	if !bytes.Equal(rec.Body.Bytes(), want) {
		t.Error("HTTP output differs from direct conversion")
	}
}

func TestConvertSplit(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestEcho(nil), http.MethodPost, "/v1/convert?name=scene&split=true", []byte(scene))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp ConvertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" || resp.ID != rec.Header().Get(echo.HeaderXRequestID) {
		t.Errorf("response id %q does not match header", resp.ID)
	}
	if resp.Manifest != "scene_1.mesh,red\nscene_2.mesh,blue\n" {
		t.Errorf("manifest: got %q", resp.Manifest)
	}
	if len(resp.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(resp.Segments))
	}

	second := resp.Segments[1]
	if second.File != "scene_2.mesh" || second.Faces != 2 || second.TexCoords != 0 {
		t.Errorf("unexpected second segment %+v", second)
	}
	mesh, err := formats.ParseMesh(second.Data)
	if err != nil {
		t.Fatalf("ParseMesh: %v", err)
	}
	if mesh.Faces[0][0].Vertex != 1 {
		t.Errorf("second segment indices not local: %v", mesh.Faces[0])
	}
}

func TestConvertSplitFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Convert.Split = true
	e := newTestEcho(cfg)

	rec := do(t, e, http.MethodPost, "/v1/convert", []byte(scene))
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Errorf("split default should answer JSON, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"mesh_1.mesh"`) {
		t.Errorf("default name not used: %s", rec.Body.String())
	}

	rec = do(t, e, http.MethodPost, "/v1/convert?split=0", []byte(scene))
	if ct := rec.Header().Get(echo.HeaderContentType); ct != echo.MIMEOctetStream {
		t.Errorf("split=0 should override config, got %q", ct)
	}
}

func TestConvertErrors(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.MaxBodyMB = 1
	e := newTestEcho(cfg)

	tests := []struct {
		name   string
		path   string
		body   []byte
		status int
	}{
		{"malformed face", "/v1/convert", []byte("v 0 0 0\nf 1 2\n"), http.StatusUnprocessableEntity},
		{"malformed attribute", "/v1/convert", []byte("v 0 zero 0\n"), http.StatusUnprocessableEntity},
		{"index out of range", "/v1/convert", []byte("v 0 0 0\nf 1 2 3\n"), http.StatusUnprocessableEntity},
		{"bad split", "/v1/convert?split=maybe", []byte(scene), http.StatusBadRequest},
		{"bad name", "/v1/convert?name=../x", []byte(scene), http.StatusBadRequest},
		{"bad charset", "/v1/convert?charset=klingon", []byte(scene), http.StatusBadRequest},
		{"too large", "/v1/convert", bytes.Repeat([]byte("v 0 0 0\n"), 200000), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status: got %d want %d body=%s", rec.Code, tt.status, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Errorf("expected JSON error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestConvertCharset(t *testing.T) {
	t.Parallel()

	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl caf\xe9\nf 1 2 3\n"
	rec := do(t, newTestEcho(nil), http.MethodPost, "/v1/convert?split=1&charset=latin1", []byte(src))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp ConvertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Segments[0].Material != "café" {
		t.Errorf("material: got %q", resp.Segments[0].Material)
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	e := newTestEcho(nil)
	mesh := do(t, e, http.MethodPost, "/v1/convert", []byte(scene)).Body.Bytes()

	rec := do(t, e, http.MethodPost, "/v1/inspect", mesh)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var summary formats.MeshSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Positions != 7 || summary.Faces != 3 || summary.CornerStride != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.BoundsMax != [3]float32{1, 1, 1} {
		t.Errorf("bounds max: got %v", summary.BoundsMax)
	}

	rec = do(t, e, http.MethodPost, "/v1/inspect", mesh[:10])
	if rec.Code != http.StatusBadRequest {
		t.Errorf("truncated mesh: got status %d", rec.Code)
	}
}
