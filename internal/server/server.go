// Package server exposes the converter over HTTP.
package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/convert"
	"github.com/Faultbox/objmesh/pkg/encoding"
	"github.com/Faultbox/objmesh/pkg/formats"
)

// Count headers set on non-split convert responses.
const (
	HeaderPositions = "X-Mesh-Positions"
	HeaderTexCoords = "X-Mesh-Texcoords"
	HeaderNormals   = "X-Mesh-Normals"
	HeaderFaces     = "X-Mesh-Faces"
)

const defaultName = "mesh"

// Server handles conversion requests. Every request gets its own Converter
// and in-memory output, so a Server is safe for concurrent use.
type Server struct {
	convert config.ConvertConfig
	maxBody int64
	log     *zap.Logger
}

// NewServer creates a Server from cfg. A nil logger disables logging.
func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		convert: cfg.Convert,
		maxBody: int64(cfg.Server.MaxBodyMB) << 20,
		log:     log,
	}
}

// Register installs the routes and the request ID middleware on e.
func (s *Server) Register(e *echo.Echo) {
	e.Use(s.requestID)

	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/convert", s.handleConvert)
	e.POST("/v1/inspect", s.handleInspect)
}

// requestID tags the response with an ID, reusing the client's if it sent one.
func (s *Server) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := c.Request().Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, id)
		return next(c)
	}
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SegmentResponse is one mesh of a split conversion. Data is base64 in JSON.
type SegmentResponse struct {
	File      string `json:"file"`
	Material  string `json:"material"`
	Positions uint32 `json:"positions"`
	TexCoords uint32 `json:"texcoords"`
	Normals   uint32 `json:"normals"`
	Faces     uint32 `json:"faces"`
	Data      []byte `json:"data"`
}

// ConvertResponse is the body of a split conversion.
type ConvertResponse struct {
	ID       string            `json:"id"`
	Manifest string            `json:"manifest"` // Manifest file contents
	Segments []SegmentResponse `json:"segments"`
}

func (s *Server) handleConvert(c *echo.Context) error {
	req := c.Request()
	id := c.Response().Header().Get(echo.HeaderXRequestID)
	log := s.log.With(zap.String("request_id", id))

	name := c.QueryParam("name")
	if name == "" {
		name = defaultName
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return writeError(c, http.StatusBadRequest, "name must be a plain file name")
	}

	split := s.convert.Split
	if q := c.QueryParam("split"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			return writeError(c, http.StatusBadRequest, "split must be a boolean")
		}
		split = v
	}

	charset := s.convert.Charset
	if q := c.QueryParam("charset"); q != "" {
		charset = q
	}
	body := http.MaxBytesReader(c.Response(), req.Body, s.maxBody)
	r, err := encoding.NewReader(body, charset)
	if err != nil {
		return writeError(c, http.StatusBadRequest, err.Error())
	}

	out := &convert.MemoryOutput{}
	opts := convert.Options{
		Name:        name,
		Split:       split,
		MeshExt:     s.convert.MeshExt,
		ManifestExt: s.convert.ManifestExt,
	}
	res, err := convert.New(out, opts, log).Convert(req.Context(), r)
	if err != nil {
		return s.convertError(c, log, err)
	}

	log.Info("converted",
		zap.String("name", name),
		zap.Bool("split", split),
		zap.Int("lines", res.Lines),
		zap.Int("segments", len(res.Segments)))

	if !split {
		seg := res.Segments[0]
		h := c.Response().Header()
		h.Set(HeaderPositions, strconv.FormatUint(uint64(seg.Header.Positions), 10))
		h.Set(HeaderTexCoords, strconv.FormatUint(uint64(seg.Header.TexCoords), 10))
		h.Set(HeaderNormals, strconv.FormatUint(uint64(seg.Header.Normals), 10))
		h.Set(HeaderFaces, strconv.FormatUint(uint64(seg.Header.Faces), 10))
		h.Set("Content-Disposition", `attachment; filename="`+seg.File+`"`)
		data, _ := out.File(seg.File)
		return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
	}

	resp := ConvertResponse{
		ID:       id,
		Segments: make([]SegmentResponse, 0, len(res.Segments)),
	}
	var manifest bytes.Buffer
	for _, e := range out.Manifest {
		if err := formats.WriteManifestEntry(&manifest, e); err != nil {
			return err
		}
	}
	resp.Manifest = manifest.String()
	for _, seg := range res.Segments {
		data, _ := out.File(seg.File)
		resp.Segments = append(resp.Segments, SegmentResponse{
			File:      seg.File,
			Material:  seg.Material,
			Positions: seg.Header.Positions,
			TexCoords: seg.Header.TexCoords,
			Normals:   seg.Header.Normals,
			Faces:     seg.Header.Faces,
			Data:      data,
		})
	}
	return writeJSON(c, http.StatusOK, resp)
}

func (s *Server) convertError(c *echo.Context, log *zap.Logger, err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return writeError(c, http.StatusRequestEntityTooLarge, err.Error())
	case formats.IsMalformed(err):
		log.Warn("rejected malformed input", zap.Error(err))
		return writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error("conversion failed", zap.Error(err))
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleInspect(c *echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, s.maxBody)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeError(c, http.StatusRequestEntityTooLarge, err.Error())
		}
		return writeError(c, http.StatusBadRequest, err.Error())
	}

	mesh, err := formats.ParseMesh(data)
	if err != nil {
		return writeError(c, http.StatusBadRequest, err.Error())
	}
	return writeJSON(c, http.StatusOK, mesh.Summary())
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c *echo.Context, status int, msg string) error {
	return writeJSON(c, status, ErrorResponse{Error: msg})
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}
