// handlers_log.go - Ingestion, retrieval and deletion handlers
package api

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/munnerz/goautoneg"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/logshare/backend/internal/encoding"
)

const mimeMsgpack = "application/msgpack"

// contentField is the form field carrying the log text.
const contentField = "content"

// Limits are reported to clients and bound how much request body is decoded.
type Limits struct {
	MaxLength int
	MaxLines  int
	Retention time.Duration
}

// decodeLimit allows for form encoding, which can triple the size of the text.
func (l Limits) decodeLimit() int64 {
	return int64(l.MaxLength)*3 + 4096
}

// LogHandlerImpl implements the LogHandler interface
type LogHandlerImpl struct {
	svc        LogService
	limits     Limits
	baseURL    string
	apiBaseURL string
}

// NewLogHandler creates a new log handler
func NewLogHandler(svc LogService, limits Limits, baseURL, apiBaseURL string) LogHandler {
	return &LogHandlerImpl{
		svc:        svc,
		limits:     limits,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiBaseURL: strings.TrimSuffix(apiBaseURL, "/"),
	}
}

type createLogResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	URL     string `json:"url"`
	Raw     string `json:"raw"`
}

// HandleCreateLog stores the submitted log. The text is taken from the
// "content" field of a form, or from the raw body for any other content type.
// A Content-Encoding from the supported list is decoded first.
func (h *LogHandlerImpl) HandleCreateLog(c echo.Context) error {
	content, err := h.readContent(c)
	if err != nil {
		return err
	}

	rec, err := h.svc.Submit(c.Request().Context(), content)
	if err != nil {
		return FromServiceError(err, "")
	}

	return c.JSON(http.StatusOK, createLogResponse{
		Success: true,
		ID:      rec.ID,
		URL:     h.baseURL + "/" + rec.ID,
		Raw:     h.apiBaseURL + "/1/raw/" + rec.ID,
	})
}

func (h *LogHandlerImpl) readContent(c echo.Context) ([]byte, error) {
	req := c.Request()
	body, err := encoding.Decode(req.Header.Get(echo.HeaderContentEncoding), req.Body, h.limits.decodeLimit())
	switch {
	case errors.Is(err, encoding.ErrUnsupported), errors.Is(err, encoding.ErrLimitExceeded):
		return nil, FromServiceError(err, "")
	case err != nil:
		return nil, NewBadRequestError("malformed request body", err)
	}

	mediaType, params, _ := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	switch mediaType {
	case echo.MIMEApplicationForm:
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, NewBadRequestError("malformed form body", err)
		}
		if !values.Has(contentField) {
			return nil, NewBadRequestError("missing form field: "+contentField, nil)
		}
		return []byte(values.Get(contentField)), nil
	case echo.MIMEMultipartForm:
		return multipartContent(body, params["boundary"])
	default:
		return body, nil
	}
}

// multipartContent extracts the content field, sent either as a value or as a file.
func multipartContent(body []byte, boundary string) ([]byte, error) {
	if boundary == "" {
		return nil, NewBadRequestError("multipart body without boundary", nil)
	}
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, NewBadRequestError("missing form field: "+contentField, nil)
		}
		if err != nil {
			return nil, NewBadRequestError("malformed multipart body", err)
		}
		if part.FormName() != contentField {
			part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, NewBadRequestError("malformed multipart body", err)
		}
		return data, nil
	}
}

// HandleGetRaw returns the stored bytes, compressed with the best encoding the
// client accepts.
func (h *LogHandlerImpl) HandleGetRaw(c echo.Context) error {
	id := c.Param("id")
	body, err := h.svc.FetchRaw(c.Request().Context(), id)
	if err != nil {
		return FromServiceError(err, id)
	}

	res := c.Response()
	res.Header().Add(echo.HeaderVary, echo.HeaderAcceptEncoding)

	enc := encoding.Negotiate(c.Request().Header.Get(echo.HeaderAcceptEncoding))
	if enc == encoding.Identity {
		return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, body)
	}

	compressed, err := encoding.Encode(enc, body)
	if err != nil {
		return NewInternalError("failed to encode log", err)
	}
	res.Header().Set(echo.HeaderContentEncoding, enc)
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, compressed)
}

type insightsResponse struct {
	ID             string            `json:"id" msgpack:"id"`
	Title          string            `json:"title" msgpack:"title"`
	CreatedAt      time.Time         `json:"createdAt" msgpack:"createdAt"`
	LastAccessedAt time.Time         `json:"lastAccessedAt" msgpack:"lastAccessedAt"`
	ExpiresAt      time.Time         `json:"expiresAt" msgpack:"expiresAt"`
	Lines          int               `json:"lines" msgpack:"lines"`
	Errors         int               `json:"errors" msgpack:"errors"`
	Analysis       *insightsAnalysis `json:"analysis" msgpack:"analysis"`
	Entries        []insightsEntry   `json:"entries" msgpack:"entries"`
}

type insightsAnalysis struct {
	Information []insightsInformation `json:"information" msgpack:"information"`
	Problems    []insightsProblem     `json:"problems" msgpack:"problems"`
}

type insightsInformation struct {
	Label string `json:"label" msgpack:"label"`
	Value string `json:"value" msgpack:"value"`
}

type insightsProblem struct {
	Signature string             `json:"signature" msgpack:"signature"`
	Message   string             `json:"message" msgpack:"message"`
	Line      int                `json:"line" msgpack:"line"`
	Solutions []insightsSolution `json:"solutions" msgpack:"solutions"`
}

type insightsSolution struct {
	Message  string            `json:"message" msgpack:"message"`
	Segments []insightsSegment `json:"segments" msgpack:"segments"`
}

type insightsSegment struct {
	Text       string `json:"text" msgpack:"text"`
	Emphasized bool   `json:"emphasized,omitempty" msgpack:"emphasized,omitempty"`
}

type insightsEntry struct {
	Line  int    `json:"line" msgpack:"n"`
	Level string `json:"level" msgpack:"l"`
	HTML  string `json:"html" msgpack:"h"`
}

// HandleGetInsights returns the analyzed view as JSON, or msgpack when the
// client prefers application/msgpack.
func (h *LogHandlerImpl) HandleGetInsights(c echo.Context) error {
	id := c.Param("id")
	view, err := h.svc.FetchAnalyzed(c.Request().Context(), id)
	if err != nil {
		return FromServiceError(err, id)
	}

	resp := insightsResponse{
		ID:             view.Record.ID,
		Title:          view.Report.Title,
		CreatedAt:      view.Record.CreatedAt,
		LastAccessedAt: view.Record.LastAccessedAt,
		ExpiresAt:      view.Record.ExpiresAt(h.limits.Retention),
		Lines:          len(view.Entries),
		Errors:         view.Entries.ErrorCount(),
		Analysis: &insightsAnalysis{
			Information: make([]insightsInformation, len(view.Report.Information)),
			Problems:    make([]insightsProblem, len(view.Report.Problems)),
		},
		Entries: make([]insightsEntry, len(view.Entries)),
	}
	for i, info := range view.Report.Information {
		resp.Analysis.Information[i] = insightsInformation{Label: info.Label, Value: info.Value}
	}
	for i, p := range view.Report.Problems {
		problem := insightsProblem{
			Signature: p.SignatureID,
			Message:   p.Message,
			Line:      p.TriggeringEntry.LineNumber,
			Solutions: make([]insightsSolution, len(p.Solutions)),
		}
		for j, sol := range p.Solutions {
			segments := sol.Segments()
			problem.Solutions[j] = insightsSolution{Message: sol.Message, Segments: make([]insightsSegment, len(segments))}
			for k, seg := range segments {
				problem.Solutions[j].Segments[k] = insightsSegment{Text: seg.Text, Emphasized: seg.Emphasized}
			}
		}
		resp.Analysis.Problems[i] = problem
	}
	for i, e := range view.Entries {
		resp.Entries[i] = insightsEntry{Line: e.LineNumber, Level: string(e.Level), HTML: e.RenderedText}
	}

	c.Response().Header().Add(echo.HeaderVary, echo.HeaderAccept)
	accept := c.Request().Header.Get(echo.HeaderAccept)
	if goautoneg.Negotiate(accept, []string{echo.MIMEApplicationJSON, mimeMsgpack}) == mimeMsgpack {
		data, err := msgpack.Marshal(&resp)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, mimeMsgpack, data)
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleGetAnalysis returns a markdown digest of the analysis.
func (h *LogHandlerImpl) HandleGetAnalysis(c echo.Context) error {
	id := c.Param("id")
	md, err := h.svc.Summarize(c.Request().Context(), id)
	if err != nil {
		return FromServiceError(err, id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"analysis": md,
	})
}

// HandleDeleteLog removes a log.
func (h *LogHandlerImpl) HandleDeleteLog(c echo.Context) error {
	id := c.Param("id")
	ok, err := h.svc.Remove(c.Request().Context(), id)
	if err != nil {
		return FromServiceError(err, id)
	}
	if !ok {
		return NewNotFoundError("log", id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// HandleGetLimits reports retention and size limits.
func (h *LogHandlerImpl) HandleGetLimits(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"storageTime": int64(h.limits.Retention / time.Second),
		"maxLength":   h.limits.MaxLength,
		"maxLines":    h.limits.MaxLines,
	})
}
