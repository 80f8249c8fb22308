package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ahmad-alkadri/simple-blob-manager/internal/gate"
)

// Recorder receives request level telemetry. A nil Recorder is allowed.
type Recorder interface {
	RecordRequest(operation, outcome string)
	RecordRejection(reason string)
}

// Handler serves the data endpoint: gate, bind, dispatch.
type Handler struct {
	gate         *gate.Gate
	binder       *Binder
	dispatcher   *Dispatcher
	recorder     Recorder
	maxBodyBytes int64
}

// NewHandler creates a data handler with its dependencies.
func NewHandler(g *gate.Gate, binder *Binder, dispatcher *Dispatcher, recorder Recorder, maxBodyBytes int64) *Handler {
	return &Handler{
		gate:         g,
		binder:       binder,
		dispatcher:   dispatcher,
		recorder:     recorder,
		maxBodyBytes: maxBodyBytes,
	}
}

// Data handles GET and POST /api/data.
func (h *Handler) Data(c *gin.Context) {
	logger := zerolog.Ctx(c.Request.Context())

	if !h.gate.Accept(c.GetHeader(h.gate.HeaderKey())) {
		logger.Info().Msg("Dead Canary!")
		h.reject(c, KindDeadCanary, gate.DeadCanaryMessage)
		return
	}
	logger.Debug().Msg("Canary Alive!")

	q := Query{
		Operation:    c.Query("operation"),
		Path:         c.Query("path"),
		RequestType:  c.Query("trequest"),
		ResponseType: c.Query("tresponse"),
	}
	binding, err := h.binder.Bind(q)
	if err != nil {
		bindErr, ok := err.(*BindError)
		if !ok {
			bindErr = &BindError{Kind: KindMalformedQuery, Message: err.Error()}
		}
		logger.Info().Str("reason", string(bindErr.Kind)).Msgf("Exiting, BadRequest, %s", bindErr.Message)
		h.reject(c, bindErr.Kind, bindErr.Message)
		return
	}

	logger.Info().
		Str("operation", string(binding.Operation)).
		Str("trequest", binding.RequestType).
		Str("container", binding.Request.ContainerName).
		Str("path", binding.Request.BlobPath).
		Msg("executing operation")

	binding.Request.ContentType = c.GetHeader("Content-Type")
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	result, kind := h.dispatcher.Dispatch(c.Request.Context(), binding, body)

	outcome := "success"
	if kind != "" {
		outcome = string(kind)
		logger.Info().Str("reason", outcome).Msgf("Exiting, BadRequest, %s", result.Message)
	} else {
		logger.Info().Int("bytes", len(result.Body)).Msg("Exiting, Success")
	}
	if h.recorder != nil {
		op := string(binding.Operation)
		if kind == KindUnrecognizedOperation {
			op = "unknown"
		}
		h.recorder.RecordRequest(op, outcome)
	}
	writeResult(c, result)
}

func (h *Handler) reject(c *gin.Context, kind ErrorKind, msg string) {
	if h.recorder != nil {
		h.recorder.RecordRejection(string(kind))
	}
	writeResult(c, failureResult(msg))
}

func writeResult(c *gin.Context, r Result) {
	if len(r.Body) == 0 {
		c.Status(r.Status)
		return
	}
	c.Data(r.Status, r.ContentType, r.Body)
}
