package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/elnosh/gopix/pix"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	Name    = "gopix"
	Version = "0.1.0"

	RequestIdHeader = "X-Request-Id"
	cborContentType = "application/cbor"
)

type Server struct {
	httpServer   *http.Server
	logger       *slog.Logger
	renderer     pix.Renderer
	renderConfig pix.RenderConfig
	maxBodyBytes int64
}

func SetupServer(config Config) (*Server, error) {
	if config.Renderer == nil {
		return nil, errors.New("renderer cannot be nil")
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	server := &Server{
		logger:       setupLogger(config.LogLevel),
		renderer:     config.Renderer,
		renderConfig: config.RenderConfig,
		maxBodyBytes: config.MaxBodyBytes,
	}
	server.setupHttpServer(net.JoinHostPort(config.Host, config.Port))
	return server, nil
}

func setupLogger(level LogLevel) *slog.Logger {
	if level == Disable {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	logLevel := slog.LevelInfo
	if level == Debug {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func (s *Server) Start() error {
	s.logger.Info("pix server listening on: " + s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down pix server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupHttpServer(addr string) {
	r := mux.NewRouter()

	r.HandleFunc("/v1/info", s.getInfo).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/v1/pix", s.encodePix).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/v1/pix/qrcode", s.encodeQRCode).Methods(http.MethodPost, http.MethodOptions)

	r.Use(s.requestLogger)
	r.Use(setupHeaders)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func setupHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.Header().Set("Access-Control-Allow-Origin", "*")
		rw.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		rw.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, origin, "+RequestIdHeader)

		if req.Method == http.MethodOptions {
			return
		}

		next.ServeHTTP(rw, req)
	})
}

type loggerKey struct{}

// requestLogger tags each request with an id and a logger carrying it.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		requestId := req.Header.Get(RequestIdHeader)
		if len(requestId) == 0 || len(requestId) > 64 {
			requestId = uuid.New().String()
		}
		rw.Header().Set(RequestIdHeader, requestId)

		logger := s.logger.With("request_id", requestId)
		ctx := context.WithValue(req.Context(), loggerKey{}, logger)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
		next.ServeHTTP(recorder, req.WithContext(ctx))

		logger.Debug("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", recorder.status,
			"duration", time.Since(start),
		)
	})
}

func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return fallback
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

type InfoResponse struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	QRCodeSize   int    `json:"qrcode_size"`
	QRCodeMargin int    `json:"qrcode_margin"`
	QRCodeLevel  string `json:"qrcode_level"`
}

func (s *Server) getInfo(rw http.ResponseWriter, req *http.Request) {
	info := InfoResponse{
		Name:         Name,
		Version:      Version,
		QRCodeSize:   s.renderConfig.Size,
		QRCodeMargin: s.renderConfig.Margin,
		QRCodeLevel:  s.renderConfig.Level.String(),
	}
	s.writeJSON(rw, req, info)
}

type PixRequest struct {
	Key       string `json:"key" cbor:"key"`
	Name      string `json:"name" cbor:"name"`
	City      string `json:"city" cbor:"city"`
	Amount    string `json:"amount" cbor:"amount"`
	Txid      string `json:"txid,omitempty" cbor:"txid,omitempty"`
	SingleUse bool   `json:"single_use,omitempty" cbor:"single_use,omitempty"`

	// QR code options, only read by /v1/pix/qrcode
	Size   int    `json:"size,omitempty" cbor:"size,omitempty"`
	Margin *int   `json:"margin,omitempty" cbor:"margin,omitempty"`
	Level  string `json:"level,omitempty" cbor:"level,omitempty"`
}

func (r PixRequest) Payment() pix.Payment {
	return pix.Payment{
		Key:       r.Key,
		Name:      r.Name,
		City:      r.City,
		Amount:    r.Amount,
		Txid:      r.Txid,
		SingleUse: r.SingleUse,
	}
}

type PixResponse struct {
	Payload string `json:"payload"`
	DataURL string `json:"data_url,omitempty"`
}

func (s *Server) encodePix(rw http.ResponseWriter, req *http.Request) {
	var pixReq PixRequest
	if err := s.decodeRequest(rw, req, &pixReq); err != nil {
		s.writeErr(rw, req, err)
		return
	}

	payload, err := pixReq.Payment().Encode()
	if err != nil {
		s.writeErr(rw, req, err)
		return
	}

	s.writeJSON(rw, req, PixResponse{Payload: payload})
}

func (s *Server) encodeQRCode(rw http.ResponseWriter, req *http.Request) {
	format := req.URL.Query().Get("format")
	if len(format) == 0 {
		format = "png"
	}
	if format != "png" && format != "dataurl" {
		s.writeErr(rw, req, InvalidFormatErr)
		return
	}

	var pixReq PixRequest
	if err := s.decodeRequest(rw, req, &pixReq); err != nil {
		s.writeErr(rw, req, err)
		return
	}

	config, err := s.requestRenderConfig(pixReq)
	if err != nil {
		s.writeErr(rw, req, err)
		return
	}

	payload, img, err := pix.EncodeImage(req.Context(), s.renderer, pixReq.Payment(), config)
	if err != nil {
		s.writeErr(rw, req, err)
		return
	}

	if format == "dataurl" {
		s.writeJSON(rw, req, PixResponse{Payload: payload, DataURL: pix.DataURL(img)})
		return
	}

	rw.Header().Set("Content-Type", "image/png")
	rw.Write(img)
}

func (s *Server) requestRenderConfig(pixReq PixRequest) (pix.RenderConfig, error) {
	config := s.renderConfig
	if pixReq.Size != 0 {
		config.Size = pixReq.Size
	}
	if pixReq.Margin != nil {
		config.Margin = *pixReq.Margin
	}
	if len(pixReq.Level) > 0 {
		level, err := pix.ParseRecoveryLevel(pixReq.Level)
		if err != nil {
			return pix.RenderConfig{}, BuildError(err.Error(), pix.InvalidRenderConfigErrCode)
		}
		config.Level = level
	}
	if config.Size < 0 || config.Margin < 0 {
		return pix.RenderConfig{}, InvalidRenderOption
	}
	return config, nil
}

// decodeRequest reads a JSON body, or a CBOR one when the
// content type is application/cbor.
func (s *Server) decodeRequest(rw http.ResponseWriter, req *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(rw, req.Body, s.maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return BodyTooLargeErr
		}
		return InvalidBodyErr
	}
	if len(body) == 0 {
		return EmptyBodyErr
	}

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == cborContentType {
		err = cbor.Unmarshal(body, dst)
	} else {
		err = json.Unmarshal(body, dst)
	}
	if err != nil {
		loggerFrom(req.Context(), s.logger).Debug("error decoding request body", "error", err)
		return InvalidBodyErr
	}
	return nil
}

func (s *Server) writeJSON(rw http.ResponseWriter, req *http.Request, v any) {
	response, err := json.Marshal(v)
	if err != nil {
		s.writeErr(rw, req, err)
		return
	}
	rw.Write(response)
}
