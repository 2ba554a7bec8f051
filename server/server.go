// Package server exposes the support pipeline over HTTP with an Echo router,
// a health check endpoint and context-aware graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hupe1980/supportmesh"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/ticket"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Options configure the HTTP server.
type Options struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// UploadsDir receives files posted to the upload endpoint.
	UploadsDir string

	// ShutdownTimeout bounds graceful shutdown. Zero means
	// DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	Logger logging.Logger
}

// Server wires the façade behind the HTTP surface.
type Server struct {
	mesh *supportmesh.SupportMesh
	echo *echo.Echo
	opts Options
}

// ChatRequest is the JSON body of POST /api/v1/chat.
type ChatRequest struct {
	Message  string `json:"message"`
	ImageURL string `json:"image_url,omitempty"`
	TicketID string `json:"ticket_id,omitempty"`
}

// ChatResponse is the JSON response of POST /api/v1/chat.
type ChatResponse struct {
	TicketID      string `json:"ticket_id"`
	Response      string `json:"response"`
	Category      string `json:"category,omitempty"`
	RequiresHuman bool   `json:"requires_human"`
	Status        string `json:"status"`
}

// UploadResponse is the JSON response of POST /api/v1/upload-image.
type UploadResponse struct {
	ImageURL string `json:"image_url"`
}

// HealthResponse is the JSON response of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// New creates the HTTP server around an assembled SupportMesh.
func New(mesh *supportmesh.SupportMesh, optFns ...func(o *Options)) (*Server, error) {
	opts := Options{
		Addr:            ":8080",
		UploadsDir:      "uploads",
		ShutdownTimeout: DefaultShutdownTimeout,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if err := os.MkdirAll(opts.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{mesh: mesh, echo: e, opts: opts}
	s.registerRoutes()
	return s, nil
}

// Echo exposes the router, mainly for tests and for mounting extra routes.
func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api/v1")
	api.POST("/chat", s.handleChat)
	api.POST("/upload-image", s.handleUploadImage)
	api.GET("/tickets", s.handleListTickets)
	api.GET("/tickets/:id", s.handleGetTicket)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: "supportmesh"})
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message must not be empty")
	}

	out, err := s.mesh.Submit(c.Request().Context(), supportmesh.SubmitInput{
		Message:  req.Message,
		ImageURL: req.ImageURL,
		TicketID: req.TicketID,
	})
	if err != nil {
		s.opts.Logger.Error("chat submission failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process message")
	}

	return c.JSON(http.StatusOK, ChatResponse{
		TicketID:      out.Ticket.ID,
		Response:      out.Ticket.Response,
		Category:      out.Ticket.Category,
		RequiresHuman: out.Ticket.RequiresHuman,
		Status:        out.Ticket.Status,
	})
}

func (s *Server) handleUploadImage(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, "file must be an image")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}
	defer src.Close()

	name := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), filepath.Base(fileHeader.Filename))
	dest := filepath.Join(s.opts.UploadsDir, name)

	dst, err := os.Create(dest)
	if err != nil {
		s.opts.Logger.Error("upload store failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		s.opts.Logger.Error("upload store failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}

	return c.JSON(http.StatusOK, UploadResponse{ImageURL: dest})
}

func (s *Server) handleGetTicket(c echo.Context) error {
	tk, err := s.mesh.Ticket(c.Param("id"))
	if errors.Is(err, ticket.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "ticket not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load ticket")
	}
	return c.JSON(http.StatusOK, tk)
}

func (s *Server) handleListTickets(c echo.Context) error {
	all, err := s.mesh.Tickets()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list tickets")
	}
	return c.JSON(http.StatusOK, all)
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
// Returns nil on graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		err := s.echo.Start(s.opts.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server start: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		// A start failure racing the cancellation must not be swallowed;
		// after Shutdown the goroutine is guaranteed to report.
		if err := <-errCh; err != nil {
			return err
		}
		return nil
	}
}
