package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"socialdl/internal/model"
	"socialdl/internal/resolver"
	"socialdl/internal/service"
	"socialdl/pkg/logger"
	"socialdl/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxFilenameLength = 120

// DownloadHandler handles resolution and direct streaming requests
type DownloadHandler struct {
	resolveService *service.ResolveService
	streamService  *service.StreamService
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(rs *service.ResolveService, ss *service.StreamService) *DownloadHandler {
	return &DownloadHandler{
		resolveService: rs,
		streamService:  ss,
	}
}

// StartDownload handles POST /api/download
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	log := logger.FromContext(c)

	var req model.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid download request", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.resolveService.Resolve(c.Request.Context(), req.URL)
	if err != nil {
		status, resp := errorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Error("Resolution failed", zap.Error(err))
		} else {
			log.Info("Download request rejected", zap.Error(err))
		}
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Direct handles GET /api/direct: the media bytes are piped from yt-dlp
// as they arrive. Errors before the first byte are JSON; later ones abort
// the connection since the status line is already sent.
func (h *DownloadHandler) Direct(c *gin.Context) {
	log := logger.FromContext(c)

	rawURL, platform, err := h.resolveService.Check(c.Query("url"))
	if err != nil {
		status, resp := errorResponse(err)
		c.JSON(status, resp)
		return
	}

	stream, err := h.streamService.Open(c.Request.Context(), rawURL, platform)
	if err != nil {
		log.Error("Direct download failed to start", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error: "Could not start the download for this " + platform.DisplayName() + " link",
		})
		return
	}
	defer stream.Close()

	filename := validator.MediaFilename(string(platform)+"_video", "mp4", maxFilenameLength)
	c.Header("Content-Type", "video/mp4")
	c.Header("Content-Disposition", buildContentDispositionHeader(filename))
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	// The first byte is already in hand; commit the status line so a later
	// failure shows up to the client as a truncated body.
	c.Writer.Flush()

	if _, err := io.Copy(c.Writer, stream); err != nil {
		log.Warn("Direct download interrupted",
			zap.Int64("bytes", stream.Bytes()),
			zap.Error(err))
		panic(http.ErrAbortHandler)
	}
	if err := stream.Close(); err != nil {
		panic(http.ErrAbortHandler)
	}
}

// errorResponse maps service errors onto status codes and the public
// error envelope. Internal detail stays in the logs.
func errorResponse(err error) (int, model.ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrURLRequired):
		return http.StatusBadRequest, model.ErrorResponse{Error: "URL is required"}
	case errors.Is(err, service.ErrUnsupportedPlatform):
		return http.StatusBadRequest, model.ErrorResponse{Error: unsupportedMessage()}
	case service.IsInputError(err):
		return http.StatusBadRequest, model.ErrorResponse{Error: err.Error()}
	}

	var failure *resolver.Failure
	if errors.As(err, &failure) {
		msg := fmt.Sprintf("Could not resolve this %s link", failure.Platform.DisplayName())
		if failure.Cause != nil {
			msg += ": request timed out or was cancelled"
		}
		return http.StatusInternalServerError, model.ErrorResponse{
			Error:      msg,
			Strategies: failure.Strategies(),
		}
	}
	return http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"}
}

func unsupportedMessage() string {
	names := make([]string, 0, len(model.SupportedPlatforms()))
	for _, p := range model.SupportedPlatforms() {
		names = append(names, p.DisplayName())
	}
	return "Unsupported platform. Supported: " + strings.Join(names, ", ")
}

// buildContentDispositionHeader builds a proper Content-Disposition header
// with RFC 5987 encoding for unicode and special characters
func buildContentDispositionHeader(filename string) string {
	needsEncoding := false
	for _, r := range filename {
		if r > 127 || r == '"' || r == '\\' || r == ';' || r == ',' {
			needsEncoding = true
			break
		}
	}
	if strings.ContainsAny(filename, " \t\n\r") {
		needsEncoding = true
	}

	if !needsEncoding {
		return fmt.Sprintf(`attachment; filename="%s"`, filename)
	}

	// RFC 5987: filename*=UTF-8''<percent-encoded-filename>
	encodedFilename := url.PathEscape(filename)
	return fmt.Sprintf(`attachment; filename="video.mp4"; filename*=UTF-8''%s`, encodedFilename)
}
