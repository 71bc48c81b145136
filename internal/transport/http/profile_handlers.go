package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/upload"
)

const profilePictureField = "profilePicture"

// formOverheadBytes leaves room for the text fields and multipart framing
// on top of the file cap.
const formOverheadBytes = 64 << 10

// ProfileHandlers serves the profile picture upload used before joining.
type ProfileHandlers struct {
	store *upload.Store
	log   *zerolog.Logger
}

// NewProfileHandlers creates profile handlers.
func NewProfileHandlers(st *upload.Store, logger *zerolog.Logger) *ProfileHandlers {
	return &ProfileHandlers{store: st, log: logger}
}

// UploadProfileRequest is the multipart form of the upload endpoint.
type UploadProfileRequest struct {
	Name   string `form:"name" binding:"required"`
	Gender string `form:"gender" binding:"required"`
	Region string `form:"region" binding:"required"`
}

// UploadProfileResponse mirrors what the chat client expects.
type UploadProfileResponse struct {
	Success  bool    `json:"success"`
	Filename *string `json:"filename"`
	FileURL  *string `json:"fileUrl"`
	Message  string  `json:"message,omitempty"`
}

// UploadProfile stores an optional profile picture.
// POST /upload-profile
func (h *ProfileHandlers) UploadProfile(c *gin.Context) {
	if maxBytes := h.store.MaxBytes(); maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+formOverheadBytes)
	}

	var req UploadProfileRequest
	err := c.ShouldBind(&req)
	if isTooLarge(err) {
		c.JSON(http.StatusRequestEntityTooLarge, UploadProfileResponse{Message: "file too large"})
		return
	}
	if err != nil || blank(req.Name, req.Gender, req.Region) {
		h.log.Debug().Err(err).Msg("invalid upload profile request")
		c.JSON(http.StatusBadRequest, UploadProfileResponse{Message: "Missing user info"})
		return
	}

	fh, err := c.FormFile(profilePictureField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusOK, UploadProfileResponse{Success: true})
		return
	}
	if isTooLarge(err) {
		c.JSON(http.StatusRequestEntityTooLarge, UploadProfileResponse{Message: "file too large"})
		return
	}
	if err != nil {
		h.log.Debug().Err(err).Msg("read profile picture")
		c.JSON(http.StatusBadRequest, UploadProfileResponse{Message: "invalid file"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("open profile picture")
		c.JSON(http.StatusInternalServerError, UploadProfileResponse{Message: "internal server error"})
		return
	}
	defer f.Close()

	stored, err := h.store.SaveImage(f)
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, UploadProfileResponse{Message: "file too large"})
		return
	case errors.Is(err, upload.ErrUnsupportedType), errors.Is(err, upload.ErrEmpty):
		c.JSON(http.StatusUnsupportedMediaType, UploadProfileResponse{Message: "profile picture must be an image"})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("store profile picture")
		c.JSON(http.StatusInternalServerError, UploadProfileResponse{Message: "internal server error"})
		return
	}

	h.log.Info().
		Str("name", strings.TrimSpace(req.Name)).
		Str("file", stored.Filename).
		Int64("size", stored.Size).
		Msg("profile picture stored")
	c.JSON(http.StatusOK, UploadProfileResponse{
		Success:  true,
		Filename: &stored.Filename,
		FileURL:  &stored.URL,
	})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
