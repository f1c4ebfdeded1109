package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/snapcook/backend/internal/types"
)

// MaxUploadBytes caps the size of an uploaded image.
const MaxUploadBytes = 10 << 20

// Analyze handles POST /api/analyze. Both the image and the text field are
// optional, but the service rejects a request carrying neither.
func (h *Handlers) Analyze(c *gin.Context) {
	image, err := readImage(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.Analysis.Analyze(c.Request.Context(), image, c.PostForm("text_input"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func readImage(c *gin.Context) (*types.ImageInput, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)

	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("could not read uploaded file")
	}

	f, err := header.Open()
	if err != nil {
		return nil, errors.New("could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("could not read uploaded file")
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &types.ImageInput{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
