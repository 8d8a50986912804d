package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxManifestSize bounds the body accepted by the annotate endpoint
const MaxManifestSize = 1 << 20

var ErrManifestTooLarge = errors.New("manifest too large")

func (s *Server) annotateManifest(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, MaxManifestSize)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody(
				fmt.Errorf("%w: limit %d bytes", ErrManifestTooLarge,
					tooLarge.Limit),
				http.StatusRequestEntityTooLarge,
			))
			return
		}
		writeBadRequest(c, err)
		return
	}

	res, err := s.annotator.Annotate(data)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
