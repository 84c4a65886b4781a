package handle

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mediclick/api/internal/analysis"
	"mediclick/api/internal/util"
)

// UploadAndQuery takes a multipart form with an "image" file and a "query"
// text field and answers with the model's analysis.
func (h *Handle) UploadAndQuery(c *gin.Context) {
	if h.opt.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opt.MaxUploadBytes)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		if isTooLarge(err) {
			h.log.Warn("upload rejected: too large", zap.Int64("limit", h.opt.MaxUploadBytes))
			writeFailure(c, analysis.Validation(fmt.Sprintf("Upload exceeds the %d byte limit", h.opt.MaxUploadBytes)))
			return
		}
		h.log.Info("upload rejected: no image", zap.Error(err))
		writeFailure(c, analysis.Validation(analysis.MsgNoImage))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.log.Error("failed to open uploaded file", zap.Error(err))
		writeFailure(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.log.Error("failed to read uploaded file", zap.Error(err))
		writeFailure(c, fmt.Errorf("read upload: %w", err))
		return
	}

	req := analysis.Request{
		Image: &analysis.Image{
			Data:     data,
			MIMEType: util.PickMIME(fh.Header.Get("Content-Type"), data),
			Filename: fh.Filename,
		},
		Query: c.PostForm("query"),
	}

	res, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		writeFailure(c, err)
		return
	}
	writeJSON(c, http.StatusOK, SuccessEnvelope(h.opt.Info, res))
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
