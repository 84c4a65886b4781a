package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediclick/api/internal/analysis"
)

type ModelInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

type AnalysisBody struct {
	Content       string `json:"content"`
	Timestamp     string `json:"timestamp"`
	Query         string `json:"query"`
	ImageFilename string `json:"image_filename"`
}

type ErrorBody struct {
	Message string `json:"message"`
}

// Envelope is the body of every /upload_and_query response.
type Envelope struct {
	Success   bool          `json:"success"`
	ModelInfo *ModelInfo    `json:"model_info,omitempty"`
	Analysis  *AnalysisBody `json:"analysis,omitempty"`
	Error     *ErrorBody    `json:"error,omitempty"`
}

func SuccessEnvelope(info Info, res analysis.Result) Envelope {
	return Envelope{
		Success:   true,
		ModelInfo: &ModelInfo{Name: info.Service, Provider: info.Provider},
		Analysis: &AnalysisBody{
			Content:       res.Content,
			Timestamp:     res.Timestamp(),
			Query:         res.Query,
			ImageFilename: res.ImageFilename,
		},
	}
}

func FailureEnvelope(f *analysis.Failure) Envelope {
	return Envelope{Success: false, Error: &ErrorBody{Message: f.Message}}
}

// StatusFor maps a failure kind to the HTTP status reported to the client.
func StatusFor(f *analysis.Failure) int {
	if f.Kind == analysis.KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(c *gin.Context, code int, v any) {
	c.JSON(code, v)
}

func writeFailure(c *gin.Context, err error) {
	f := analysis.AsFailure(err)
	writeJSON(c, StatusFor(f), FailureEnvelope(f))
}
