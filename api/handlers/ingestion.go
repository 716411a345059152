package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	api_errors "github.com/customeros/mailsift/api/errors"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/tracing"
)

type IngestionHandler struct {
	ingestion interfaces.IngestionService
}

func NewIngestionHandler(ingestion interfaces.IngestionService) *IngestionHandler {
	return &IngestionHandler{ingestion: ingestion}
}

// RunIngestion triggers a synchronous ingestion run for one user. The run
// report is returned whatever the outcome; the status reflects it.
func (h *IngestionHandler) RunIngestion() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IngestionHandler.RunIngestion")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		report := h.ingestion.RunIngestion(ctx, c.Param("userId"))

		status := http.StatusOK
		switch {
		case report.ReauthorizationRequired:
			status = http.StatusUnauthorized
		case !report.Success && report.TotalMessages == 0:
			status = http.StatusBadGateway
		}
		c.JSON(status, report)
	}
}

func (h *IngestionHandler) UserReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IngestionHandler.UserReport")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		report, err := h.ingestion.UserReport(ctx, c.Param("userId"))
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(api_errors.StatusFor(err), api_errors.NewErrorResponse(err))
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func (h *IngestionHandler) Reclassify() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IngestionHandler.Reclassify")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		classification, err := h.ingestion.Reclassify(ctx, c.Param("id"))
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(api_errors.StatusFor(err), api_errors.NewErrorResponse(err))
			return
		}
		c.JSON(http.StatusOK, classification)
	}
}

func (h *IngestionHandler) SweepStaging() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IngestionHandler.SweepStaging")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.ingestion.SweepStaging(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(api_errors.StatusFor(err), api_errors.NewErrorResponse(err))
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// AttachmentContent returns the durable copy of a promoted attachment.
func (h *IngestionHandler) AttachmentContent() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IngestionHandler.AttachmentContent")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		attachment, data, err := h.ingestion.AttachmentContent(ctx, c.Param("id"))
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(api_errors.StatusFor(err), api_errors.NewErrorResponse(err))
			return
		}

		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
		c.Data(http.StatusOK, contentType, data)
	}
}
