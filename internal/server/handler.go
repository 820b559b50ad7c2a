package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"wazivo/internal/errors"
	"wazivo/internal/observability"
	"wazivo/internal/pipeline"
	"wazivo/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// createAnalyzeHandler runs the pipeline for one submission under the
// request time budget
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.RequestTimeout)
			defer cancel()
		}

		tracer := om.Tracer("wazivo.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		requestID := requestIDFrom(ctx)
		logger := s.requestLogger(r)

		source, opts, err := s.parseSubmission(r)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			logger.LogError(err, "Rejected analysis request")
			s.writeError(w, r, err)
			return
		}

		span.SetAttributes(
			attribute.String("request.id", requestID),
			attribute.String("source.kind", string(source.Kind)),
			attribute.Int("source.size", len(source.Data)),
			attribute.Bool("skip_jobs", opts.SkipJobs),
		)
		logger.Info("Analysis request received",
			"source", source.Kind,
			"filename", source.Filename,
			"url", source.URL,
			"size", len(source.Data))

		resp, err := s.runner.Run(ctx, source, opts)
		if err != nil {
			err = budgetError(ctx, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, errors.Classify(err).Code)
			logger.LogError(err, "Analysis failed", "source", source.Kind)
			s.writeError(w, r, err)
			return
		}

		resp.RequestID = requestID
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.jobs", len(resp.JobOpportunities)),
			attribute.Bool("response.fallback_jobs", resp.JobSearchMeta.FallbackUsed),
		)

		writeJSON(w, http.StatusOK, resp)
	}
}

// budgetError turns a bare context failure into a classified timeout
func budgetError(ctx context.Context, err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "request exceeded its time budget", err)
	}
	return err
}

// parseSubmission accepts either a multipart upload (file or url field) or
// a JSON body {"type":"url","url":...}
func (s *Server) parseSubmission(r *http.Request) (types.CVSource, pipeline.Options, error) {
	opts := pipeline.Options{SkipJobs: parseBool(r.URL.Query().Get("skipJobs"))}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return types.CVSource{}, opts, invalidRequest("missing or malformed Content-Type", err)
	}

	switch mediaType {
	case "multipart/form-data":
		source, skipJobs, err := s.parseMultipart(r)
		opts.SkipJobs = opts.SkipJobs || skipJobs
		return source, opts, err
	case "application/json":
		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			return types.CVSource{}, opts, err
		}
		if err := s.validate.Struct(req); err != nil {
			return types.CVSource{}, opts, invalidRequest("invalid analysis request", err).
				WithRemediation(`Send {"type": "url", "url": "https://..."} or upload the file as multipart/form-data.`)
		}
		opts.SkipJobs = opts.SkipJobs || req.SkipJobs
		return types.URLSource(strings.TrimSpace(req.URL)), opts, nil
	default:
		return types.CVSource{}, opts, invalidRequest("unsupported Content-Type "+mediaType, nil).
			WithRemediation("Use multipart/form-data for uploads or application/json for URLs.")
	}
}

func (s *Server) parseMultipart(r *http.Request) (types.CVSource, bool, error) {
	if err := r.ParseMultipartForm(s.AppConfig.App.MaxFileSize); err != nil {
		return types.CVSource{}, false, bodyError(err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	skipJobs := parseBool(r.FormValue("skipJobs"))
	kind := strings.ToLower(strings.TrimSpace(r.FormValue("type")))

	file, header, fileErr := r.FormFile("file")
	if fileErr == nil {
		defer func() { _ = file.Close() }()
	}

	switch {
	case kind == string(types.SourceURL) || (kind == "" && fileErr != nil && r.FormValue("url") != ""):
		rawURL := strings.TrimSpace(r.FormValue("url"))
		if rawURL == "" {
			return types.CVSource{}, skipJobs, invalidRequest("url field is required", nil).
				WithRemediation("Provide the CV link in the url field.")
		}
		return types.URLSource(rawURL), skipJobs, nil
	case fileErr == nil:
		source, err := s.readUpload(file, header)
		return source, skipJobs, err
	default:
		return types.CVSource{}, skipJobs, invalidRequest("no file or url provided", fileErr).
			WithRemediation("Upload a file in the file field or send a URL.")
	}
}

func (s *Server) readUpload(file multipart.File, header *multipart.FileHeader) (types.CVSource, error) {
	limit := s.AppConfig.App.MaxFileSize
	if header.Size > limit {
		return types.CVSource{}, fileTooLarge(header.Size, limit)
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return types.CVSource{}, errors.NewIOError(errors.ErrCodeInvalidRequest, "failed to read uploaded file", err)
	}
	if int64(len(data)) > limit {
		return types.CVSource{}, fileTooLarge(int64(len(data)), limit)
	}

	return types.FileSource(data, header.Header.Get("Content-Type"), header.Filename), nil
}

func fileTooLarge(size, limit int64) error {
	return errors.NewValidationError(errors.ErrCodeFileTooLarge,
		fmt.Sprintf("upload is %d bytes, limit is %d", size, limit), nil).
		WithContext("size", size)
}

// bodyError classifies failures reading the request body
func bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
	}
	return invalidRequest("failed to read request body", err)
}

func invalidRequest(message string, cause error) *errors.AppError {
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, message, cause)
}

// parseJSONRequest parses a JSON request body into v
func parseJSONRequest(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return bodyError(err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return invalidRequest("failed to parse JSON", err).
			WithRemediation("The request body must be valid JSON.")
	}
	return nil
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}
