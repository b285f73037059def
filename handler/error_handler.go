package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/binder"
	"github.com/dmitrymomot/paymybuddy/pkg/logger"
	"github.com/dmitrymomot/paymybuddy/pkg/requestid"
)

// ErrorPageParams contains data for rendering error pages
type ErrorPageParams struct {
	Error      string
	StatusCode int
	RequestID  string
	RetryURL   string
}

// ErrorToastParams contains data for rendering error toasts
type ErrorToastParams struct {
	Message   string
	Type      string // "error", "warning", "info"
	RequestID string
}

// ErrorHandlerConfig configures the default error handler
type ErrorHandlerConfig struct {
	// ErrorPage renders full error page for regular HTTP requests
	ErrorPage func(ErrorPageParams) templ.Component

	// ErrorToast renders toast notification for DataStar requests
	ErrorToast func(ErrorToastParams) templ.Component

	// ToastTarget specifies where to render toast notifications (default: "#toast-container")
	ToastTarget string

	// ToastMode specifies how to render toasts (default: PatchPrepend)
	ToastMode datastar.ElementPatchMode

	// LoginURL receives requests whose API token was rejected as invalid
	// (default: "/login"). The current path is passed in the "to" parameter.
	LoginURL string
}

// ErrorInfo contains classified error information
type ErrorInfo struct {
	StatusCode int
	Message    string
	Type       string
	LogLevel   slog.Level

	// SessionExpired is set when the API rejected the session token.
	SessionExpired bool
}

func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

func isServerError(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError
}

// determineErrorType maps HTTP status codes to error types for UI display
func determineErrorType(statusCode int) string {
	switch {
	case isClientError(statusCode):
		return "warning"
	case isServerError(statusCode):
		return "error"
	default:
		return "info"
	}
}

func determineLogLevel(statusCode int) slog.Level {
	if isClientError(statusCode) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

func setConfigDefaults(cfg ErrorHandlerConfig) ErrorHandlerConfig {
	if cfg.ToastTarget == "" {
		cfg.ToastTarget = "#toast-container"
	}
	if cfg.ToastMode == "" {
		cfg.ToastMode = PatchPrepend
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = "/login"
	}
	return cfg
}

func formatValidationErrors(validationErr ValidationError) string {
	var messages []string
	for field, fieldMessages := range validationErr {
		for _, msg := range fieldMessages {
			messages = append(messages, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	if len(messages) == 0 {
		return "Validation failed"
	}
	return strings.Join(messages, "; ")
}

// classifyError analyzes the error and returns structured error information
func classifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Message:    "An error occurred processing your request",
	}

	var (
		httpErr       HTTPError
		validationErr ValidationError
		denied        *apiclient.AccessDeniedError
		unhandled     *apiclient.UnhandledAPIError
	)

	switch {
	case errors.As(err, &validationErr):
		info.StatusCode = http.StatusBadRequest
		info.Message = formatValidationErrors(validationErr)

	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Message = httpErr.Key

	case errors.As(err, &denied):
		info.StatusCode = http.StatusForbidden
		info.Message = "Access denied"
		if denied.InvalidToken() {
			info.StatusCode = http.StatusUnauthorized
			info.Message = "Your session has expired"
			info.SessionExpired = true
		}

	case errors.As(err, &unhandled):
		info.Message = "The service rejected the request"

	case errors.Is(err, binder.ErrFailedToParseForm),
		errors.Is(err, binder.ErrFailedToParseQuery),
		errors.Is(err, binder.ErrFailedToParsePath),
		errors.Is(err, binder.ErrMissingContentType):
		info.StatusCode = http.StatusBadRequest
		info.Message = "Malformed request"

	case errors.Is(err, binder.ErrUnsupportedMediaType):
		info.StatusCode = http.StatusUnsupportedMediaType
		info.Message = "Unsupported media type"

	case errors.Is(err, apiclient.ErrClientException):
		info.StatusCode = http.StatusBadRequest
		info.Message = "The request was rejected"

	case errors.Is(err, apiclient.ErrTransport),
		errors.Is(err, apiclient.ErrServerException),
		errors.Is(err, apiclient.ErrInvalidJSON),
		errors.Is(err, apiclient.ErrUnsupportedResponse):
		info.StatusCode = http.StatusBadGateway
		info.Message = "The service is unavailable, please retry later"
	}

	info.Type = determineErrorType(info.StatusCode)
	info.LogLevel = determineLogLevel(info.StatusCode)

	return info
}

func logError(log *slog.Logger, ctx Context, err error, info ErrorInfo) {
	requestID := requestid.FromContext(ctx.Request().Context())

	log.LogAttrs(ctx.Request().Context(), info.LogLevel, "request error",
		logger.RequestID(requestID),
		logger.Error(err),
		slog.Int("status_code", info.StatusCode),
		slog.String("method", ctx.Request().Method),
		slog.String("path", ctx.Request().URL.Path),
		slog.Bool("is_datastar", IsDataStar(ctx.Request())),
		logger.Component("error_handler"),
	)
}

func renderDataStarResponse(ctx Context, cfg ErrorHandlerConfig, info ErrorInfo, requestID string, log *slog.Logger) {
	if cfg.ErrorToast == nil {
		log.Warn("no error toast component configured for DataStar request",
			logger.RequestID(requestID),
			logger.Component("error_handler"),
		)
		return
	}

	component := cfg.ErrorToast(ErrorToastParams{
		Message:   info.Message,
		Type:      info.Type,
		RequestID: requestID,
	})
	response := Templ(component, WithTarget(cfg.ToastTarget), WithPatchMode(cfg.ToastMode))

	// Don't set status code for SSE responses
	if renderErr := response.Render(ctx.ResponseWriter(), ctx.Request()); renderErr != nil {
		log.Error("failed to render error toast",
			logger.RequestID(requestID),
			logger.Error(renderErr),
			logger.Event("render_error_toast"),
		)
	}
}

func renderHTTPResponse(ctx Context, cfg ErrorHandlerConfig, info ErrorInfo, requestID string, log *slog.Logger) {
	if cfg.ErrorPage == nil {
		http.Error(ctx.ResponseWriter(), info.Message, info.StatusCode)
		return
	}

	component := cfg.ErrorPage(ErrorPageParams{
		Error:      info.Message,
		StatusCode: info.StatusCode,
		RequestID:  requestID,
		RetryURL:   ctx.Request().URL.Path,
	})

	if renderErr := TemplWithStatus(info.StatusCode, component).Render(ctx.ResponseWriter(), ctx.Request()); renderErr != nil {
		log.Error("failed to render error page",
			logger.RequestID(requestID),
			logger.Error(renderErr),
			logger.Event("render_error_page"),
		)
	}
}

// NewErrorHandler creates the default error handler that adapts to request type.
// For regular HTTP requests, it renders a full error page.
// For DataStar requests, it sends a toast notification.
// Requests whose API token turned out invalid are redirected to the login page.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler {
	cfg = setConfigDefaults(cfg)

	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		requestID := requestid.FromContext(ctx.Request().Context())
		info := classifyError(err)
		logError(log, ctx, err, info)

		if info.SessionExpired {
			if g := ctx.Guard(); g != nil {
				g.Deserialize(nil)
			}
			target := cfg.LoginURL + "?to=" + url.QueryEscape(ctx.Request().URL.RequestURI())
			if renderErr := Redirect(target).Render(ctx.ResponseWriter(), ctx.Request()); renderErr != nil {
				log.Error("failed to redirect to login",
					logger.RequestID(requestID),
					logger.Error(renderErr),
				)
			}
			return
		}

		if IsDataStar(ctx.Request()) {
			renderDataStarResponse(ctx, cfg, info, requestID, log)
		} else {
			renderHTTPResponse(ctx, cfg, info, requestID, log)
		}
	}
}
