package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"tubequiz/internal/domain"
	"tubequiz/internal/dto"
	"tubequiz/internal/logger"
)

const internalErrorDetail = "Internal server error."

// ErrorHandler is a centralized error handling middleware
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logger := logger.Get()

		// Pipeline failures carry a user-displayable message
		var pipelineErr *domain.PipelineError
		if errors.As(err, &pipelineErr) {
			logger.Error("Quiz pipeline failed",
				zap.String("code", string(pipelineErr.Code)),
				zap.String("message", pipelineErr.Message),
				zap.String("path", c.Path()),
			)
			return c.Status(http.StatusInternalServerError).JSON(dto.ErrorDetailResponse{
				Detail: pipelineErr.Message,
				Code:   string(pipelineErr.Code),
			})
		}

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)
			detail := domainErr.Message
			if statusCode >= http.StatusInternalServerError {
				logger.Error("Domain error occurred",
					zap.String("code", string(domainErr.Code)),
					zap.String("message", domainErr.Message),
					zap.Error(domainErr.Err),
				)
				detail = internalErrorDetail
			} else {
				logger.Warn("Request rejected",
					zap.String("code", string(domainErr.Code)),
					zap.String("message", domainErr.Message),
					zap.Int("status", statusCode),
				)
			}
			return c.Status(statusCode).JSON(dto.ErrorDetailResponse{
				Detail: detail,
				Code:   string(domainErr.Code),
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			logger.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(dto.ErrorDetailResponse{Detail: fiberErr.Message})
		}

		logger.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(dto.ErrorDetailResponse{
			Detail: internalErrorDetail,
			Code:   string(domain.CodeInternal),
		})
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeQuizNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeInvalidVideoURL:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
