package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"tubequiz/internal/dto"
	"tubequiz/internal/logger"
	"tubequiz/internal/middleware"
	"tubequiz/internal/service"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// RegisterRoutes mounts the quiz endpoints on router.
func (h *QuizHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/quizzes", h.ListQuizzes)
	router.Post("/quizzes", h.CreateQuiz)
	router.Get("/quizzes/:id", middleware.ValidateQuizID(), h.GetQuiz)
	router.Patch("/quizzes/:id", middleware.ValidateQuizID(), h.UpdateQuiz)
	router.Delete("/quizzes/:id", middleware.ValidateQuizID(), h.DeleteQuiz)
}

// CreateQuiz godoc
// @Summary Generate a quiz from a YouTube video
// @Description Downloads the video's audio, transcribes it and asks the model for a 10-question quiz.
// @Description Returns 200 with the stored quiz when one already exists for the URL.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "YouTube video URL"
// @Success 201 {object} dto.QuizResponse
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorDetailResponse
// @Failure 500 {object} dto.ErrorDetailResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Warn("Invalid create quiz body", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}

	quiz, created, err := h.service.CreateQuiz(c.UserContext(), req.URL)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.NewQuizResponse(quiz))
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description Returns every stored quiz, newest first
// @Tags quiz
// @Produce json
// @Success 200 {array} dto.QuizResponse
// @Failure 500 {object} dto.ErrorDetailResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.service.ListQuizzes(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]*dto.QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		resp = append(resp, dto.NewQuizResponse(quiz))
	}
	return c.JSON(resp)
}

// GetQuiz godoc
// @Summary Get a quiz
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID (ULID)"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} dto.ErrorDetailResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.service.GetQuiz(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuizResponse(quiz))
}

// UpdateQuiz godoc
// @Summary Edit a quiz
// @Description Changes the title and/or description. Any other field is rejected.
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID (ULID)"
// @Param request body dto.UpdateQuizRequest true "Fields to change"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorDetailResponse
// @Failure 404 {object} dto.ErrorDetailResponse
// @Router /quizzes/{id} [patch]
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	update, err := dto.DecodeUpdateQuizRequest(c.Body())
	if err != nil {
		return err
	}
	quiz, err := h.service.UpdateQuiz(c.UserContext(), c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuizResponse(quiz))
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Tags quiz
// @Param id path string true "Quiz ID (ULID)"
// @Success 204
// @Failure 404 {object} dto.ErrorDetailResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.service.DeleteQuiz(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
