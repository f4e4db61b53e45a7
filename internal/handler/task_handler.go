package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/service"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

// TaskHandler serves task mutations and the task views.
type TaskHandler struct {
	tasks      service.TaskService
	visibility service.VisibilityService
	logger     zerolog.Logger
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(tasks service.TaskService, visibility service.VisibilityService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:      tasks,
		visibility: visibility,
		logger:     logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register attaches task routes to the router group.
func (h *TaskHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/mine", h.mine)
	router.Get("/:id", h.detail)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

// RegisterClassRoutes attaches the class-scoped task routes to the classes group.
func (h *TaskHandler) RegisterClassRoutes(router fiber.Router) {
	router.Get("/:classId/tasks", h.listClass)
	router.Post("/:classId/tasks", h.createInClass)
}

func (h *TaskHandler) create(c *fiber.Ctx) error {
	return h.createTask(c, nil)
}

func (h *TaskHandler) createInClass(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return h.createTask(c, &classID)
}

func (h *TaskHandler) createTask(c *fiber.Ctx, classHint *uint) error {
	var payload dto.TaskCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	task, err := h.tasks.Create(c.UserContext(), actorFromContext(c), classHint, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create task")
	}

	return utils.Created(c, "task created", task)
}

func (h *TaskHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TaskUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	task, err := h.tasks.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update task")
	}

	return utils.SendSuccess(c, "task updated", task)
}

func (h *TaskHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.tasks.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete task")
	}

	return utils.SendSuccess(c, "task deleted", nil)
}

func (h *TaskHandler) listClass(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	tasks, err := h.visibility.ListClassTasks(c.UserContext(), actorFromContext(c), classID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list class tasks")
	}

	return utils.SendSuccess(c, "class tasks retrieved", tasks)
}

func (h *TaskHandler) mine(c *fiber.Ctx) error {
	tasks, err := h.visibility.ListMyTasks(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list tasks")
	}

	return utils.SendSuccess(c, "tasks retrieved", tasks)
}

func (h *TaskHandler) detail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	classID, err := parseOptionalUintQuery(c, "class_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	detail, err := h.visibility.TaskDetail(c.UserContext(), actorFromContext(c), id, classID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load task")
	}

	return utils.SendSuccess(c, "task retrieved", detail)
}
