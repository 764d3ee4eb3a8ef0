package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"marketpulse/internal/domain/models"
	"marketpulse/internal/domain/repository"
	"marketpulse/internal/usecase"
	xhttp "marketpulse/pkg/http"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/util"
)

// DashboardHandler serves the dashboard API. Data read endpoints return bare
// JSON shapes consumed directly by the UI; task mutations use the standard
// response envelope.
type DashboardHandler struct {
	log        *logger.Logger
	aggregator *usecase.Aggregator
	decisions  *usecase.Synthesizer
	briefs     *usecase.BriefService
	tasks      repository.TaskStore

	stream *StreamHandler
}

// NewDashboardHandler wires the API surface. tasks may be nil, which
// disables the task endpoints.
func NewDashboardHandler(
	log *logger.Logger,
	aggregator *usecase.Aggregator,
	decisions *usecase.Synthesizer,
	briefs *usecase.BriefService,
	tasks repository.TaskStore,
) *DashboardHandler {
	return &DashboardHandler{
		log:        log,
		aggregator: aggregator,
		decisions:  decisions,
		briefs:     briefs,
		tasks:      tasks,
		stream:     NewStreamHandler(log, aggregator),
	}
}

// RegisterRoutes implements http.Handler.
func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")

	g.GET("/health", h.Health)
	g.GET("/headlines", h.Headlines)
	g.GET("/pulse", h.Pulse)
	g.GET("/decision", h.Decision)
	g.GET("/brief/pack", h.BriefPack)
	g.POST("/brief/generate", h.GenerateBrief)
	g.POST("/refresh", h.Refresh)
	g.GET("/stream", h.stream.Serve)

	if h.tasks != nil {
		g.GET("/tasks", h.ListTasks)
		g.POST("/tasks", h.CreateTask)
		g.POST("/tasks/:id/done", h.CompleteTask)
	}
}

// Health reports liveness and the age of the current snapshot.
func (h *DashboardHandler) Health(c echo.Context) error {
	snap := h.aggregator.Current()
	body := map[string]interface{}{
		"status":   "ok",
		"snapshot": nil,
	}
	if snap != nil {
		body["snapshot"] = map[string]interface{}{
			"version":  snap.Version,
			"taken_at": snap.TakenAt,
		}
	}
	return c.JSON(http.StatusOK, body)
}

// Headlines returns the deduplicated headline window, newest first. An
// optional ?limit caps the response.
func (h *DashboardHandler) Headlines(c echo.Context) error {
	snap := h.aggregator.Current()
	if snap == nil {
		return c.JSON(http.StatusOK, []models.Headline{})
	}

	headlines := snap.Headlines
	if limit := util.ParseIntDefault(c.QueryParam("limit"), 0); limit > 0 && limit < len(headlines) {
		headlines = headlines[:limit]
	}
	return c.JSON(http.StatusOK, headlines)
}

// Pulse returns the current quote set. Unavailable symbols carry null
// value and pct.
func (h *DashboardHandler) Pulse(c echo.Context) error {
	snap := h.aggregator.Current()
	if snap == nil {
		return c.JSON(http.StatusOK, []models.Quote{})
	}
	return c.JSON(http.StatusOK, snap.Quotes)
}

// Decision returns the synthesized report, or an error body the UI renders
// as "engine unavailable". Both cases are HTTP 200; the condition is a data
// state, not a transport fault.
func (h *DashboardHandler) Decision(c echo.Context) error {
	prev, cur := h.aggregator.Pair()
	report, err := h.decisions.Synthesize(prev, cur)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

// BriefPack returns the preformatted pack built from the current snapshot
// and open tasks.
func (h *DashboardHandler) BriefPack(c echo.Context) error {
	pack := h.briefs.BuildPack(c.Request().Context(), h.aggregator.Current())
	return c.JSON(http.StatusOK, pack)
}

type generateBriefRequest struct {
	Pack string `json:"pack" validate:"required"`
}

// GenerateBrief turns a caller-supplied pack into prose. Always succeeds
// with a non-empty brief; summarizer failures surface as the fallback text,
// never as an error status.
func (h *DashboardHandler) GenerateBrief(c echo.Context) error {
	var req generateBriefRequest
	if errs := xhttp.ReadAndValidateRequest(c, &req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	brief := h.briefs.Generate(c.Request().Context(), req.Pack)
	return c.JSON(http.StatusOK, map[string]string{"brief": brief})
}

// Refresh forces a refresh cycle out of band of the background ticker.
func (h *DashboardHandler) Refresh(c echo.Context) error {
	snap, err := h.aggregator.Refresh(c.Request().Context())
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("refresh failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"version":  snap.Version,
		"taken_at": snap.TakenAt,
	})
}

// ListTasks returns open tasks, oldest first.
func (h *DashboardHandler) ListTasks(c echo.Context) error {
	tasks, err := h.tasks.Open(c.Request().Context())
	if err != nil {
		h.log.Error("list tasks failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not list tasks").WithError(err))
	}
	return xhttp.SuccessResponse(c, tasks)
}

type createTaskRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// CreateTask adds an open task.
func (h *DashboardHandler) CreateTask(c echo.Context) error {
	var req createTaskRequest
	if errs := xhttp.ReadAndValidateRequest(c, &req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	task, err := h.tasks.Add(c.Request().Context(), req.Title)
	if err != nil {
		h.log.Error("create task failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not create task").WithError(err))
	}
	return xhttp.CreatedResponse(c, task)
}

// CompleteTask marks a task done.
func (h *DashboardHandler) CompleteTask(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid task id"))
	}

	if err := h.tasks.MarkDone(c.Request().Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("task not found"))
		}
		h.log.Error("complete task failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not complete task").WithError(err))
	}
	return xhttp.NoContentResponse(c)
}
