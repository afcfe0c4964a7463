package handler

import (
	"bytes"
	"net/http"
	"time"

	"tracker/internal/delivery/api/response"
	deliverycontext "tracker/internal/delivery/context"
	"tracker/internal/domain/entity"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type ClientRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address"`
	Note     *string `json:"note"`
	Currency *string `json:"currency" validate:"omitempty,len=3"`
}

type TagRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=50"`
	Color       *string `json:"color" validate:"omitempty,max=20"`
	Description *string `json:"description"`
}

// ProjectRequest names its client by free text; a blank name clears it.
type ProjectRequest struct {
	Name       *string      `json:"name" validate:"omitempty,max=200"`
	ClientName *string      `json:"client_name"`
	Status     *string      `json:"status" validate:"omitempty,max=50"`
	Progress   *int         `json:"progress" validate:"omitempty,min=0,max=100"`
	TagIDs     *[]uuid.UUID `json:"tag_ids"`
}

type TaskRequest struct {
	ProjectID  *uuid.UUID `json:"project"`
	Title      *string    `json:"title" validate:"omitempty,max=200"`
	Status     *string    `json:"status"`
	AssignedTo *string    `json:"assigned_to"`
}

type TimeEntryRequest struct {
	ProjectID   *uuid.UUID `json:"project"`
	Description *string    `json:"description"`
	StartTime   *string    `json:"start_time"`
	EndTime     *string    `json:"end_time"`
	Duration    *int       `json:"duration"`
	Date        *Date      `json:"date"`
	Billable    *bool      `json:"billable"`
	Type        *string    `json:"type"`
}

type PomodoroRequest struct {
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Duration      *int       `json:"duration"`
	BreakDuration *int       `json:"break_duration"`
	Cycles        *int       `json:"cycles"`
	Notes         *string    `json:"notes"`
}

// WorkspaceHandlerParams holds dependencies for WorkspaceHandler, injected by Fx.
type WorkspaceHandlerParams struct {
	fx.In

	ClientUC    usecase.ClientUsecase
	TagUC       usecase.TagUsecase
	ProjectUC   usecase.ProjectUsecase
	TaskUC      usecase.TaskUsecase
	TimeEntryUC usecase.TimeEntryUsecase
	PomodoroUC  usecase.PomodoroUsecase
}

// WorkspaceHandler serves every owner-scoped resource under /api/v1.
type WorkspaceHandler struct {
	clients   *crudRoutes[entity.Client, usecase.ClientInput, ClientRequest, ClientResponse]
	tags      *crudRoutes[entity.Tag, usecase.TagInput, TagRequest, TagResponse]
	projects  *crudRoutes[entity.Project, usecase.ProjectInput, ProjectRequest, ProjectResponse]
	tasks     *crudRoutes[entity.Task, usecase.TaskInput, TaskRequest, TaskResponse]
	entries   *crudRoutes[entity.TimeEntry, usecase.TimeEntryInput, TimeEntryRequest, TimeEntryResponse]
	pomodoros *crudRoutes[entity.PomodoroSession, usecase.PomodoroInput, PomodoroRequest, PomodoroResponse]

	projectUC usecase.ProjectUsecase
	taskUC    usecase.TaskUsecase
	entryUC   usecase.TimeEntryUsecase
}

func NewWorkspaceHandler(params WorkspaceHandlerParams) *WorkspaceHandler {
	return &WorkspaceHandler{
		clients: &crudRoutes[entity.Client, usecase.ClientInput, ClientRequest, ClientResponse]{
			subject: "client", uc: params.ClientUC, input: clientInput, view: newClientResponse,
		},
		tags: &crudRoutes[entity.Tag, usecase.TagInput, TagRequest, TagResponse]{
			subject: "tag", uc: params.TagUC, input: tagInput, view: newTagResponse,
		},
		projects: &crudRoutes[entity.Project, usecase.ProjectInput, ProjectRequest, ProjectResponse]{
			subject: "project", uc: params.ProjectUC, input: projectInput, view: newProjectResponse,
		},
		tasks: &crudRoutes[entity.Task, usecase.TaskInput, TaskRequest, TaskResponse]{
			subject: "task", uc: params.TaskUC, input: taskInput, view: newTaskResponse,
		},
		entries: &crudRoutes[entity.TimeEntry, usecase.TimeEntryInput, TimeEntryRequest, TimeEntryResponse]{
			subject: "time entry", uc: params.TimeEntryUC, input: timeEntryInput, view: newTimeEntryResponse,
		},
		pomodoros: &crudRoutes[entity.PomodoroSession, usecase.PomodoroInput, PomodoroRequest, PomodoroResponse]{
			subject: "pomodoro session", uc: params.PomodoroUC, input: pomodoroInput, view: newPomodoroResponse,
		},
		projectUC: params.ProjectUC,
		taskUC:    params.TaskUC,
		entryUC:   params.TimeEntryUC,
	}
}

func clientInput(r *ClientRequest) *usecase.ClientInput {
	return &usecase.ClientInput{Name: r.Name, Email: r.Email, Address: r.Address, Note: r.Note, Currency: r.Currency}
}

func tagInput(r *TagRequest) *usecase.TagInput {
	return &usecase.TagInput{Name: r.Name, Color: r.Color, Description: r.Description}
}

func projectInput(r *ProjectRequest) *usecase.ProjectInput {
	return &usecase.ProjectInput{
		Name:       r.Name,
		ClientName: r.ClientName,
		Status:     r.Status,
		Progress:   r.Progress,
		TagIDs:     r.TagIDs,
	}
}

func taskInput(r *TaskRequest) *usecase.TaskInput {
	in := &usecase.TaskInput{ProjectID: r.ProjectID, Title: r.Title, AssignedTo: r.AssignedTo}
	if r.Status != nil {
		status := entity.TaskStatus(*r.Status)
		in.Status = &status
	}

	return in
}

func timeEntryInput(r *TimeEntryRequest) *usecase.TimeEntryInput {
	in := &usecase.TimeEntryInput{
		ProjectID:   r.ProjectID,
		Description: r.Description,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Duration:    r.Duration,
		Billable:    r.Billable,
	}
	if r.Date != nil && !r.Date.IsZero() {
		in.Date = &r.Date.Time
	}
	if r.Type != nil {
		entryType := entity.TimeEntryType(*r.Type)
		in.Type = &entryType
	}

	return in
}

func pomodoroInput(r *PomodoroRequest) *usecase.PomodoroInput {
	return &usecase.PomodoroInput{
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Duration:      r.Duration,
		BreakDuration: r.BreakDuration,
		Cycles:        r.Cycles,
		Notes:         r.Notes,
	}
}

// RegisterRoutes mounts every workspace resource on the /api/v1 group.
func (h *WorkspaceHandler) RegisterRoutes(g *echo.Group, optional, required echo.MiddlewareFunc) {
	// Static segments win over :id in echo's router.
	g.GET("/projects/completed-count", h.CompletedProjects, required)
	g.GET("/tasks/completed-count", h.CompletedTasks, required)
	g.GET("/time-entries/export", h.ExportTimeEntries, required)

	h.clients.mount(g.Group("/clients"), optional, required, nil)
	h.tags.mount(g.Group("/tags"), optional, required, nil)
	h.projects.mount(g.Group("/projects"), optional, required, nil)
	h.tasks.mount(g.Group("/tasks"), optional, required, nil)
	h.entries.mount(g.Group("/time-entries"), optional, required, h.ListTimeEntries)
	h.pomodoros.mount(g.Group("/pomodoro-sessions"), optional, required, nil)
}

type CompletedProjectsResponse struct {
	CompletedProjects int64 `json:"completed_projects"`
}

type CompletedTasksResponse struct {
	CompletedTasks int64 `json:"completed_tasks"`
}

func (h *WorkspaceHandler) CompletedProjects(c echo.Context) error {
	between, err := createdBetween(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	count, err := h.projectUC.CountCompleted(c.Request().Context(), deliverycontext.GetCaller(c), between)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, CompletedProjectsResponse{CompletedProjects: count})
}

func (h *WorkspaceHandler) CompletedTasks(c echo.Context) error {
	between, err := createdBetween(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	count, err := h.taskUC.CountCompleted(c.Request().Context(), deliverycontext.GetCaller(c), between)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, CompletedTasksResponse{CompletedTasks: count})
}

// ListTimeEntries honors ?type=regular|pomodoro.
func (h *WorkspaceHandler) ListTimeEntries(c echo.Context) error {
	entries, err := h.entryUC.ListByType(c.Request().Context(), deliverycontext.GetCaller(c), entity.TimeEntryType(c.QueryParam("type")))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapAll(entries, newTimeEntryResponse))
}

// ExportTimeEntries sends the caller's entries as a workbook attachment.
func (h *WorkspaceHandler) ExportTimeEntries(c echo.Context) error {
	var buf bytes.Buffer
	contentType, err := h.entryUC.Export(c.Request().Context(), deliverycontext.GetCaller(c), entity.TimeEntryType(c.QueryParam("type")), &buf)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="time_entries.xlsx"`)

	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
