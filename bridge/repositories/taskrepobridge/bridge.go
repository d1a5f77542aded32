// Package taskrepobridge exposes the task repository over HTTP.
package taskrepobridge

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/jrazmi/taskhub/bridge/scaffolding/errs"
	"github.com/jrazmi/taskhub/bridge/scaffolding/mid"
	"github.com/jrazmi/taskhub/core/repositories/taskrepo"
	"github.com/jrazmi/taskhub/core/taskengine"
	"github.com/jrazmi/taskhub/infrastructure/web"
)

// recentTaskLimit caps the recent tasks slice on dashboard payloads.
const recentTaskLimit = 10

type bridge struct {
	taskRepository *taskrepo.Repository
}

func newBridge(taskRepository *taskrepo.Repository) *bridge {
	return &bridge{
		taskRepository: taskRepository,
	}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	caller, err := mid.GetCaller(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var filter taskrepo.TaskFilter
	if !caller.IsAdmin() {
		filter.AssignedTo = &caller.UserID
	}
	if raw := web.QueryParam(r, "status"); raw != "" {
		status, err := taskengine.ParseStatus(raw)
		if err != nil {
			return errs.Newf(errs.InvalidArgument, "status: %s", err)
		}
		filter.Status = &status
	}

	tasks, err := b.taskRepository.List(ctx, filter)
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponse(AppTaskList{
		Tasks: MarshalListToBridge(tasks, time.Now().UTC()),
	})
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	caller, err := mid.GetCaller(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	task, err := b.taskRepository.GetByID(ctx, web.Param(r, "task_id"))
	if err != nil {
		return toAppError(err)
	}
	if !canAccess(caller, task) {
		return errs.Newf(errs.PermissionDenied, "not assigned to this task")
	}

	return web.NewJSONResponse(MarshalToBridge(task, time.Now().UTC()))
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input CreateTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	task, err := b.taskRepository.Create(ctx, MarshalCreateToRepository(input))
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponseWithStatus(MarshalToBridge(task, time.Now().UTC()), http.StatusCreated)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	caller, err := mid.GetCaller(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input UpdateTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	taskID := web.Param(r, "task_id")
	if resp := b.checkAccess(ctx, caller, taskID); resp != nil {
		return resp
	}

	task, err := b.taskRepository.Update(ctx, taskID, MarshalUpdateToRepository(input))
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponse(MarshalToBridge(task, time.Now().UTC()))
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	if err := b.taskRepository.Delete(ctx, web.Param(r, "task_id")); err != nil {
		return toAppError(err)
	}
	return web.NewNoResponse()
}

func (b *bridge) httpUpdateStatus(ctx context.Context, r *http.Request) web.Encoder {
	caller, err := mid.GetCaller(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input UpdateStatusInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	taskID := web.Param(r, "task_id")
	if resp := b.checkAccess(ctx, caller, taskID); resp != nil {
		return resp
	}

	status, _ := taskengine.ParseStatus(input.Status)
	task, err := b.taskRepository.UpdateStatus(ctx, taskID, status, parseToken(input.UpdatedAt))
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponse(MarshalToBridge(task, time.Now().UTC()))
}

func (b *bridge) httpUpdateChecklist(ctx context.Context, r *http.Request) web.Encoder {
	caller, err := mid.GetCaller(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input UpdateChecklistInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	taskID := web.Param(r, "task_id")
	if resp := b.checkAccess(ctx, caller, taskID); resp != nil {
		return resp
	}

	task, err := b.taskRepository.UpdateChecklist(ctx, taskID,
		marshalChecklistToCore(input.TodoChecklist), parseToken(input.UpdatedAt))
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponse(MarshalToBridge(task, time.Now().UTC()))
}

func (b *bridge) httpDashboard(ctx context.Context, r *http.Request) web.Encoder {
	data, err := b.taskRepository.Dashboard(ctx, taskrepo.TaskFilter{}, time.Now().UTC(), recentTaskLimit)
	if err != nil {
		return toAppError(err)
	}
	return web.NewJSONResponse(marshalDashboard(data))
}

func (b *bridge) httpUserDashboard(ctx context.Context, r *http.Request) web.Encoder {
	caller, err := mid.GetCaller(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	filter := taskrepo.TaskFilter{AssignedTo: &caller.UserID}
	data, err := b.taskRepository.Dashboard(ctx, filter, time.Now().UTC(), recentTaskLimit)
	if err != nil {
		return toAppError(err)
	}
	return web.NewJSONResponse(marshalDashboard(data))
}

// checkAccess loads the task and verifies the caller may act on it.
// It returns a non-nil Encoder when the request must stop.
func (b *bridge) checkAccess(ctx context.Context, caller mid.Caller, taskID string) web.Encoder {
	task, err := b.taskRepository.GetByID(ctx, taskID)
	if err != nil {
		return toAppError(err)
	}
	if !canAccess(caller, task) {
		return errs.Newf(errs.PermissionDenied, "not assigned to this task")
	}
	return nil
}

func canAccess(caller mid.Caller, task taskrepo.Task) bool {
	return caller.IsAdmin() || slices.Contains(task.AssignedTo, caller.UserID)
}

// AppDashboard is the wire form of a dashboard payload.
type AppDashboard struct {
	Statistics  taskengine.Statistics `json:"statistics"`
	Charts      taskengine.Charts     `json:"charts"`
	RecentTasks []AppTask             `json:"recentTasks"`
}

func marshalDashboard(data taskrepo.DashboardData) AppDashboard {
	return AppDashboard{
		Statistics:  data.Statistics,
		Charts:      data.Charts,
		RecentTasks: MarshalListToBridge(data.RecentTasks, time.Now().UTC()),
	}
}

// toAppError maps repository and engine errors onto app error codes.
func toAppError(err error) *errs.Error {
	switch {
	case errors.Is(err, taskrepo.ErrNotFound):
		return errs.New(errs.NotFound, err)
	case errors.Is(err, taskrepo.ErrConflict):
		return errs.New(errs.Conflict, err)
	case errors.Is(err, taskrepo.ErrTitleRequired),
		errors.Is(err, taskrepo.ErrNoAssignees),
		errors.Is(err, taskengine.ErrInvalidStatus),
		errors.Is(err, taskengine.ErrInvalidPriority),
		errors.Is(err, taskengine.ErrEmptyText),
		errors.Is(err, taskengine.ErrChecklistIncomplete):
		return errs.New(errs.InvalidArgument, err)
	default:
		return errs.New(errs.Internal, err)
	}
}
