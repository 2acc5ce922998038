package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"

	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uint]*model.Message
	nextID   uint
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: map[uint]*model.Message{}, nextID: 1}
}

func (f *fakeMessageRepo) Get(ctx context.Context, param *model.GetMessagesParam, opts ...utils.DBOption) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Message, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMessageRepo) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMessageRepo) FindByMessageID(ctx context.Context, messageID string) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.MessageID == messageID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *model.Message, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	message.ID = f.nextID
	f.nextID++
	copied := *message
	f.messages[message.ID] = &copied
	return nil
}

func (f *fakeMessageRepo) Update(ctx context.Context, id uint, fields map[string]interface{}, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "is_read":
			m.IsRead = value.(bool)
		case "is_processed":
			m.IsProcessed = value.(bool)
		case "task_id":
			m.TaskID = value.(sql.NullInt64)
		}
	}
	return nil
}

func (f *fakeMessageRepo) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, id)
	return nil
}

type fakeUnitOfWork struct{}

func (f *fakeUnitOfWork) Begin() *gorm.DB  { return nil }
func (f *fakeUnitOfWork) Commit() error    { return nil }
func (f *fakeUnitOfWork) Rollback() error  { return nil }

func (f *fakeUnitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	return fn()
}

type fakeScheduler struct {
	mu      sync.Mutex
	added   []uint
	removed []uint
	updated []uint
}

func (f *fakeScheduler) Start(ctx context.Context) error    { return nil }
func (f *fakeScheduler) Shutdown(ctx context.Context) error { return nil }
func (f *fakeScheduler) IsRunning() bool                    { return true }

func (f *fakeScheduler) AddTask(ctx context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, task.ID)
	return nil
}

func (f *fakeScheduler) RemoveTask(ctx context.Context, taskID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, taskID)
}

func (f *fakeScheduler) UpdateTask(ctx context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, task.ID)
	return nil
}

func (f *fakeScheduler) RunTaskNow(ctx context.Context, taskID uint, trigger model.TriggerType) (*model.TaskLog, error) {
	return nil, nil
}

func (f *fakeScheduler) ScheduledJobs() []dto.ScheduledJob { return nil }

type taskServiceFixture struct {
	svc       TaskService
	taskRepo  *fakeTaskRepo
	logRepo   *fakeTaskLogRepo
	msgRepo   *fakeMessageRepo
	scheduler *fakeScheduler
}

func newTaskServiceFixture(t *testing.T) *taskServiceFixture {
	t.Helper()
	f := &taskServiceFixture{
		taskRepo:  newFakeTaskRepo(),
		logRepo:   newFakeTaskLogRepo(),
		msgRepo:   newFakeMessageRepo(),
		scheduler: &fakeScheduler{},
	}
	f.svc = NewTaskService(
		logger.NewNop(),
		goValidator.New(),
		f.taskRepo,
		f.logRepo,
		f.msgRepo,
		&fakeUnitOfWork{},
		f.scheduler,
		NewCronEvaluator(),
	)
	return f
}

func validCreateRequest() *dto.CreateTaskRequest {
	return &dto.CreateTaskRequest{
		Name:           "nightly-report",
		TaskType:       model.TaskTypeShell,
		CronExpression: "0 0 * * *",
		Config:         json.RawMessage(`{"command":"make report"}`),
	}
}

func TestTaskService_Create(t *testing.T) {
	f := newTaskServiceFixture(t)

	task, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.NotZero(t, task.ID)
	assert.True(t, task.IsActive)
	assert.True(t, task.NotifyOnFailure)
	assert.False(t, task.NotifyOnSuccess)
	assert.Equal(t, []uint{task.ID}, f.scheduler.added)
}

func TestTaskService_Create_Invalid(t *testing.T) {
	f := newTaskServiceFixture(t)

	tests := []struct {
		name   string
		mutate func(req *dto.CreateTaskRequest)
	}{
		{
			name:   "bad cron",
			mutate: func(req *dto.CreateTaskRequest) { req.CronExpression = "@hourly" },
		},
		{
			name:   "unknown type",
			mutate: func(req *dto.CreateTaskRequest) { req.TaskType = "ftp" },
		},
		{
			name:   "config missing required field",
			mutate: func(req *dto.CreateTaskRequest) { req.Config = json.RawMessage(`{}`) },
		},
		{
			name: "config wrong shape for type",
			mutate: func(req *dto.CreateTaskRequest) {
				req.TaskType = model.TaskTypeHTTP
				req.Config = json.RawMessage(`{"command":"ls"}`)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)
			_, err := f.svc.Create(context.Background(), req)
			assert.Error(t, err)
		})
	}

	assert.Empty(t, f.scheduler.added)
}

func TestTaskService_Create_InactiveStaysUnscheduled(t *testing.T) {
	f := newTaskServiceFixture(t)

	req := validCreateRequest()
	req.IsActive = utils.ToPointer(false)

	task, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, task.IsActive)

	// Registration still runs; the scheduler decides to skip inactive tasks.
	assert.Equal(t, []uint{task.ID}, f.scheduler.added)
}

func TestTaskService_Update(t *testing.T) {
	f := newTaskServiceFixture(t)

	task, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	updated, err := f.svc.Update(context.Background(), task.ID, &dto.UpdateTaskRequest{
		Name:           utils.ToPointer("weekly-report"),
		CronExpression: utils.ToPointer("0 0 * * 0"),
	})
	require.NoError(t, err)

	assert.Equal(t, "weekly-report", updated.Name)
	assert.Equal(t, "0 0 * * 0", updated.CronExpression)
	assert.Contains(t, f.scheduler.updated, task.ID)
}

func TestTaskService_Update_RejectsBadCron(t *testing.T) {
	f := newTaskServiceFixture(t)

	task, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), task.ID, &dto.UpdateTaskRequest{
		CronExpression: utils.ToPointer("bad"),
	})
	assert.ErrorIs(t, err, ErrInvalidCronExpression)

	stored, _ := f.svc.GetByID(context.Background(), task.ID)
	assert.Equal(t, "0 0 * * *", stored.CronExpression)
}

func TestTaskService_Update_NotFound(t *testing.T) {
	f := newTaskServiceFixture(t)

	_, err := f.svc.Update(context.Background(), 99, &dto.UpdateTaskRequest{})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_Delete(t *testing.T) {
	f := newTaskServiceFixture(t)

	task, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, f.logRepo.Create(context.Background(), &model.TaskLog{TaskID: task.ID, TaskName: task.Name}))

	require.NoError(t, f.svc.Delete(context.Background(), task.ID))

	_, err = f.svc.GetByID(context.Background(), task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Contains(t, f.scheduler.removed, task.ID)

	logs, _ := f.logRepo.Get(context.Background(), &model.GetTaskLogsParam{TaskID: &task.ID})
	assert.Empty(t, logs)
}

func TestTaskService_Toggle(t *testing.T) {
	f := newTaskServiceFixture(t)

	task, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.True(t, task.IsActive)

	toggled, err := f.svc.Toggle(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	toggled, err = f.svc.Toggle(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestTaskService_ValidateCron(t *testing.T) {
	f := newTaskServiceFixture(t)

	resp := f.svc.ValidateCron(context.Background(), "*/10 * * * *")
	assert.True(t, resp.Valid)
	assert.Len(t, resp.NextRuns, 5)
	assert.Empty(t, resp.Error)

	resp = f.svc.ValidateCron(context.Background(), "every tuesday")
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, resp.NextRuns)
}

func TestTaskService_CreateFromMessage(t *testing.T) {
	f := newTaskServiceFixture(t)

	message := &model.Message{Subject: "please schedule the report", MessageID: "<abc@mail>"}
	require.NoError(t, f.msgRepo.Create(context.Background(), message))

	req := &dto.CreateTaskFromMessageRequest{CreateTaskRequest: *validCreateRequest()}
	task, err := f.svc.CreateFromMessage(context.Background(), message.ID, req)
	require.NoError(t, err)
	assert.NotZero(t, task.ID)

	stored, _ := f.msgRepo.FindByID(context.Background(), message.ID)
	assert.True(t, stored.IsProcessed)
	assert.True(t, stored.IsRead)
	require.True(t, stored.TaskID.Valid)
	assert.Equal(t, int64(task.ID), stored.TaskID.Int64)
}

func TestTaskService_CreateFromMessage_NotFound(t *testing.T) {
	f := newTaskServiceFixture(t)

	req := &dto.CreateTaskFromMessageRequest{CreateTaskRequest: *validCreateRequest()}
	_, err := f.svc.CreateFromMessage(context.Background(), 7, req)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
