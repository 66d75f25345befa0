package processor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUploadSweeper мок для UploadSweeperInterface
type MockUploadSweeper struct {
	mock.Mock
	runs atomic.Int32
}

func (m *MockUploadSweeper) Sweep(ctx context.Context) (int, error) {
	m.runs.Add(1)
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// ===================== NewCronScheduler Tests =====================

func TestNewCronScheduler(t *testing.T) {
	// Arrange
	sweeper := new(MockUploadSweeper)

	// Act
	scheduler := NewCronScheduler(sweeper)

	// Assert
	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, sweeper, scheduler.sweeper)
}

// ===================== Start Tests =====================

func TestCronScheduler_Start_Success(t *testing.T) {
	// Arrange
	sweeper := new(MockUploadSweeper)
	scheduler := NewCronScheduler(sweeper)

	// Initial sweep при старте
	sweeper.On("Sweep", mock.Anything).Return(0, nil)

	// Act
	err := scheduler.Start(context.Background(), "0 3 * * *")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	scheduler.Stop()
	sweeper.AssertExpectations(t)
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	sweeper := new(MockUploadSweeper)
	scheduler := NewCronScheduler(sweeper)

	err := scheduler.Start(context.Background(), "invalid cron expression")

	assert.Error(t, err)
	sweeper.AssertNotCalled(t, "Sweep", mock.Anything)
}

func TestCronScheduler_Start_InitialSweepError_ContinuesWork(t *testing.T) {
	sweeper := new(MockUploadSweeper)
	scheduler := NewCronScheduler(sweeper)

	sweeper.On("Sweep", mock.Anything).Return(0, errors.New("bucket unavailable"))

	err := scheduler.Start(context.Background(), "0 3 * * *")

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	scheduler.Stop()
}

func TestCronScheduler_Start_DoesNotWaitForInitialSweep(t *testing.T) {
	sweeper := new(MockUploadSweeper)
	scheduler := NewCronScheduler(sweeper)

	release := make(chan struct{})
	sweeper.On("Sweep", mock.Anything).Run(func(mock.Arguments) {
		<-release
	}).Return(0, nil)

	started := make(chan error, 1)
	go func() {
		started <- scheduler.Start(context.Background(), "0 3 * * *")
	}()

	select {
	case err := <-started:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start blocked on the initial sweep")
	}

	close(release)
	scheduler.Stop()
	assert.Equal(t, int32(1), sweeper.runs.Load())
}

func TestCronScheduler_GetEntries_Empty(t *testing.T) {
	scheduler := NewCronScheduler(new(MockUploadSweeper))

	assert.Empty(t, scheduler.GetEntries())
}

// ===================== Cron Job Execution Tests =====================

func TestCronScheduler_JobExecution(t *testing.T) {
	sweeper := new(MockUploadSweeper)
	scheduler := NewCronScheduler(sweeper)

	sweeper.On("Sweep", mock.Anything).Return(2, nil)

	// @every для быстрого теста
	err := scheduler.Start(context.Background(), "@every 100ms")
	assert.NoError(t, err)

	time.Sleep(350 * time.Millisecond)
	scheduler.Stop()

	// initial + минимум один запуск по расписанию
	assert.GreaterOrEqual(t, int(sweeper.runs.Load()), 2)
}

func TestCronScheduler_JobExecution_WithError(t *testing.T) {
	sweeper := new(MockUploadSweeper)
	scheduler := NewCronScheduler(sweeper)

	sweeper.On("Sweep", mock.Anything).Return(0, errors.New("list failed"))

	err := scheduler.Start(context.Background(), "@every 100ms")
	assert.NoError(t, err)

	time.Sleep(350 * time.Millisecond)
	scheduler.Stop()

	assert.GreaterOrEqual(t, int(sweeper.runs.Load()), 2)
}
