package batch

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	xlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/immune-gmbh/hwdb/pkg/storage"
	"github.com/immune-gmbh/hwdb/pkg/storage/models"
	"github.com/immune-gmbh/hwdb/pkg/storage/storagetest"
)

func newTestContext(t testing.TB) (context.Context, *logrustest.Hook) {
	l, hook := logrustest.NewNullLogger()
	l.SetLevel(logrus.TraceLevel)
	ctx := logger.CtxWithLogger(context.Background(), xlogrus.New(l).WithLevel(logger.LevelTrace))
	return ctx, hook
}

func messages(hook *logrustest.Hook, level logrus.Level) []string {
	var result []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == level {
			result = append(result, entry.Message)
		}
	}
	return result
}

func readTestDocument(t *testing.T) []byte {
	raw, err := os.ReadFile("testdata/hal_t41.xml")
	require.NoError(t, err)
	return raw
}

func enqueue(t *testing.T, stor *storage.Storage, key string, submitted time.Time, raw []byte) *models.Submission {
	sub, err := stor.AddSubmission(context.Background(), key, "1.0", submitted, raw)
	require.NoError(t, err)
	return sub
}

func status(t *testing.T, stor *storage.Storage, key string) models.SubmissionStatus {
	sub, err := stor.GetSubmissionByKey(context.Background(), key)
	require.NoError(t, err)
	return sub.Status
}

func TestProcessPendingSubmissions(t *testing.T) {
	ctx, hook := newTestContext(t)
	stor := storagetest.New(t, logger.FromCtx(ctx))

	now := time.Now()
	valid := enqueue(t, stor, "valid", now.Add(-2*time.Hour), readTestDocument(t))
	enqueue(t, stor, "garbage", now.Add(-time.Hour), []byte("this is not a submission"))

	result, err := ProcessPendingSubmissions(ctx, NewStorageStore(stor))
	require.NoError(t, err)
	require.Equal(t, Result{Valid: 1, Invalid: 1}, result)

	assert.Equal(t, models.SubmissionStatusProcessed, status(t, stor, "valid"))
	assert.Equal(t, models.SubmissionStatusInvalid, status(t, stor, "garbage"))
	assert.Contains(t, messages(hook, logrus.InfoLevel), "processed 1 valid and 1 invalid submissions")

	devices, err := stor.SubmissionDevices(ctx, valid.ID)
	require.NoError(t, err)
	require.Len(t, devices, 3)

	t.Run("nothing_pending", func(t *testing.T) {
		result, err := ProcessPendingSubmissions(ctx, NewStorageStore(stor))
		require.NoError(t, err)
		require.Equal(t, Result{}, result)
	})
}

func TestProcessPendingSubmissionsMaxSubmissions(t *testing.T) {
	ctx, _ := newTestContext(t)
	stor := storagetest.New(t, logger.FromCtx(ctx))

	now := time.Now()
	raw := readTestDocument(t)
	enqueue(t, stor, "first", now.Add(-3*time.Hour), raw)
	enqueue(t, stor, "second", now.Add(-2*time.Hour), raw)
	enqueue(t, stor, "third", now.Add(-time.Hour), raw)

	result, err := ProcessPendingSubmissions(ctx, NewStorageStore(stor), OptionMaxSubmissions(2))
	require.NoError(t, err)
	require.Equal(t, Result{Valid: 2}, result)

	assert.Equal(t, models.SubmissionStatusProcessed, status(t, stor, "first"))
	assert.Equal(t, models.SubmissionStatusProcessed, status(t, stor, "second"))
	assert.Equal(t, models.SubmissionStatusSubmitted, status(t, stor, "third"))
}

type storeMock struct {
	mock.Mock
}

func (m *storeMock) PendingSubmissions(ctx context.Context, limit uint) ([]models.Submission, error) {
	args := m.Called(ctx, limit)
	subs, _ := args.Get(0).([]models.Submission)
	return subs, args.Error(1)
}

func (m *storeMock) GetRawSubmission(ctx context.Context, sub *models.Submission) ([]byte, error) {
	args := m.Called(ctx, sub.SubmissionKey)
	raw, _ := args.Get(0).([]byte)
	return raw, args.Error(1)
}

func (m *storeMock) BeginTx(ctx context.Context) (Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(Tx)
	return tx, args.Error(1)
}

type txMock struct {
	mock.Mock
}

func (m *txMock) GetOrCreateDevice(ctx context.Context, bus models.HWBus, vendorID, productID, name string) (*models.HWDevice, error) {
	args := m.Called(ctx, bus, vendorID, productID, name)
	device, _ := args.Get(0).(*models.HWDevice)
	return device, args.Error(1)
}

func (m *txMock) EnsureVendorName(ctx context.Context, bus models.HWBus, vendorID, vendorName string) error {
	return m.Called(ctx, bus, vendorID, vendorName).Error(0)
}

func (m *txMock) EnsureDeviceClass(ctx context.Context, deviceID int64, mainClass, subClass *int) error {
	return m.Called(ctx, deviceID, mainClass, subClass).Error(0)
}

func (m *txMock) GetOrCreateDriver(ctx context.Context, packageName, name string) (*models.HWDriver, error) {
	args := m.Called(ctx, packageName, name)
	driver, _ := args.Get(0).(*models.HWDriver)
	return driver, args.Error(1)
}

func (m *txMock) GetOrCreateDeviceDriverLink(ctx context.Context, deviceID int64, driverID *int64) (*models.HWDeviceDriverLink, error) {
	args := m.Called(ctx, deviceID, driverID)
	link, _ := args.Get(0).(*models.HWDeviceDriverLink)
	return link, args.Error(1)
}

func (m *txMock) CreateSubmissionDevice(ctx context.Context, submissionDevice *models.HWSubmissionDevice) error {
	return m.Called(ctx, submissionDevice).Error(0)
}

func (m *txMock) SetSubmissionStatus(ctx context.Context, submissionID int64, status models.SubmissionStatus) error {
	return m.Called(ctx, submissionID, status).Error(0)
}

func (m *txMock) Commit() error {
	return m.Called().Error(0)
}

func (m *txMock) Rollback() error {
	return m.Called().Error(0)
}

func TestProcessPendingSubmissionsOperationalFailure(t *testing.T) {
	errUnreachable := errors.New("connection refused")
	pending := []models.Submission{
		{ID: 1, SubmissionKey: "lost", Status: models.SubmissionStatusSubmitted},
		{ID: 2, SubmissionKey: "unlucky", Status: models.SubmissionStatusSubmitted},
		{ID: 3, SubmissionKey: "never-reached", Status: models.SubmissionStatusSubmitted},
	}

	t.Run("list_pending", func(t *testing.T) {
		ctx, hook := newTestContext(t)
		store := &storeMock{}
		store.On("PendingSubmissions", mock.Anything, uint(0)).Return(nil, errUnreachable).Once()

		_, err := ProcessPendingSubmissions(ctx, store)
		require.ErrorIs(t, err, errUnreachable)
		require.True(t, errors.As(err, &ErrOperational{}), err)
		require.Len(t, messages(hook, logrus.ErrorLevel), 1)
		store.AssertExpectations(t)
	})

	t.Run("get_raw_data", func(t *testing.T) {
		ctx, hook := newTestContext(t)
		store := &storeMock{}
		store.On("PendingSubmissions", mock.Anything, uint(10)).Return(pending[1:], nil).Once()
		store.On("GetRawSubmission", mock.Anything, "unlucky").Return(nil, storage.ErrGetData{Err: errUnreachable}).Once()

		result, err := ProcessPendingSubmissions(ctx, store, OptionMaxSubmissions(10))
		require.ErrorIs(t, err, errUnreachable)
		var errOperational ErrOperational
		require.True(t, errors.As(err, &errOperational), err)
		require.Equal(t, "unlucky", errOperational.SubmissionKey)
		require.Equal(t, Result{}, result)
		require.Len(t, messages(hook, logrus.ErrorLevel), 1)
		store.AssertExpectations(t)
	})

	t.Run("persist", func(t *testing.T) {
		ctx, hook := newTestContext(t)

		lostTx := &txMock{}
		lostTx.On("SetSubmissionStatus", mock.Anything, int64(1), models.SubmissionStatusInvalid).Return(nil).Once()
		lostTx.On("Commit").Return(nil).Once()
		lostTx.On("Rollback").Return(nil).Once()

		failingTx := &txMock{}
		failingTx.On("GetOrCreateDevice", mock.Anything, models.HWBusSystem, "Lenovo", "T41", "T41").
			Return(nil, errUnreachable).Once()
		failingTx.On("Rollback").Return(nil).Once()

		store := &storeMock{}
		store.On("PendingSubmissions", mock.Anything, uint(0)).Return(pending, nil).Once()
		store.On("GetRawSubmission", mock.Anything, "lost").Return(nil, storage.ErrNotFound{Query: "lost"}).Once()
		store.On("GetRawSubmission", mock.Anything, "unlucky").Return(readTestDocument(t), nil).Once()
		store.On("BeginTx", mock.Anything).Return(lostTx, nil).Once()
		store.On("BeginTx", mock.Anything).Return(failingTx, nil).Once()

		result, err := ProcessPendingSubmissions(ctx, store)
		require.ErrorIs(t, err, errUnreachable)
		var errOperational ErrOperational
		require.True(t, errors.As(err, &errOperational), err)
		require.Equal(t, "unlucky", errOperational.SubmissionKey)
		require.Equal(t, Result{Invalid: 1}, result)

		// the status of the failed submission is left untouched
		failingTx.AssertNotCalled(t, "SetSubmissionStatus", mock.Anything, mock.Anything, mock.Anything)
		failingTx.AssertNotCalled(t, "Commit")
		require.Len(t, messages(hook, logrus.ErrorLevel), 2)
		store.AssertExpectations(t)
		lostTx.AssertExpectations(t)
		failingTx.AssertExpectations(t)
	})
}
