package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	xlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immune-gmbh/hwdb/pkg/storage"
	"github.com/immune-gmbh/hwdb/pkg/storage/models"
	"github.com/immune-gmbh/hwdb/pkg/storage/storagetest"
)

func ptr[T any](v T) *T {
	return &v
}

func countRows(t *testing.T, stor *storage.Storage, table string) int {
	var count int
	require.NoError(t, stor.DB.Get(&count, "SELECT COUNT(*) FROM `"+table+"`"))
	return count
}

func TestStorageSubmissionQueue(t *testing.T) {
	ctx := logger.CtxWithLogger(
		context.Background(),
		xlogrus.Default().WithLevel(logger.LevelDebug),
	)
	stor := storagetest.New(t, logger.FromCtx(ctx))

	// Migrations must be re-applicable.
	require.NoError(t, stor.Migrate(ctx))

	now := time.Now()
	newer, err := stor.AddSubmission(ctx, "newer", "1.0", now, []byte("<system version=\"1.0\"/>"))
	require.NoError(t, err)
	older, err := stor.AddSubmission(ctx, "older", "1.1", now.Add(-time.Hour), []byte("<system version=\"1.1\"/>"))
	require.NoError(t, err)
	require.NotEqual(t, newer.ID, older.ID)

	_, err = stor.AddSubmission(ctx, "older", "1.1", now, []byte("another"))
	require.True(t, errors.As(err, &storage.ErrAlreadyExists{}), err)

	t.Run("pending_oldest_first", func(t *testing.T) {
		pending, err := stor.PendingSubmissions(ctx, 0)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		require.Equal(t, "older", pending[0].SubmissionKey)
		require.Equal(t, "newer", pending[1].SubmissionKey)
		require.Equal(t, models.SubmissionStatusSubmitted, pending[0].Status)
		require.Equal(t, older.RawDataKey, pending[0].RawDataKey)

		pending, err = stor.PendingSubmissions(ctx, 1)
		require.NoError(t, err)
		require.Len(t, pending, 1)
	})

	t.Run("get_by_key", func(t *testing.T) {
		sub, err := stor.GetSubmissionByKey(ctx, "newer")
		require.NoError(t, err)
		require.Equal(t, newer.ID, sub.ID)
		require.Equal(t, "1.0", sub.FormatVersion)

		_, err = stor.GetSubmissionByKey(ctx, "unknown")
		require.True(t, errors.As(err, &storage.ErrNotFound{}), err)
	})

	t.Run("raw_data", func(t *testing.T) {
		raw, err := stor.GetRawSubmission(ctx, older)
		require.NoError(t, err)
		require.Equal(t, []byte("<system version=\"1.1\"/>"), raw)

		require.NoError(t, stor.BlobStorage.Delete(ctx, older.RawDataKey))
		_, err = stor.GetRawSubmission(ctx, older)
		require.True(t, errors.As(err, &storage.ErrNotFound{}), err)
	})

	t.Run("set_status", func(t *testing.T) {
		tx, err := stor.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.SetSubmissionStatus(ctx, older.ID, models.SubmissionStatusInvalid))
		err = tx.SetSubmissionStatus(ctx, -1, models.SubmissionStatusInvalid)
		require.True(t, errors.As(err, &storage.ErrNotFound{}), err)
		require.NoError(t, tx.Commit())
		require.Error(t, tx.Commit())
		require.NoError(t, tx.Rollback())

		pending, err := stor.PendingSubmissions(ctx, 0)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, "newer", pending[0].SubmissionKey)
	})
}

func TestStorageHardwareRows(t *testing.T) {
	ctx := context.Background()
	stor := storagetest.New(t, nil)

	sub, err := stor.AddSubmission(ctx, "test", "1.0", time.Now(), []byte("<system/>"))
	require.NoError(t, err)

	t.Run("rollback_discards_everything", func(t *testing.T) {
		tx, err := stor.BeginTx(ctx)
		require.NoError(t, err)
		_, err = tx.GetOrCreateDevice(ctx, models.HWBusPCI, "0x8086", "0x27c5", "82801G")
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())

		require.Equal(t, 0, countRows(t, stor, "hw_device"))
	})

	tx, err := stor.BeginTx(ctx)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, tx.Rollback())
	}()

	var device *models.HWDevice
	t.Run("device", func(t *testing.T) {
		device, err = tx.GetOrCreateDevice(ctx, models.HWBusPCI, "0x8086", "0x27c5", "82801G")
		require.NoError(t, err)
		require.NotZero(t, device.ID)
		require.Equal(t, models.HWBusPCI, device.Bus)

		same, err := tx.GetOrCreateDevice(ctx, models.HWBusPCI, "0x8086", "0x27c5", "another name")
		require.NoError(t, err)
		require.Equal(t, device.ID, same.ID)
		require.Equal(t, "82801G", same.Name)

		other, err := tx.GetOrCreateDevice(ctx, models.HWBusUSB, "0x8086", "0x27c5", "82801G")
		require.NoError(t, err)
		require.NotEqual(t, device.ID, other.ID)
	})

	t.Run("vendor_name", func(t *testing.T) {
		require.NoError(t, tx.EnsureVendorName(ctx, models.HWBusPCI, "0x8086", "Intel Corporation"))
		require.NoError(t, tx.EnsureVendorName(ctx, models.HWBusPCI, "0x8086", "Intel Corporation"))
		require.NoError(t, tx.EnsureVendorName(ctx, models.HWBusUSB, "0x8086", "Intel Corporation"))
	})

	t.Run("device_class", func(t *testing.T) {
		require.NoError(t, tx.EnsureDeviceClass(ctx, device.ID, nil, nil))
		require.NoError(t, tx.EnsureDeviceClass(ctx, device.ID, ptr(1), ptr(1)))
		require.NoError(t, tx.EnsureDeviceClass(ctx, device.ID, ptr(1), ptr(1)))
		require.NoError(t, tx.EnsureDeviceClass(ctx, device.ID, ptr(1), nil))
	})

	var noDriverLink *models.HWDeviceDriverLink
	t.Run("driver_and_links", func(t *testing.T) {
		drv, err := tx.GetOrCreateDriver(ctx, "linux-image-2.6.24-15-generic", "ahci")
		require.NoError(t, err)
		again, err := tx.GetOrCreateDriver(ctx, "linux-image-2.6.24-15-generic", "ahci")
		require.NoError(t, err)
		require.Equal(t, drv.ID, again.ID)
		unknownPkg, err := tx.GetOrCreateDriver(ctx, "", "ahci")
		require.NoError(t, err)
		require.NotEqual(t, drv.ID, unknownPkg.ID)

		noDriverLink, err = tx.GetOrCreateDeviceDriverLink(ctx, device.ID, nil)
		require.NoError(t, err)
		require.Nil(t, noDriverLink.DriverID)
		link, err := tx.GetOrCreateDeviceDriverLink(ctx, device.ID, &drv.ID)
		require.NoError(t, err)
		require.NotEqual(t, noDriverLink.ID, link.ID)
		require.Equal(t, drv.ID, *link.DriverID)

		again2, err := tx.GetOrCreateDeviceDriverLink(ctx, device.ID, nil)
		require.NoError(t, err)
		require.Equal(t, noDriverLink.ID, again2.ID)
	})

	t.Run("submission_device", func(t *testing.T) {
		root := &models.HWSubmissionDevice{
			SubmissionID:       sub.ID,
			DeviceDriverLinkID: noDriverLink.ID,
			HALDeviceID:        "/org/freedesktop/Hal/devices/computer",
		}
		require.NoError(t, tx.CreateSubmissionDevice(ctx, root))
		require.NotZero(t, root.ID)

		child := &models.HWSubmissionDevice{
			SubmissionID:       sub.ID,
			DeviceDriverLinkID: noDriverLink.ID,
			ParentID:           &root.ID,
			HALDeviceID:        "/org/freedesktop/Hal/devices/pci_8086_27c5",
		}
		require.NoError(t, tx.CreateSubmissionDevice(ctx, child))
	})

	require.NoError(t, tx.Commit())

	devices, err := stor.SubmissionDevices(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Nil(t, devices[0].ParentID)
	require.NotNil(t, devices[1].ParentID)
	assert.Equal(t, devices[0].ID, *devices[1].ParentID)

	assert.Equal(t, 2, countRows(t, stor, "hw_device"))
	assert.Equal(t, 1, countRows(t, stor, "hw_vendor_name"))
	assert.Equal(t, 2, countRows(t, stor, "hw_vendor_id"))
	assert.Equal(t, 2, countRows(t, stor, "hw_device_class"))
	assert.Equal(t, 2, countRows(t, stor, "hw_driver"))
	assert.Equal(t, 2, countRows(t, stor, "hw_device_driver_link"))
}

func TestStorageNew(t *testing.T) {
	_, err := storage.New("postgres", "", nil, nil, nil)
	require.True(t, errors.As(err, &storage.ErrInitDB{}), err)
}
