package service

import (
	"context"
	"fmt"
	"testing"

	"campaigner/internal/constants"
	"campaigner/internal/errors"
	"campaigner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupContactService(t *testing.T) (*ContactService, *fakeStore, context.Context) {
	t.Helper()
	store := newFakeStore()
	return NewContactService(store, testLogger()), store, context.Background()
}

func TestCreateContactNormalizesPhone(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	created, err := svc.CreateContact(ctx, &models.Contact{
		PhoneNumber: "+49 (1555) 123-456",
		Name:        "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "+491555123456", created.PhoneNumber)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "manual", created.Source)
}

func TestCreateContactMissingPhone(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	_, err := svc.CreateContact(ctx, &models.Contact{PhoneNumber: "abc", Name: "Nobody"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingPhone, errors.GetCode(err))
}

func TestCreateContactRejectsTooLongPhone(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	_, err := svc.CreateContact(ctx, &models.Contact{PhoneNumber: "+123456789012345678901234", Name: "Long"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, errors.GetCode(err))
}

func TestGetContactByPhoneNormalizesSpelling(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	created, err := svc.CreateContact(ctx, &models.Contact{PhoneNumber: "+4915551234", Name: "Ada"})
	require.NoError(t, err)

	// Any spelling of the number resolves to the stored contact.
	got, err := svc.GetContactByPhone(ctx, "0049 1555-1234")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetContactByPhone(ctx, "+4900000000")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = svc.GetContactByPhone(ctx, "abc")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingPhone, errors.GetCode(err))
}

func TestCreateContactDuplicatePhoneIsConflict(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	_, err := svc.CreateContact(ctx, &models.Contact{PhoneNumber: "+4915551234", Name: "First"})
	require.NoError(t, err)

	// Same number in a different spelling still collides.
	_, err = svc.CreateContact(ctx, &models.Contact{PhoneNumber: "+49 1555 1234", Name: "Second"})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Equal(t, errors.ErrCodeDuplicatePhone, errors.GetCode(err))
}

func TestUpdateContactPhoneIsImmutable(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	created, err := svc.CreateContact(ctx, &models.Contact{PhoneNumber: "+4915551234", Name: "Ada"})
	require.NoError(t, err)

	created.Name = "Ada Updated"
	created.PhoneNumber = "+4915559999"
	_, err = svc.UpdateContact(ctx, created)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, errors.GetCode(err))

	// The same number in another spelling passes, and other edits land.
	created.PhoneNumber = "+49 1555 1234"
	updated, err := svc.UpdateContact(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Ada Updated", updated.Name)
	assert.Equal(t, "+4915551234", updated.PhoneNumber)
}

func TestUpdateContactUnknownID(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	_, err := svc.UpdateContact(ctx, &models.Contact{ID: "ghost", Name: "Nobody"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestImportBatchCommitsSelectedRecords(t *testing.T) {
	svc, store, ctx := setupContactService(t)
	store.contacts["c1"] = &models.Contact{ID: "c1", PhoneNumber: "+4915550000"}

	session, err := svc.NewImportSessionFromStore(ctx, []models.RawRecord{
		{PhoneNumber: "+4915551111", Name: "One"},
		{PhoneNumber: "+4915550000", Name: "Existing"},
		{PhoneNumber: "", Name: "NoPhone"},
		{PhoneNumber: "+4915552222", Name: "Two"},
	})
	require.NoError(t, err)

	result := svc.ImportBatch(ctx, session, nil)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 2, result.Total)

	contacts, err := svc.GetContacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 3)
	for _, c := range contacts {
		if c.ID != "c1" {
			assert.Equal(t, "import", c.Source)
		}
	}
}

func TestImportBatchRaceCountsAsDuplicate(t *testing.T) {
	svc, store, ctx := setupContactService(t)

	session, err := svc.NewImportSessionFromStore(ctx, []models.RawRecord{
		{PhoneNumber: "+4915551111", Name: "One"},
	})
	require.NoError(t, err)

	// A concurrent create wins the race before the commit runs.
	store.contacts["raced"] = &models.Contact{ID: "raced", PhoneNumber: "+4915551111"}

	result := svc.ImportBatch(ctx, session, nil)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.Errors)
}

func TestImportBatchContinuesPastErrors(t *testing.T) {
	svc, store, ctx := setupContactService(t)

	session, err := svc.NewImportSessionFromStore(ctx, []models.RawRecord{
		{PhoneNumber: "+4915551111", Name: "One"},
		{PhoneNumber: "+4915552222", Name: "Two"},
	})
	require.NoError(t, err)

	store.saveContactErr = fmt.Errorf("disk full")
	result := svc.ImportBatch(ctx, session, nil)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Errors)
	assert.Len(t, result.Reasons, 2)
}

func TestImportBatchReportsProgressPerChunk(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	n := constants.DefaultImportChunkSize + 3
	batch := make([]models.RawRecord, n)
	for i := range batch {
		batch[i] = models.RawRecord{PhoneNumber: fmt.Sprintf("+49155500%04d", i), Name: "Bulk"}
	}

	session, err := svc.NewImportSessionFromStore(ctx, batch)
	require.NoError(t, err)

	var progress []models.ImportResult
	result := svc.ImportBatch(ctx, session, func(r models.ImportResult) {
		progress = append(progress, r)
	})

	assert.Equal(t, n, result.Imported)
	require.Len(t, progress, 2)
	assert.Equal(t, constants.DefaultImportChunkSize, progress[0].Imported)
	assert.Equal(t, n, progress[1].Imported)
}

func TestContactBulkDeleteContinuesPastFailures(t *testing.T) {
	svc, store, ctx := setupContactService(t)
	store.contacts["c1"] = &models.Contact{ID: "c1", PhoneNumber: "+4915551111"}
	store.contacts["c2"] = &models.Contact{ID: "c2", PhoneNumber: "+4915552222"}

	result := svc.BulkDelete(ctx, []string{"c1", "c2", "c3"}, nil)
	// The fake store deletes unknown IDs silently, so everything counts.
	assert.Equal(t, 3, result.Deleted)
	assert.Equal(t, 0, result.Errors)
	assert.Empty(t, store.contacts)

	store.contacts["c4"] = &models.Contact{ID: "c4", PhoneNumber: "+4915553333"}
	store.deleteContactErr = fmt.Errorf("store offline")
	result = svc.BulkDelete(ctx, []string{"c4"}, nil)
	assert.Equal(t, 0, result.Deleted)
	assert.Equal(t, 1, result.Errors)
}
