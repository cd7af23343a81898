package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/afterclass/afterclass-backend/internal/testutil"
	"github.com/afterclass/afterclass-backend/internal/ws"
)

func setupSyncService() (*SyncService, *testutil.MockSyncRecordRepository, *testutil.MockWorkshopRepository, *testutil.MockWorkshopIndex) {
	syncRepo := testutil.NewMockSyncRecordRepository()
	repo := testutil.NewMockWorkshopRepository()
	index := testutil.NewMockWorkshopIndex()
	return NewSyncService(syncRepo, repo, index, nil), syncRepo, repo, index
}

type capturePublisher struct {
	providerIDs []uuid.UUID
	events      []ws.Event
}

func (p *capturePublisher) Publish(providerID uuid.UUID, event ws.Event) {
	p.providerIDs = append(p.providerIDs, providerID)
	p.events = append(p.events, event)
}

func appendEntry(t *testing.T, syncRepo *testutil.MockSyncRecordRepository, recordID uuid.UUID, op domain.SyncOperation, at time.Time) *domain.SyncRecord {
	t.Helper()
	rec, err := syncRepo.Append(&domain.SyncRecord{
		RecordID:    recordID,
		Operation:   op,
		OperationAt: at,
	})
	require.NoError(t, err)
	return rec
}

func TestSynchronize_EmptyLedger(t *testing.T) {
	svc, _, _, index := setupSyncService()

	result, err := svc.Synchronize()
	require.NoError(t, err)
	assert.Zero(t, result.Outstanding)
	assert.Zero(t, index.IndexCalls)
}

func TestSynchronize_ReplaysUpdateFromCurrentRecord(t *testing.T) {
	svc, syncRepo, repo, index := setupSyncService()

	w := validWorkshop()
	repo.AddWorkshop(w)
	appendEntry(t, syncRepo, w.ID, domain.SyncOperationUpdate, time.Now())

	result, err := svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)
	assert.Zero(t, result.Failed)

	doc, ok := index.Docs[w.ID]
	require.True(t, ok)
	assert.Equal(t, w.Title, doc.Title)
	assert.Zero(t, syncRepo.Outstanding())
}

func TestSynchronize_ReplaysOnlyLatestEntryPerRecord(t *testing.T) {
	svc, syncRepo, repo, index := setupSyncService()

	w := validWorkshop()
	repo.AddWorkshop(w)

	base := time.Now().Add(-time.Hour)
	appendEntry(t, syncRepo, w.ID, domain.SyncOperationCreate, base)
	appendEntry(t, syncRepo, w.ID, domain.SyncOperationUpdate, base.Add(time.Minute))
	appendEntry(t, syncRepo, w.ID, domain.SyncOperationUpdate, base.Add(2*time.Minute))

	result, err := svc.Synchronize()
	require.NoError(t, err)

	// One effective replay for the record, superseded entries marked with it
	assert.Equal(t, 1, result.Outstanding)
	assert.Equal(t, 1, result.Replayed)
	assert.Equal(t, 1, index.IndexCalls)
	assert.Zero(t, syncRepo.Outstanding())
}

func TestSynchronize_TimestampTieBrokenByEntryID(t *testing.T) {
	svc, syncRepo, repo, index := setupSyncService()

	w := validWorkshop()
	repo.AddWorkshop(w)

	// Same instant: the later append (higher id) must win
	at := time.Now().Truncate(time.Second)
	appendEntry(t, syncRepo, w.ID, domain.SyncOperationUpdate, at)
	appendEntry(t, syncRepo, w.ID, domain.SyncOperationDelete, at)

	result, err := svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)

	// Delete won: no document, one delete call, no index write
	_, ok := index.Docs[w.ID]
	assert.False(t, ok)
	assert.Equal(t, 1, index.DeleteCalls)
	assert.Zero(t, index.IndexCalls)
}

func TestSynchronize_DeleteEntryRemovesDocument(t *testing.T) {
	svc, syncRepo, _, index := setupSyncService()

	id := uuid.New()
	index.Docs[id] = domain.WorkshopDoc{ID: id, Title: "stale"}
	appendEntry(t, syncRepo, id, domain.SyncOperationDelete, time.Now())

	result, err := svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)

	_, ok := index.Docs[id]
	assert.False(t, ok)
}

func TestSynchronize_MissingRecordConvergesAsDelete(t *testing.T) {
	svc, syncRepo, _, index := setupSyncService()

	// Create entry for a record deleted since the entry was written
	id := uuid.New()
	index.Docs[id] = domain.WorkshopDoc{ID: id, Title: "orphan"}
	appendEntry(t, syncRepo, id, domain.SyncOperationCreate, time.Now())

	result, err := svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)

	_, ok := index.Docs[id]
	assert.False(t, ok)
	assert.Zero(t, syncRepo.Outstanding())
}

func TestSynchronize_PublishesReplayedEventToProvider(t *testing.T) {
	syncRepo := testutil.NewMockSyncRecordRepository()
	repo := testutil.NewMockWorkshopRepository()
	index := testutil.NewMockWorkshopIndex()
	publisher := &capturePublisher{}
	svc := NewSyncService(syncRepo, repo, index, publisher)

	w := validWorkshop()
	repo.AddWorkshop(w)
	entry := appendEntry(t, syncRepo, w.ID, domain.SyncOperationUpdate, time.Now())

	result, err := svc.Synchronize()
	require.NoError(t, err)
	require.Equal(t, 1, result.Replayed)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, w.ProviderID, publisher.providerIDs[0])
	assert.Equal(t, "sync.replayed", publisher.events[0].Type)
	assert.Equal(t, entry, publisher.events[0].Payload)
}

func TestSynchronize_NoEventForDeleteReplay(t *testing.T) {
	syncRepo := testutil.NewMockSyncRecordRepository()
	repo := testutil.NewMockWorkshopRepository()
	index := testutil.NewMockWorkshopIndex()
	publisher := &capturePublisher{}
	svc := NewSyncService(syncRepo, repo, index, publisher)

	id := uuid.New()
	index.Docs[id] = domain.WorkshopDoc{ID: id, Title: "retired"}
	appendEntry(t, syncRepo, id, domain.SyncOperationDelete, time.Now())

	result, err := svc.Synchronize()
	require.NoError(t, err)
	require.Equal(t, 1, result.Replayed)

	assert.Empty(t, publisher.events)
}

func TestSynchronize_NoEventWhenReplayFails(t *testing.T) {
	syncRepo := testutil.NewMockSyncRecordRepository()
	repo := testutil.NewMockWorkshopRepository()
	index := testutil.NewMockWorkshopIndex()
	publisher := &capturePublisher{}
	svc := NewSyncService(syncRepo, repo, index, publisher)

	w := validWorkshop()
	repo.AddWorkshop(w)
	appendEntry(t, syncRepo, w.ID, domain.SyncOperationUpdate, time.Now())
	index.IndexErr = testutil.ErrIndexDown

	result, err := svc.Synchronize()
	require.NoError(t, err)
	require.Equal(t, 1, result.Failed)

	assert.Empty(t, publisher.events)
}

func TestSynchronize_FailedReplayStaysPending(t *testing.T) {
	svc, syncRepo, repo, index := setupSyncService()

	w := validWorkshop()
	repo.AddWorkshop(w)
	appendEntry(t, syncRepo, w.ID, domain.SyncOperationUpdate, time.Now())

	index.IndexErr = testutil.ErrIndexDown

	result, err := svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, result.Replayed)
	assert.Equal(t, 1, syncRepo.Outstanding())

	// Next pass after the index recovers drains it
	index.IndexErr = nil
	result, err = svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)
	assert.Zero(t, syncRepo.Outstanding())
}

func TestSynchronize_FailureOnOneRecordDoesNotBlockOthers(t *testing.T) {
	svc, syncRepo, repo, index := setupSyncService()

	broken := validWorkshop()
	repo.AddWorkshop(broken)
	healthy := uuid.New()

	appendEntry(t, syncRepo, broken.ID, domain.SyncOperationUpdate, time.Now().Add(-time.Minute))
	appendEntry(t, syncRepo, healthy, domain.SyncOperationDelete, time.Now())

	// Index writes fail, deletes succeed
	index.IndexErr = testutil.ErrIndexDown

	result, err := svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Outstanding)
	assert.Equal(t, 1, result.Replayed)
	assert.Equal(t, 1, result.Failed)
}

func TestSynchronize_MidReplayAppendStaysPending(t *testing.T) {
	svc, syncRepo, repo, index := setupSyncService()

	w := validWorkshop()
	repo.AddWorkshop(w)
	first := appendEntry(t, syncRepo, w.ID, domain.SyncOperationUpdate, time.Now().Add(-time.Minute))

	// Simulate a write landing between the replay and the mark: the new
	// entry has a higher id, so marking through the replayed id must not
	// cover it.
	syncRepo.MarkFn = func(recordID uuid.UUID, entryID int64) error {
		syncRepo.MarkFn = nil
		appendEntry(t, syncRepo, w.ID, domain.SyncOperationDelete, time.Now())
		for _, rec := range syncRepo.Records {
			if rec.RecordID == recordID && rec.ID <= entryID {
				rec.Synced = true
			}
		}
		return nil
	}

	result, err := svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)

	// The concurrent delete entry is still pending
	require.Equal(t, 1, syncRepo.Outstanding())
	outstanding, err := syncRepo.GetOutstanding()
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.Equal(t, domain.SyncOperationDelete, outstanding[0].Operation)
	assert.Greater(t, outstanding[0].ID, first.ID)

	// Second pass converges
	result, err = svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)
	assert.Zero(t, syncRepo.Outstanding())
	_, ok := index.Docs[w.ID]
	assert.False(t, ok)
}

func TestSynchronize_ReplayIsIdempotent(t *testing.T) {
	svc, syncRepo, repo, index := setupSyncService()

	w := validWorkshop()
	repo.AddWorkshop(w)

	// The combiner already wrote the document; the entry is a duplicate
	index.Docs[w.ID] = w.ToDoc()
	appendEntry(t, syncRepo, w.ID, domain.SyncOperationUpdate, time.Now())

	result, err := svc.Synchronize()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)

	doc := index.Docs[w.ID]
	assert.Equal(t, w.Title, doc.Title)
}

func TestGetRecordsByOperation_InvalidOperation(t *testing.T) {
	svc, _, _, _ := setupSyncService()

	_, err := svc.GetRecordsByOperation("upsert")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}
