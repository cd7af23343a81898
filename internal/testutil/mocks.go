package testutil

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/afterclass/afterclass-backend/internal/domain"
)

// ErrIndexDown simulates an unreachable search index
var ErrIndexDown = errors.New("index unreachable")

// MockWorkshopRepository is a mock implementation of domain.WorkshopRepository
type MockWorkshopRepository struct {
	Workshops   map[uuid.UUID]*domain.Workshop
	CreateFn    func(workshop *domain.Workshop) (*domain.Workshop, error)
	GetByIDFn   func(id uuid.UUID) (*domain.Workshop, error)
	UpdateFn    func(workshop *domain.Workshop) (*domain.Workshop, error)
	DeleteFn    func(id uuid.UUID) error
	FilterFn    func(filter *domain.WorkshopFilter) ([]*domain.Workshop, int64, error)
	FilterCalls int
}

// NewMockWorkshopRepository creates a new MockWorkshopRepository
func NewMockWorkshopRepository() *MockWorkshopRepository {
	return &MockWorkshopRepository{
		Workshops: make(map[uuid.UUID]*domain.Workshop),
	}
}

// AddWorkshop adds a workshop to the mock repository (helper for tests)
func (m *MockWorkshopRepository) AddWorkshop(workshop *domain.Workshop) {
	if workshop.ID == uuid.Nil {
		workshop.ID = uuid.New()
	}
	m.Workshops[workshop.ID] = workshop
}

// Create creates a new workshop
func (m *MockWorkshopRepository) Create(workshop *domain.Workshop) (*domain.Workshop, error) {
	if m.CreateFn != nil {
		return m.CreateFn(workshop)
	}
	workshop.ID = uuid.New()
	now := time.Now().UTC()
	workshop.CreatedAt = now
	workshop.UpdatedAt = now
	m.Workshops[workshop.ID] = workshop
	return workshop, nil
}

// GetByID retrieves a workshop by ID
func (m *MockWorkshopRepository) GetByID(id uuid.UUID) (*domain.Workshop, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(id)
	}
	if w, ok := m.Workshops[id]; ok {
		return w, nil
	}
	return nil, domain.ErrWorkshopNotFound
}

// GetByProviderID retrieves workshops by provider ID
func (m *MockWorkshopRepository) GetByProviderID(providerID uuid.UUID) ([]*domain.Workshop, error) {
	var out []*domain.Workshop
	for _, w := range m.Workshops {
		if w.ProviderID == providerID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// GetByFilter retrieves workshops matching a filter
func (m *MockWorkshopRepository) GetByFilter(filter *domain.WorkshopFilter) ([]*domain.Workshop, int64, error) {
	m.FilterCalls++
	if m.FilterFn != nil {
		return m.FilterFn(filter)
	}
	var out []*domain.Workshop
	for _, w := range m.Workshops {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, int64(len(out)), nil
}

// Update updates a workshop
func (m *MockWorkshopRepository) Update(workshop *domain.Workshop) (*domain.Workshop, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(workshop)
	}
	if _, ok := m.Workshops[workshop.ID]; !ok {
		return nil, domain.ErrWorkshopNotFound
	}
	workshop.UpdatedAt = time.Now().UTC()
	m.Workshops[workshop.ID] = workshop
	return workshop, nil
}

// Delete removes a workshop
func (m *MockWorkshopRepository) Delete(id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(id)
	}
	if _, ok := m.Workshops[id]; !ok {
		return domain.ErrWorkshopNotFound
	}
	delete(m.Workshops, id)
	return nil
}

// SetCoverImage stores the cover key for a workshop
func (m *MockWorkshopRepository) SetCoverImage(id uuid.UUID, key *string) error {
	w, ok := m.Workshops[id]
	if !ok {
		return domain.ErrWorkshopNotFound
	}
	w.CoverImageKey = key
	return nil
}

// MockSyncRecordRepository is a mock implementation of domain.SyncRecordRepository
type MockSyncRecordRepository struct {
	Records  []*domain.SyncRecord
	NextID   int64
	AppendFn func(record *domain.SyncRecord) (*domain.SyncRecord, error)
	MarkFn   func(recordID uuid.UUID, entryID int64) error
}

// NewMockSyncRecordRepository creates a new MockSyncRecordRepository
func NewMockSyncRecordRepository() *MockSyncRecordRepository {
	return &MockSyncRecordRepository{NextID: 1}
}

// Append adds a ledger entry
func (m *MockSyncRecordRepository) Append(record *domain.SyncRecord) (*domain.SyncRecord, error) {
	if m.AppendFn != nil {
		return m.AppendFn(record)
	}
	record.ID = m.NextID
	m.NextID++
	if record.OperationAt.IsZero() {
		record.OperationAt = time.Now().UTC()
	}
	record.Synced = false
	m.Records = append(m.Records, record)
	return record, nil
}

// GetOutstanding returns the latest pending entry per record
func (m *MockSyncRecordRepository) GetOutstanding() ([]*domain.SyncRecord, error) {
	latest := make(map[uuid.UUID]*domain.SyncRecord)
	for _, rec := range m.Records {
		if rec.Synced {
			continue
		}
		cur, ok := latest[rec.RecordID]
		if !ok || rec.OperationAt.After(cur.OperationAt) ||
			(rec.OperationAt.Equal(cur.OperationAt) && rec.ID > cur.ID) {
			latest[rec.RecordID] = rec
		}
	}
	var out []*domain.SyncRecord
	for _, rec := range latest {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetLatestForRecord returns the newest entry for one record
func (m *MockSyncRecordRepository) GetLatestForRecord(recordID uuid.UUID) (*domain.SyncRecord, error) {
	var latest *domain.SyncRecord
	for _, rec := range m.Records {
		if rec.RecordID != recordID {
			continue
		}
		if latest == nil || rec.OperationAt.After(latest.OperationAt) ||
			(rec.OperationAt.Equal(latest.OperationAt) && rec.ID > latest.ID) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// GetByOperation lists entries of one operation kind
func (m *MockSyncRecordRepository) GetByOperation(operation domain.SyncOperation) ([]*domain.SyncRecord, error) {
	var out []*domain.SyncRecord
	for _, rec := range m.Records {
		if rec.Operation == operation {
			out = append(out, rec)
		}
	}
	return out, nil
}

// MarkSyncedThrough marks entries for a record up to entryID as synced
func (m *MockSyncRecordRepository) MarkSyncedThrough(recordID uuid.UUID, entryID int64) error {
	if m.MarkFn != nil {
		return m.MarkFn(recordID, entryID)
	}
	for _, rec := range m.Records {
		if rec.RecordID == recordID && rec.ID <= entryID {
			rec.Synced = true
		}
	}
	return nil
}

// GetAll returns the full ledger
func (m *MockSyncRecordRepository) GetAll() ([]*domain.SyncRecord, error) {
	out := make([]*domain.SyncRecord, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

// Outstanding counts entries still pending (helper for tests)
func (m *MockSyncRecordRepository) Outstanding() int {
	n := 0
	for _, rec := range m.Records {
		if !rec.Synced {
			n++
		}
	}
	return n
}

// MockWorkshopIndex is a mock implementation of domain.WorkshopIndex with
// failure injection for the dual-write and fallback paths.
type MockWorkshopIndex struct {
	Docs        map[uuid.UUID]domain.WorkshopDoc
	Healthy     bool
	IndexErr    error
	DeleteErr   error
	SearchErr   error
	SearchFn    func(filter *domain.WorkshopFilter) (*domain.SearchResult[domain.WorkshopDoc], error)
	IndexCalls  int
	DeleteCalls int
	SearchCalls int
	PingCalls   int
}

// NewMockWorkshopIndex creates a healthy, empty MockWorkshopIndex
func NewMockWorkshopIndex() *MockWorkshopIndex {
	return &MockWorkshopIndex{
		Docs:    make(map[uuid.UUID]domain.WorkshopDoc),
		Healthy: true,
	}
}

// Index upserts a document
func (m *MockWorkshopIndex) Index(doc domain.WorkshopDoc) error {
	m.IndexCalls++
	if m.IndexErr != nil {
		return m.IndexErr
	}
	m.Docs[doc.ID] = doc
	return nil
}

// Delete removes a document; missing documents are not an error
func (m *MockWorkshopIndex) Delete(id uuid.UUID) error {
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Docs, id)
	return nil
}

// Search returns all stored documents unless SearchFn overrides it
func (m *MockWorkshopIndex) Search(filter *domain.WorkshopFilter) (*domain.SearchResult[domain.WorkshopDoc], error) {
	m.SearchCalls++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if m.SearchFn != nil {
		return m.SearchFn(filter)
	}
	var docs []domain.WorkshopDoc
	for _, doc := range m.Docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID.String() < docs[j].ID.String() })
	total := int64(len(docs))
	if filter != nil {
		if filter.From >= len(docs) {
			docs = nil
		} else {
			docs = docs[filter.From:]
		}
		if filter.Size > 0 && filter.Size < len(docs) {
			docs = docs[:filter.Size]
		}
	}
	return &domain.SearchResult[domain.WorkshopDoc]{
		TotalAmount: total,
		Entities:    docs,
	}, nil
}

// Ping reports the configured health state
func (m *MockWorkshopIndex) Ping() bool {
	m.PingCalls++
	return m.Healthy
}
