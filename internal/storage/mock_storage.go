package storage

import (
	"github.com/jcalderon/strikelog/internal/models"
)

// MockStorage implements Interface for testing.
type MockStorage struct {
	records       []models.LegRecord
	saveError     error
	loadError     error
	saveCallCount int
	loadCallCount int
}

// NewMockStorage creates a new mock storage for testing.
func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) Load() ([]models.LegRecord, error) {
	m.loadCallCount++
	if m.loadError != nil {
		return nil, m.loadError
	}
	out := make([]models.LegRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MockStorage) Save(records []models.LegRecord) error {
	m.saveCallCount++
	if m.saveError != nil {
		return m.saveError
	}
	m.records = make([]models.LegRecord, len(records))
	copy(m.records, records)
	return nil
}

// Mock control methods for testing.

func (m *MockStorage) SetRecords(records []models.LegRecord) {
	m.records = records
}

func (m *MockStorage) SetSaveError(err error) {
	m.saveError = err
}

func (m *MockStorage) SetLoadError(err error) {
	m.loadError = err
}

func (m *MockStorage) SaveCallCount() int {
	return m.saveCallCount
}

func (m *MockStorage) LoadCallCount() int {
	return m.loadCallCount
}

var _ Interface = (*MockStorage)(nil)
