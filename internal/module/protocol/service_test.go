package protocol

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/events"
)

// memRepository backs the service with an in-memory counter map. The
// mutex stands in for the database's atomic upsert.
type memRepository struct {
	mu       sync.Mutex
	counters map[string]int64
	created  []*Protocol
	statuses map[string]string
}

func newMemRepository() *memRepository {
	return &memRepository{
		counters: make(map[string]int64),
		statuses: make(map[string]string),
	}
}

func (m *memRepository) NextSequence(ctx context.Context, entityType string, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s:%d", entityType, year)
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memRepository) Create(ctx context.Context, p *Protocol) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, p)
	return nil
}

func (m *memRepository) UpdateStatusByNumber(ctx context.Context, number, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.created {
		if p.Number == number {
			m.statuses[number] = status
			return nil
		}
	}
	return ErrProtocolNotFound
}

func (m *memRepository) GetByNumber(ctx context.Context, number string) (*Protocol, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.created {
		if p.Number == number {
			return p, nil
		}
	}
	return nil, ErrProtocolNotFound
}

func (m *memRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Protocol, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Protocol
	for _, p := range m.created {
		if p.EntityType == entityType && p.EntityID == entityID {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestGenerateSequential(t *testing.T) {
	svc := newTestService(newMemRepository())
	ctx := context.Background()
	entityID := uuid.New()

	var numbers []string
	for i := 0; i < 3; i++ {
		p, err := svc.Generate(ctx, &GenerateInput{
			EntityType: events.EntityEventRegistration,
			EntityID:   entityID,
		})
		require.NoError(t, err)
		numbers = append(numbers, p.Number)
	}

	assert.Equal(t, []string{"EVT2025000001", "EVT2025000002", "EVT2025000003"}, numbers)
}

func TestGeneratePrefixes(t *testing.T) {
	svc := newTestService(newMemRepository())
	ctx := context.Background()

	tests := []struct {
		entityType string
		prefix     string
	}{
		{events.EntityAthleteMembership, "FIL"},
		{events.EntityEventRegistration, "EVT"},
		{events.EntityClubAffiliation, "CLB"},
		{events.EntityOther, "OTH"},
	}
	for _, tt := range tests {
		p, err := svc.Generate(ctx, &GenerateInput{EntityType: tt.entityType, EntityID: uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, tt.prefix+"2025000001", p.Number)
	}
}

func TestGenerateFormat(t *testing.T) {
	format := regexp.MustCompile(`^(FIL|EVT|CLB|OTH)\d{4}\d{6}$`)
	svc := newTestService(newMemRepository())

	for i := 0; i < 10; i++ {
		p, err := svc.Generate(context.Background(), &GenerateInput{
			EntityType: events.EntityClubAffiliation,
			EntityID:   uuid.New(),
		})
		require.NoError(t, err)
		assert.Regexp(t, format, p.Number)
		assert.Equal(t, StatusActive, p.Status)
	}
}

func TestGenerateConcurrentUnique(t *testing.T) {
	svc := newTestService(newMemRepository())
	ctx := context.Background()

	const n = 50
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Generate(ctx, &GenerateInput{
				EntityType: events.EntityEventRegistration,
				EntityID:   uuid.New(),
			})
			if err == nil {
				results <- p.Number
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for number := range results {
		assert.False(t, seen[number], "duplicate protocol number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

func TestGenerateInvalidEntityType(t *testing.T) {
	svc := newTestService(newMemRepository())

	_, err := svc.Generate(context.Background(), &GenerateInput{
		EntityType: "TOURNAMENT",
		EntityID:   uuid.New(),
	})
	assert.ErrorIs(t, err, ErrInvalidEntityType)
}

func TestUpdateStatus(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	p, err := svc.Generate(ctx, &GenerateInput{
		EntityType: events.EntityAthleteMembership,
		EntityID:   uuid.New(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, p.Number, StatusCompleted))
	assert.Equal(t, StatusCompleted, repo.statuses[p.Number])

	assert.ErrorIs(t, svc.UpdateStatus(ctx, "EVT2025999999", StatusCancelled), ErrProtocolNotFound)
}
