package memstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobtracker/internal/store/memstore"
	"jobtracker/internal/store/storetest"
	"jobtracker/internal/tracker"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) storetest.Store { return memstore.New() })
}

func TestUpdateApplication_ConcurrentWritersEachSeeLatest(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	app := &tracker.Application{Status: tracker.StatusPreparing, CreatedAt: time.Now()}
	if err := s.CreateApplication(ctx, app); err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	// Every writer appends to the salary it read; lost updates would
	// leave fewer characters than writers.
	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateApplication(ctx, app.ID, func(a *tracker.Application) (*tracker.Step, error) {
				a.Salary += "x"
				return nil, nil
			})
			if err != nil {
				t.Errorf("UpdateApplication: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.GetApplication(ctx, app.ID)
	if len(got.Salary) != writers {
		t.Errorf("salary has %d marks, want %d", len(got.Salary), writers)
	}
}
