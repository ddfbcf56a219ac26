package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

type fakeNotificationRepo struct {
	excessIDs   func(ctx context.Context, keep int) ([]int64, error)
	pruneExcess func(ctx context.Context, keep int) ([]int64, error)
}

func (r *fakeNotificationRepo) ExcessIDs(ctx context.Context, keep int) ([]int64, error) {
	return r.excessIDs(ctx, keep)
}

func (r *fakeNotificationRepo) PruneExcess(ctx context.Context, keep int) ([]int64, error) {
	return r.pruneExcess(ctx, keep)
}

func TestPrune_FiresDeleteHookPerID(t *testing.T) {
	var gotKeep int
	repo := &fakeNotificationRepo{
		pruneExcess: func(_ context.Context, keep int) ([]int64, error) {
			gotKeep = keep
			return []int64{5, 4, 3, 2, 1}, nil
		},
	}
	events := &fakeEvents{}
	p := usecase.NewNotificationPruner(repo, events, 20, discard)

	ids, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if gotKeep != 20 || len(ids) != 5 {
		t.Errorf("keep = %d, ids = %v", gotKeep, ids)
	}
	if len(events.fired) != 5 {
		t.Fatalf("fired %d hooks, want 5", len(events.fired))
	}
	for i, f := range events.fired {
		if f.hook != "ninja_after_delete_notification" || f.args[0] != ids[i] {
			t.Errorf("fired[%d] = %+v", i, f)
		}
	}
}

func TestPrune_FailureFiresNothing(t *testing.T) {
	boom := errors.New("serialization failure")
	repo := &fakeNotificationRepo{
		pruneExcess: func(context.Context, int) ([]int64, error) { return nil, boom },
	}
	events := &fakeEvents{}

	_, err := usecase.NewNotificationPruner(repo, events, 20, discard).Prune(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(events.fired) != 0 {
		t.Error("hooks fired for a failed prune")
	}
}

func TestPreview_DoesNotDelete(t *testing.T) {
	repo := &fakeNotificationRepo{
		excessIDs: func(context.Context, int) ([]int64, error) { return []int64{1, 2}, nil },
		pruneExcess: func(context.Context, int) ([]int64, error) {
			t.Error("Preview must not prune")
			return nil, nil
		},
	}
	ids, err := usecase.NewNotificationPruner(repo, &fakeEvents{}, 20, discard).Preview(context.Background())
	if err != nil || len(ids) != 2 {
		t.Errorf("Preview = %v, %v", ids, err)
	}
}
