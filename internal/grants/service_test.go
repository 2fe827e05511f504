package grants

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
	"projecttracker/internal/notify"
	"projecttracker/internal/store/memory"
)

type dropDispatcher struct{}

func (dropDispatcher) Publish(context.Context, notify.Event) error { return nil }

func newService(t *testing.T) *Service {
	t.Helper()
	st := memory.New()
	return NewService(st.Grants, nil, notify.NewNotifier(dropDispatcher{}, zap.NewNop()), zap.NewNop())
}

func TestMissingGrantIsEmptySet(t *testing.T) {
	s := newService(t)

	g, err := s.Get(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(g.Capabilities) != 0 {
		t.Errorf("capabilities = %v, want empty", g.Capabilities)
	}
}

func TestAssignReplacesWholeSet(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	if err := s.Assign(ctx, 1, 7, []string{model.CapEdit, model.CapManageTasks}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := s.Assign(ctx, 1, 7, []string{model.CapView}); err != nil {
		t.Fatalf("second Assign: %v", err)
	}

	g, err := s.Get(ctx, 1, 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(g.Capabilities) != 1 || g.Capabilities[0] != model.CapView {
		t.Errorf("capabilities = %v, want [view] (replace, not merge)", g.Capabilities)
	}
}

func TestAssignRejectsUnknownCapability(t *testing.T) {
	s := newService(t)

	err := s.Assign(context.Background(), 1, 7, []string{"make_coffee"})
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}
