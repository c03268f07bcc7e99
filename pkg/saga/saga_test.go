package saga

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type recorder struct {
	calls []string
}

func (r *recorder) action(name string, err error) Action {
	return func(context.Context) error {
		r.calls = append(r.calls, name)
		return err
	}
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	rec := &recorder{}
	err := New("ordered", nil, nil).
		Step("a", rec.action("a", nil), NoCompensation).
		Step("b", rec.action("b", nil), rec.action("undo-b", nil)).
		Step("c", rec.action("c", nil), NoCompensation).
		Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("expected %v, got %v", want, rec.calls)
	}
}

func TestRunCompensatesInReverseAndReturnsOriginalError(t *testing.T) {
	rec := &recorder{}
	dbErr := errors.New("insert failed")

	err := New("register", nil, nil).
		Step("a", rec.action("a", nil), rec.action("undo-a", nil)).
		Step("b", rec.action("b", nil), NoCompensation).
		Step("c", rec.action("c", nil), rec.action("undo-c", nil)).
		Step("d", rec.action("d", dbErr), rec.action("undo-d", nil)).
		Run(context.Background())

	if !errors.Is(err, dbErr) || err != dbErr {
		t.Fatalf("expected original error unchanged, got %v", err)
	}
	want := []string{"a", "b", "c", "d", "undo-c", "undo-a"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("expected %v, got %v", want, rec.calls)
	}
}

func TestCompensationFailureDoesNotMaskError(t *testing.T) {
	rec := &recorder{}
	stepErr := errors.New("step failed")
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	reg := prometheus.NewRegistry()

	err := New("register", logg, metrics.NewSagaMetrics(reg)).
		Step("a", rec.action("a", nil), rec.action("undo-a", nil)).
		Step("b", rec.action("b", nil), rec.action("undo-b", errors.New("undo broke"))).
		Step("c", rec.action("c", stepErr), NoCompensation).
		Run(context.Background())

	if err != stepErr {
		t.Fatalf("expected step error, got %v", err)
	}
	want := []string{"a", "b", "c", "undo-b", "undo-a"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("expected %v, got %v", want, rec.calls)
	}
	if !bytes.Contains(buf.Bytes(), []byte("saga compensation failed")) {
		t.Fatalf("expected compensation failure to be logged; got %s", buf.String())
	}
}

func TestNilCompensationRejectedBeforeAnyAction(t *testing.T) {
	rec := &recorder{}
	err := New("broken", nil, nil).
		Step("a", rec.action("a", nil), NoCompensation).
		Step("b", rec.action("b", nil), nil).
		Run(context.Background())

	if err == nil {
		t.Fatal("expected error for missing compensation")
	}
	if pkgerrors.CodeOf(err) != pkgerrors.CodeInternal {
		t.Fatalf("expected internal code, got %s", pkgerrors.CodeOf(err))
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no actions to run, got %v", rec.calls)
	}
}

func TestFirstStepFailureRunsNoCompensation(t *testing.T) {
	rec := &recorder{}
	stepErr := errors.New("geocode failed")
	err := New("register", nil, nil).
		Step("a", rec.action("a", stepErr), rec.action("undo-a", nil)).
		Step("b", rec.action("b", nil), rec.action("undo-b", nil)).
		Run(context.Background())
	if err != stepErr {
		t.Fatalf("expected step error, got %v", err)
	}
	if want := []string{"a"}; !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("expected %v, got %v", want, rec.calls)
	}
}

func TestCompensationRunsAfterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compensationCtxErr error
	compensated := false

	err := New("cancel", nil, nil).
		Step("a", func(context.Context) error { return nil }, func(c context.Context) error {
			compensated = true
			compensationCtxErr = c.Err()
			return nil
		}).
		Step("b", func(context.Context) error {
			cancel()
			return context.Canceled
		}, NoCompensation).
		Run(ctx)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if !compensated {
		t.Fatal("expected compensation to run")
	}
	if compensationCtxErr != nil {
		t.Fatalf("compensation context should not be canceled, got %v", compensationCtxErr)
	}
}
