package workflow

import (
	"context"
	"errors"
	"testing"
)

type guardKey string

// Local state set for exercising the machine independent of any concrete
// lifecycle configuration.
const (
	stateDraft    State = "draft"
	statePending  State = "pending"
	stateApproved State = "approved"
	stateRejected State = "rejected"
)

func testStates() []State {
	return []State{stateDraft, statePending, stateApproved, stateRejected}
}

func TestState_String(t *testing.T) {
	if got := stateDraft.String(); got != "draft" {
		t.Errorf("State.String() = %v, want %v", got, "draft")
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerSubmit.String(); got != "SUBMIT" {
		t.Errorf("Trigger.String() = %v, want %v", got, "SUBMIT")
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder(testStates()...)

	config := builder.Configure(stateDraft)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	// Configure same state again should return same config
	config2 := builder.Configure(stateDraft)
	if config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnUnknownState(t *testing.T) {
	builder := NewBuilder(testStates()...)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on a state outside the set")
		}
	}()

	builder.Configure(State("unknown"))
}

func TestBuilder_BuildPanicsOnUnknownInitialState(t *testing.T) {
	builder := NewBuilder(testStates()...)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on a state outside the set")
		}
	}()

	builder.Build(State("unknown"))
}

func TestBuilder_PanicsOnEmptyState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewBuilder() should panic on an empty state")
		}
	}()

	NewBuilder(stateDraft, State(""))
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder(testStates()...)
	builder.Configure(stateDraft).
		Permit(TriggerSubmit, statePending)

	machine := builder.Build(stateDraft)

	if !machine.CanFire(TriggerSubmit) {
		t.Error("CanFire() should return true for permitted trigger")
	}

	if err := machine.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != statePending {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), statePending)
	}
}

func TestStateConfiguration_PermitIf_GuardPasses(t *testing.T) {
	builder := NewBuilder(testStates()...)
	builder.Configure(statePending).
		PermitIf(TriggerApprove, stateApproved, func(ctx context.Context) bool {
			return true
		})

	machine := builder.Build(statePending)

	if err := machine.Fire(context.Background(), TriggerApprove); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != stateApproved {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), stateApproved)
	}
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewBuilder(testStates()...)
	builder.Configure(statePending).
		PermitIf(TriggerApprove, stateApproved, func(ctx context.Context) bool {
			return false
		})

	machine := builder.Build(statePending)

	err := machine.Fire(context.Background(), TriggerApprove)
	if err == nil {
		t.Fatal("Fire() should fail when guard fails")
	}

	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}

	if machine.State() != statePending {
		t.Errorf("State should remain %v after failed Fire(), got %v", statePending, machine.State())
	}
}

func TestStateConfiguration_PermitIf_MultipleTransitions(t *testing.T) {
	key := guardKey("covered")

	builder := NewBuilder(testStates()...)
	builder.Configure(statePending).
		PermitIf(TriggerApprove, stateApproved, func(ctx context.Context) bool {
			return ctx.Value(key).(bool)
		}).
		PermitIf(TriggerApprove, stateRejected, func(ctx context.Context) bool {
			return !ctx.Value(key).(bool)
		})

	machine1 := builder.Build(statePending)
	ctx1 := context.WithValue(context.Background(), key, true)
	if err := machine1.Fire(ctx1, TriggerApprove); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if machine1.State() != stateApproved {
		t.Errorf("State after Fire() = %v, want %v", machine1.State(), stateApproved)
	}

	machine2 := builder.Build(statePending)
	ctx2 := context.WithValue(context.Background(), key, false)
	if err := machine2.Fire(ctx2, TriggerApprove); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if machine2.State() != stateRejected {
		t.Errorf("State after Fire() = %v, want %v", machine2.State(), stateRejected)
	}
}

func TestStateConfiguration_PermitPanicsOnUnknownTarget(t *testing.T) {
	builder := NewBuilder(testStates()...)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on a target state outside the set")
		}
	}()

	builder.Configure(stateDraft).Permit(TriggerSubmit, State("unknown"))
}

func TestStateMachine_CanFire(t *testing.T) {
	builder := NewBuilder(testStates()...)
	builder.Configure(stateDraft).
		Permit(TriggerSubmit, statePending)

	machine := builder.Build(stateDraft)

	tests := []struct {
		trigger  Trigger
		expected bool
	}{
		{TriggerSubmit, true},
		{TriggerApprove, false},
		{TriggerReject, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.trigger), func(t *testing.T) {
			if got := machine.CanFire(tt.trigger); got != tt.expected {
				t.Errorf("CanFire() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder(testStates()...)
	builder.Configure(stateDraft).
		Permit(TriggerSubmit, statePending)

	machine := builder.Build(stateDraft)

	err := machine.Fire(context.Background(), TriggerApprove)
	if err == nil {
		t.Fatal("Fire() should fail for invalid transition")
	}

	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}

	if machine.State() != stateDraft {
		t.Errorf("State should remain %v after failed Fire(), got %v", stateDraft, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	builder := NewBuilder(testStates()...)
	machine := builder.Build(stateDraft)

	err := machine.Fire(context.Background(), TriggerSubmit)
	if err == nil {
		t.Fatal("Fire() should fail when no configuration exists")
	}

	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder(testStates()...)
	builder.Configure(statePending).
		Permit(TriggerApprove, stateApproved).
		Permit(TriggerReject, stateRejected)

	machine := builder.Build(statePending)

	triggers := machine.PermittedTriggers()
	if len(triggers) != 2 {
		t.Errorf("PermittedTriggers() returned %d triggers, want 2", len(triggers))
	}

	hasApprove := false
	hasReject := false
	for _, trigger := range triggers {
		if trigger == TriggerApprove {
			hasApprove = true
		}
		if trigger == TriggerReject {
			hasReject = true
		}
	}

	if !hasApprove || !hasReject {
		t.Errorf("PermittedTriggers() = %v, want both TriggerApprove and TriggerReject", triggers)
	}
}

func TestStateMachine_PermittedTriggers_NoConfiguration(t *testing.T) {
	builder := NewBuilder(testStates()...)
	machine := builder.Build(stateDraft)

	triggers := machine.PermittedTriggers()
	if len(triggers) != 0 {
		t.Errorf("PermittedTriggers() returned %d triggers, want 0", len(triggers))
	}
}

func TestStateMachine_Immutability(t *testing.T) {
	builder := NewBuilder(testStates()...)
	builder.Configure(stateDraft).
		Permit(TriggerSubmit, statePending)

	machine1 := builder.Build(stateDraft)
	machine2 := builder.Build(stateDraft)

	if err := machine1.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}

	if machine1.State() != statePending {
		t.Errorf("machine1 state = %v, want %v", machine1.State(), statePending)
	}

	if machine2.State() != stateDraft {
		t.Errorf("machine2 state = %v, want %v; machines must not share state", machine2.State(), stateDraft)
	}

	// Configuring the builder after Build must not leak into built machines.
	builder.Configure(statePending).Permit(TriggerApprove, stateApproved)

	if machine1.CanFire(TriggerApprove) {
		t.Error("configuration added after Build() should not affect existing machines")
	}
}

func TestIndependentBuilders(t *testing.T) {
	reqBuilder := NewBuilder(stateDraft, statePending)
	budBuilder := NewBuilder(stateApproved, stateRejected)

	reqBuilder.Configure(stateDraft).Permit(TriggerSubmit, statePending)
	budBuilder.Configure(stateApproved).Permit(TriggerReturn, stateRejected)

	reqMachine := reqBuilder.Build(stateDraft)
	budMachine := budBuilder.Build(stateApproved)

	if !reqMachine.CanFire(TriggerSubmit) {
		t.Error("requisition machine should permit its own trigger")
	}
	if reqMachine.CanFire(TriggerReturn) {
		t.Error("requisition machine should not see the other machine's configuration")
	}
	if !budMachine.CanFire(TriggerReturn) {
		t.Error("budget machine should permit its own trigger")
	}
}
