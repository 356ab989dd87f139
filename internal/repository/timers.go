// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/e2remote/internal/filter"
	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/metrics"
	"github.com/ManuGH/e2remote/internal/openwebif"
)

// ErrInvalidTimer marks timer input rejected before it reaches the receiver.
var ErrInvalidTimer = errors.New("invalid timer")

// Timer states as presented to users.
const (
	TimerStateScheduled = "scheduled"
	TimerStateRecording = "recording"
	TimerStateCompleted = "completed"
	TimerStateDisabled  = "disabled"
	TimerStateUnknown   = "unknown"
)

// TimerStates lists the states accepted by TimersQuery.State.
func TimerStates() []string {
	return []string{TimerStateScheduled, TimerStateRecording, TimerStateCompleted, TimerStateDisabled, TimerStateUnknown}
}

// Timer is a receiver timer with a resolved state.
type Timer struct {
	ID          string               `json:"id"`
	ServiceRef  string               `json:"service_ref"`
	ServiceName string               `json:"service_name"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Begin       int64                `json:"begin"`
	End         int64                `json:"end"`
	State       string               `json:"state"`
	JustPlay    bool                 `json:"just_play"`
	AlwaysZap   bool                 `json:"always_zap"`
	AfterEvent  openwebif.AfterEvent `json:"after_event"`
	Repeated    int                  `json:"repeated"`
	DirName     string               `json:"dirname,omitempty"`
	Tags        []string             `json:"tags,omitempty"`
	EIT         int64                `json:"eit,omitempty"`
}

// Key returns the receiver-side identity of the timer.
func (t Timer) Key() openwebif.TimerKey {
	return openwebif.TimerKey{ServiceRef: t.ServiceRef, Begin: t.Begin, End: t.End}
}

// SearchFields ranks a timer for filtering.
func (t Timer) SearchFields() []filter.Field {
	return filter.TimerFields(openwebif.Timer{Name: t.Name, ServiceName: t.ServiceName, Description: t.Description})
}

// TimerState maps the receiver's raw state to a presentation state. A
// disabled timer is always "disabled"; unknown raw states fall back to the
// timer's time window.
func TimerState(t openwebif.Timer, now time.Time) string {
	if t.Disabled != 0 {
		return TimerStateDisabled
	}
	switch t.State {
	case openwebif.TimerRawWaiting:
		return TimerStateScheduled
	case openwebif.TimerRawRunning:
		return TimerStateRecording
	case openwebif.TimerRawEnded:
		return TimerStateCompleted
	}
	if t.Begin <= 0 || t.End <= t.Begin {
		return TimerStateUnknown
	}
	ts := now.Unix()
	switch {
	case ts < t.Begin:
		return TimerStateScheduled
	case ts < t.End:
		return TimerStateRecording
	default:
		return TimerStateCompleted
	}
}

// TimersQuery filters List.
type TimersQuery struct {
	State string
	From  int64
}

// TimerDraft is the content of the timer setup dialog.
type TimerDraft struct {
	ServiceRef  string
	Name        string
	Description string
	Begin       time.Time
	End         time.Time
	Disabled    bool
	JustPlay    bool
	AlwaysZap   bool
	AfterEvent  openwebif.AfterEvent
	Repeated    int
	DirName     string
	Tags        []string
}

// Validate reports every problem with the draft at once.
func (d TimerDraft) Validate() error {
	var errs []error
	if strings.TrimSpace(d.ServiceRef) == "" {
		errs = append(errs, errors.New("service is required"))
	}
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if d.Begin.IsZero() || d.End.IsZero() {
		errs = append(errs, errors.New("begin and end are required"))
	} else if !d.End.After(d.Begin) {
		errs = append(errs, errors.New("end must be after begin"))
	}
	if d.Repeated < 0 || d.Repeated > 127 {
		errs = append(errs, fmt.Errorf("repeat mask %d out of range 0..127", d.Repeated))
	}
	if !d.AfterEvent.Valid() {
		errs = append(errs, fmt.Errorf("after event %d out of range 0..3", d.AfterEvent))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidTimer, errors.Join(errs...))
}

// Spec converts a validated draft into the receiver request.
func (d TimerDraft) Spec() openwebif.TimerSpec {
	return openwebif.TimerSpec{
		ServiceRef:  strings.TrimSpace(d.ServiceRef),
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Begin:       d.Begin.Unix(),
		End:         d.End.Unix(),
		Disabled:    d.Disabled,
		JustPlay:    d.JustPlay,
		AlwaysZap:   d.AlwaysZap,
		AfterEvent:  d.AfterEvent,
		Repeated:    d.Repeated,
		DirName:     d.DirName,
		Tags:        d.Tags,
	}
}

// DraftFromTimer pre-fills the setup dialog for editing an existing timer.
func DraftFromTimer(t Timer) TimerDraft {
	return TimerDraft{
		ServiceRef:  t.ServiceRef,
		Name:        t.Name,
		Description: t.Description,
		Begin:       time.Unix(t.Begin, 0),
		End:         time.Unix(t.End, 0),
		Disabled:    t.State == TimerStateDisabled,
		JustPlay:    t.JustPlay,
		AlwaysZap:   t.AlwaysZap,
		AfterEvent:  t.AfterEvent,
		Repeated:    t.Repeated,
		DirName:     t.DirName,
		Tags:        t.Tags,
	}
}

// DraftFromEvent pre-fills the setup dialog from an EPG event.
func DraftFromEvent(ev openwebif.Event, afterEvent openwebif.AfterEvent) TimerDraft {
	return TimerDraft{
		ServiceRef:  ev.ServiceRef,
		Name:        ev.Title,
		Description: ev.ShortDesc,
		Begin:       time.Unix(ev.Begin, 0),
		End:         time.Unix(ev.End(), 0),
		AfterEvent:  afterEvent,
	}
}

// Timers manages receiver timers.
type Timers struct {
	provider *Provider
	clock    Clock
}

// NewTimers creates a timer repository.
func NewTimers(p *Provider, clock Clock) *Timers {
	if clock == nil {
		clock = RealClock{}
	}
	return &Timers{provider: p, clock: clock}
}

// List returns the receiver's timers ordered by begin time.
func (r *Timers) List(ctx context.Context, q TimersQuery) ([]Timer, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	timers, err := c.Timers(ctx)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	mapped := make([]Timer, 0, len(timers))
	for _, t := range timers {
		state := TimerState(t, now)
		if q.State != "" && q.State != "all" && state != q.State {
			continue
		}
		if q.From > 0 && t.End < q.From {
			continue
		}
		mapped = append(mapped, Timer{
			ID:          MakeTimerID(t.Key()),
			ServiceRef:  t.ServiceRef,
			ServiceName: t.ServiceName,
			Name:        t.Name,
			Description: t.Description,
			Begin:       t.Begin,
			End:         t.End,
			State:       state,
			JustPlay:    t.JustPlay,
			AlwaysZap:   t.AlwaysZap,
			AfterEvent:  t.AfterEvent,
			Repeated:    t.Repeated,
			DirName:     t.DirName,
			Tags:        t.Tags,
			EIT:         t.EIT,
		})
	}
	slices.SortStableFunc(mapped, func(a, b Timer) int {
		switch {
		case a.Begin < b.Begin:
			return -1
		case a.Begin > b.Begin:
			return 1
		}
		return 0
	})
	return mapped, nil
}

// Add validates and creates a timer.
func (r *Timers) Add(ctx context.Context, d TimerDraft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return err
	}
	spec := d.Spec()
	if err := recordTimerOp("add", c.AddTimer(ctx, spec)); err != nil {
		return err
	}
	r.logged(ctx, "repository.timer_added", spec.ServiceRef, spec.Begin, spec.End)
	return nil
}

// AddForEvent creates a timer covering an EPG event.
func (r *Timers) AddForEvent(ctx context.Context, serviceRef string, eventID int64, opts openwebif.EventTimerOptions) error {
	if strings.TrimSpace(serviceRef) == "" || eventID <= 0 {
		return fmt.Errorf("%w: service and event id are required", ErrInvalidTimer)
	}
	if !opts.AfterEvent.Valid() {
		return fmt.Errorf("%w: after event %d out of range 0..3", ErrInvalidTimer, opts.AfterEvent)
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return err
	}
	return recordTimerOp("add_event", c.AddTimerByEvent(ctx, serviceRef, eventID, opts))
}

// Change replaces the timer identified by key with the draft.
func (r *Timers) Change(ctx context.Context, key openwebif.TimerKey, d TimerDraft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return err
	}
	return recordTimerOp("change", c.ChangeTimer(ctx, key, d.Spec()))
}

// Delete removes a timer.
func (r *Timers) Delete(ctx context.Context, key openwebif.TimerKey) error {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return err
	}
	if err := recordTimerOp("delete", c.DeleteTimer(ctx, key)); err != nil {
		return err
	}
	r.logged(ctx, "repository.timer_deleted", key.ServiceRef, key.Begin, key.End)
	return nil
}

// Toggle flips a timer between enabled and disabled and reports whether it
// is now disabled.
func (r *Timers) Toggle(ctx context.Context, key openwebif.TimerKey) (bool, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return false, err
	}
	disabled, err := c.ToggleTimer(ctx, key)
	return disabled, recordTimerOp("toggle", err)
}

func recordTimerOp(op string, err error) error {
	outcome := "success"
	switch {
	case openwebif.IsTimerConflict(err):
		outcome = "conflict"
	case openwebif.IsTimerNotFound(err):
		outcome = "not_found"
	case err != nil:
		outcome = "failure"
	}
	metrics.RecordTimerOperation(op, outcome)
	return err
}

func (r *Timers) logged(ctx context.Context, event, sRef string, begin, end int64) {
	logger := xglog.WithComponentFromContext(ctx, "repository")
	logger.Info().
		Str(xglog.FieldEvent, event).
		Str(xglog.FieldServiceRef, sRef).
		Str(xglog.FieldTimerID, MakeTimerID(openwebif.TimerKey{ServiceRef: sRef, Begin: begin, End: end})).
		Msg("timer updated")
}
