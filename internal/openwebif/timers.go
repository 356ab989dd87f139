// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Raw Enigma2 timer states.
const (
	TimerRawWaiting  = 0
	TimerRawPrepared = 1
	TimerRawRunning  = 2
	TimerRawEnded    = 3
)

// AfterEvent is what the receiver does once a timer finishes.
type AfterEvent int

const (
	AfterEventNothing     AfterEvent = 0
	AfterEventStandby     AfterEvent = 1
	AfterEventDeepStandby AfterEvent = 2
	AfterEventAuto        AfterEvent = 3
)

var afterEventNames = map[AfterEvent]string{
	AfterEventNothing:     "nothing",
	AfterEventStandby:     "standby",
	AfterEventDeepStandby: "deepstandby",
	AfterEventAuto:        "auto",
}

// Valid reports whether a is one of the four actions the receiver knows.
func (a AfterEvent) Valid() bool {
	_, ok := afterEventNames[a]
	return ok
}

func (a AfterEvent) String() string {
	if name, ok := afterEventNames[a]; ok {
		return name
	}
	return "afterevent(" + strconv.Itoa(int(a)) + ")"
}

// ParseAfterEvent accepts an action name or its numeric code.
func ParseAfterEvent(s string) (AfterEvent, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		a := AfterEvent(n)
		return a, a.Valid()
	}
	for a, name := range afterEventNames {
		if name == s || (s == "deep" && a == AfterEventDeepStandby) {
			return a, true
		}
	}
	return AfterEventAuto, false
}

// TimerLogEntry is one line of a timer's log.
type TimerLogEntry struct {
	Time    int64
	Code    int
	Message string
}

// Timer is a scheduled recording or zap job on the receiver.
type Timer struct {
	ServiceRef  string
	ServiceName string
	Name        string
	Description string
	Begin       int64
	End         int64
	Duration    int64
	State       int
	Disabled    int
	JustPlay    bool
	AlwaysZap   bool
	AfterEvent  AfterEvent
	Repeated    int
	EIT         int64
	DirName     string
	Tags        []string
	Log         []TimerLogEntry
}

// Key returns the identity the receiver uses to address this timer.
func (t Timer) Key() TimerKey {
	return TimerKey{ServiceRef: t.ServiceRef, Begin: t.Begin, End: t.End}
}

// TimerKey identifies a timer: OpenWebIF has no timer IDs, only (sRef, begin, end).
type TimerKey struct {
	ServiceRef string
	Begin      int64
	End        int64
}

func (k TimerKey) values() url.Values {
	params := url.Values{}
	params.Set("sRef", k.ServiceRef)
	params.Set("begin", strconv.FormatInt(k.Begin, 10))
	params.Set("end", strconv.FormatInt(k.End, 10))
	return params
}

// TimerSpec describes a timer to create or the new state of a changed timer.
type TimerSpec struct {
	ServiceRef  string
	Name        string
	Description string
	Begin       int64
	End         int64
	Disabled    bool
	JustPlay    bool
	AlwaysZap   bool
	AfterEvent  AfterEvent
	Repeated    int
	DirName     string
	Tags        []string
	EIT         int64
}

type timerDTO struct {
	ServiceRef  string          `json:"serviceref"`
	ServiceName string          `json:"servicename"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Begin       IntString       `json:"begin"`
	End         IntString       `json:"end"`
	Duration    IntString       `json:"duration"`
	State       IntString       `json:"state"`
	Disabled    IntString       `json:"disabled"`
	JustPlay    IntString       `json:"justplay"`
	AlwaysZap   IntString       `json:"always_zap"`
	AfterEvent  IntString       `json:"afterevent"`
	Repeated    IntString       `json:"repeated"`
	EIT         IntString       `json:"eit"`
	DirName     string          `json:"dirname"`
	Tags        string          `json:"tags"`
	LogEntries  [][]interface{} `json:"logentries"`
}

type timerListResponse struct {
	Result bool       `json:"result"`
	Timers []timerDTO `json:"timers"`
}

// Timers lists all timers configured on the receiver.
func (c *Client) Timers(ctx context.Context) ([]Timer, error) {
	var resp timerListResponse
	if err := c.getJSON(ctx, "timerlist", "/api/timerlist", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]Timer, 0, len(resp.Timers))
	for _, t := range resp.Timers {
		out = append(out, Timer{
			ServiceRef:  t.ServiceRef,
			ServiceName: t.ServiceName,
			Name:        t.Name,
			Description: t.Description,
			Begin:       t.Begin.Int64(),
			End:         t.End.Int64(),
			Duration:    t.Duration.Int64(),
			State:       int(t.State),
			Disabled:    int(t.Disabled),
			JustPlay:    t.JustPlay != 0,
			AlwaysZap:   t.AlwaysZap != 0,
			AfterEvent:  AfterEvent(t.AfterEvent),
			Repeated:    int(t.Repeated),
			EIT:         t.EIT.Int64(),
			DirName:     t.DirName,
			Tags:        splitTags(t.Tags),
			Log:         parseTimerLog(t.LogEntries),
		})
	}
	return out, nil
}

func splitTags(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Log entries arrive as [timestamp, code, "message"] triples.
func parseTimerLog(raw [][]interface{}) []TimerLogEntry {
	if len(raw) == 0 {
		return nil
	}
	out := make([]TimerLogEntry, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 3 {
			continue
		}
		var e TimerLogEntry
		if ts, ok := entry[0].(float64); ok {
			e.Time = int64(ts)
		}
		if code, ok := entry[1].(float64); ok {
			e.Code = int(code)
		}
		if msg, ok := entry[2].(string); ok {
			e.Message = msg
		}
		out = append(out, e)
	}
	return out
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (s TimerSpec) values() url.Values {
	params := url.Values{}
	params.Set("sRef", s.ServiceRef)
	params.Set("begin", strconv.FormatInt(s.Begin, 10))
	params.Set("end", strconv.FormatInt(s.End, 10))
	params.Set("name", s.Name)
	params.Set("description", s.Description)
	params.Set("disabled", boolParam(s.Disabled))
	params.Set("justplay", boolParam(s.JustPlay))
	params.Set("always_zap", boolParam(s.AlwaysZap))
	params.Set("afterevent", strconv.Itoa(int(s.AfterEvent)))
	params.Set("repeated", strconv.Itoa(s.Repeated))
	if s.DirName != "" {
		params.Set("dirname", s.DirName)
	}
	if len(s.Tags) > 0 {
		params.Set("tags", strings.Join(s.Tags, " "))
	}
	if s.EIT > 0 {
		params.Set("eit", strconv.FormatInt(s.EIT, 10))
	}
	return params
}

// AddTimer creates a timer.
func (c *Client) AddTimer(ctx context.Context, spec TimerSpec) error {
	var res Response
	if err := c.postForm(ctx, "timeradd", "/api/timeradd", spec.values(), &res); err != nil {
		return err
	}
	if !res.Result {
		return timerOperationError("timeradd", res.Message)
	}
	return nil
}

// EventTimerOptions tunes a timer created from an EPG event.
type EventTimerOptions struct {
	JustPlay   bool
	AlwaysZap  bool
	AfterEvent AfterEvent
	DirName    string
	Tags       []string
}

// AddTimerByEvent creates a timer covering an EPG event, letting the receiver
// apply its configured margins.
func (c *Client) AddTimerByEvent(ctx context.Context, sRef string, eventID int64, opts EventTimerOptions) error {
	params := url.Values{}
	params.Set("sRef", sRef)
	params.Set("eventid", strconv.FormatInt(eventID, 10))
	params.Set("justplay", boolParam(opts.JustPlay))
	params.Set("always_zap", boolParam(opts.AlwaysZap))
	params.Set("afterevent", strconv.Itoa(int(opts.AfterEvent)))
	if opts.DirName != "" {
		params.Set("dirname", opts.DirName)
	}
	if len(opts.Tags) > 0 {
		params.Set("tags", strings.Join(opts.Tags, " "))
	}

	var res Response
	if err := c.command(ctx, "timeraddbyeventid", "/api/timeraddbyeventid", params, &res); err != nil {
		return err
	}
	if !res.Result {
		return timerOperationError("timeraddbyeventid", res.Message)
	}
	return nil
}

// buildTimerChange maps an edit onto /api/timerchange parameters: the old
// identity in sRef/begin/end plus channel and change_* for the new values.
func buildTimerChange(old TimerKey, spec TimerSpec) url.Values {
	q := old.values()
	q.Set("channel", spec.ServiceRef)
	q.Set("change_begin", strconv.FormatInt(spec.Begin, 10))
	q.Set("change_end", strconv.FormatInt(spec.End, 10))
	q.Set("change_name", spec.Name)
	q.Set("change_description", spec.Description)
	q.Set("disabled", boolParam(spec.Disabled))
	q.Set("justplay", boolParam(spec.JustPlay))
	q.Set("always_zap", boolParam(spec.AlwaysZap))
	q.Set("afterevent", strconv.Itoa(int(spec.AfterEvent)))
	q.Set("repeated", strconv.Itoa(spec.Repeated))
	if spec.DirName != "" {
		q.Set("dirname", spec.DirName)
	}
	if len(spec.Tags) > 0 {
		q.Set("tags", strings.Join(spec.Tags, " "))
	}
	q.Set("deleteOldOnSave", "1")
	return q
}

// ChangeTimer replaces the timer identified by old with spec.
func (c *Client) ChangeTimer(ctx context.Context, old TimerKey, spec TimerSpec) error {
	var res Response
	if err := c.postForm(ctx, "timerchange", "/api/timerchange", buildTimerChange(old, spec), &res); err != nil {
		return err
	}
	if !res.Result {
		return timerOperationError("timerchange", res.Message)
	}
	return nil
}

// DeleteTimer removes a timer.
func (c *Client) DeleteTimer(ctx context.Context, key TimerKey) error {
	var res Response
	if err := c.command(ctx, "timerdelete", "/api/timerdelete", key.values(), &res); err != nil {
		return err
	}
	if !res.Result {
		return timerOperationError("timerdelete", res.Message)
	}
	return nil
}

type toggleResponse struct {
	Result   bool     `json:"result"`
	Message  string   `json:"message"`
	Disabled FlexBool `json:"disabled"`
}

// ToggleTimer flips the enabled state of a timer and returns whether it is
// now disabled.
func (c *Client) ToggleTimer(ctx context.Context, key TimerKey) (bool, error) {
	var res toggleResponse
	if err := c.command(ctx, "timertogglestatus", "/api/timertogglestatus", key.values(), &res); err != nil {
		return false, err
	}
	if !res.Result {
		return false, timerOperationError("timertogglestatus", res.Message)
	}
	return bool(res.Disabled), nil
}
