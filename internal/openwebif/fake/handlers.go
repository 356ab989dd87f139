// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fake

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

func (r *Receiver) handleServices(w http.ResponseWriter, req *http.Request) {
	ref := req.URL.Query().Get("sRef")
	if ref == "" {
		http.Error(w, "Missing sRef parameter", http.StatusBadRequest)
		return
	}
	r.mu.Lock()
	entries, ok := r.bouquets[ref]
	if !ok {
		entries, ok = r.services[ref]
	}
	r.mu.Unlock()
	if !ok {
		writeJSON(w, map[string]any{"result": true, "services": []any{}})
		return
	}

	rows := make([]map[string]any, 0, len(entries))
	pos := 0
	for _, e := range entries {
		row := map[string]any{"servicereference": e.Ref, "servicename": e.Name, "program": 0}
		if !strings.HasPrefix(e.Ref, "1:64:") {
			pos++
			row["pos"] = pos
		}
		rows = append(rows, row)
	}
	writeJSON(w, map[string]any{"result": true, "services": rows})
}

func (r *Receiver) serviceName(ref string) string {
	for _, list := range r.services {
		for _, e := range list {
			if e.Ref == ref {
				return e.Name
			}
		}
	}
	return ""
}

func (r *Receiver) eventJSON(ref string, ev Event, now int64) map[string]any {
	return map[string]any{
		"id":              ev.ID,
		"title":           ev.Title,
		"shortdesc":       ev.Short,
		"longdesc":        ev.Long,
		"begin_timestamp": ev.Begin,
		"duration_sec":    ev.Duration,
		"sref":            ref,
		"sname":           r.serviceName(ref),
		"now_timestamp":   now,
	}
}

// placeholder mirrors what receivers send for services without EPG data.
func placeholder(ref, name string, now int64) map[string]any {
	return map[string]any{
		"id": 0, "title": "", "shortdesc": "", "longdesc": "",
		"begin_timestamp": 0, "duration_sec": 0,
		"sref": ref, "sname": name, "now_timestamp": now,
	}
}

func (r *Receiver) sortedEvents(ref string) []Event {
	evs := append([]Event(nil), r.events[ref]...)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].Begin < evs[j].Begin })
	return evs
}

func (r *Receiver) nowNext(req *http.Request, withNext bool) []map[string]any {
	bRef := req.URL.Query().Get("bRef")
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().Unix()

	out := make([]map[string]any, 0)
	for _, svc := range r.services[bRef] {
		if strings.HasPrefix(svc.Ref, "1:64:") {
			continue
		}
		var current, next *Event
		evs := r.sortedEvents(svc.Ref)
		for i := range evs {
			ev := evs[i]
			if ev.Begin <= now && now < ev.Begin+ev.Duration {
				current = &evs[i]
			} else if ev.Begin > now && next == nil {
				next = &evs[i]
			}
		}
		if current != nil {
			out = append(out, r.eventJSON(svc.Ref, *current, now))
		} else {
			out = append(out, placeholder(svc.Ref, svc.Name, now))
		}
		if withNext {
			if next != nil {
				out = append(out, r.eventJSON(svc.Ref, *next, now))
			} else {
				out = append(out, placeholder(svc.Ref, svc.Name, now))
			}
		}
	}
	return out
}

func (r *Receiver) handleNowNext(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, map[string]any{"result": true, "events": r.nowNext(req, true)})
}

func (r *Receiver) handleNow(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, map[string]any{"result": true, "events": r.nowNext(req, false)})
}

func (r *Receiver) window(req *http.Request) (int64, int64) {
	from := int64Param(req, "time")
	to := int64Param(req, "endTime")
	if to == 0 {
		to = 1<<62 - 1
	}
	return from, to
}

func (r *Receiver) handleEPGService(w http.ResponseWriter, req *http.Request) {
	ref := req.URL.Query().Get("sRef")
	from, to := r.window(req)
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().Unix()

	out := make([]map[string]any, 0)
	for _, ev := range r.sortedEvents(ref) {
		if ev.Begin+ev.Duration > from && ev.Begin < to {
			out = append(out, r.eventJSON(ref, ev, now))
		}
	}
	writeJSON(w, map[string]any{"result": true, "events": out})
}

func (r *Receiver) handleEPGMulti(w http.ResponseWriter, req *http.Request) {
	bRef := req.URL.Query().Get("bRef")
	from, to := r.window(req)
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().Unix()

	out := make([]map[string]any, 0)
	for _, svc := range r.services[bRef] {
		for _, ev := range r.sortedEvents(svc.Ref) {
			if ev.Begin+ev.Duration > from && ev.Begin < to {
				out = append(out, r.eventJSON(svc.Ref, ev, now))
			}
		}
	}
	writeJSON(w, map[string]any{"result": true, "events": out})
}

func (r *Receiver) handleEPGSearch(w http.ResponseWriter, req *http.Request) {
	q := strings.ToLower(req.URL.Query().Get("search"))
	full := req.URL.Query().Get("full") == "1"
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().Unix()

	refs := make([]string, 0, len(r.events))
	for ref := range r.events {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	out := make([]map[string]any, 0)
	for _, ref := range refs {
		for _, ev := range r.sortedEvents(ref) {
			hay := strings.ToLower(ev.Title)
			if full {
				hay += " " + strings.ToLower(ev.Short+" "+ev.Long)
			}
			if q != "" && strings.Contains(hay, q) {
				out = append(out, r.eventJSON(ref, ev, now))
			}
		}
	}
	writeJSON(w, map[string]any{"result": true, "events": out})
}

func timerJSON(t Timer) map[string]any {
	return map[string]any{
		"serviceref":  t.ServiceRef,
		"servicename": t.ServiceName,
		"name":        t.Name,
		"description": t.Description,
		"begin":       t.Begin,
		"end":         t.End,
		"duration":    t.End - t.Begin,
		"state":       t.State,
		"disabled":    t.Disabled,
		"justplay":    boolInt(t.JustPlay),
		"always_zap":  boolInt(t.AlwaysZap),
		"afterevent":  t.AfterEvent,
		"repeated":    t.Repeated,
		"eit":         t.EIT,
		"dirname":     t.DirName,
		"tags":        t.Tags,
		"logentries":  [][]any{{t.Begin - 60, 15, "record time changed, start prepare is now: " + strconv.FormatInt(t.Begin-20, 10)}},
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *Receiver) handleTimerList(w http.ResponseWriter, _ *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]map[string]any, 0, len(r.timers))
	for _, t := range r.timers {
		out = append(out, timerJSON(t))
	}
	writeJSON(w, map[string]any{"result": true, "timers": out})
}

// conflicts returns the names of enabled recording timers overlapping
// [begin, end). The fake models a receiver with a single tuner.
func (r *Receiver) conflicts(begin, end int64, skip int) []string {
	var names []string
	for i, t := range r.timers {
		if i == skip || t.Disabled != 0 || t.JustPlay {
			continue
		}
		if begin < t.End && t.Begin < end {
			names = append(names, t.Name)
		}
	}
	return names
}

// conflictMessage is the text OpenWebIF answers with when a timer clashes.
func conflictMessage(names []string) string {
	return "Conflicting Timer(s) detected! " + strings.Join(names, " / ")
}

func timerFromRequest(req *http.Request) Timer {
	after, _ := strconv.Atoi(param(req, "afterevent"))
	repeated, _ := strconv.Atoi(param(req, "repeated"))
	return Timer{
		ServiceRef:  param(req, "sRef"),
		Name:        param(req, "name"),
		Description: param(req, "description"),
		Begin:       int64Param(req, "begin"),
		End:         int64Param(req, "end"),
		Disabled:    int(int64Param(req, "disabled")),
		JustPlay:    param(req, "justplay") == "1",
		AlwaysZap:   param(req, "always_zap") == "1",
		AfterEvent:  after,
		Repeated:    repeated,
		EIT:         int64Param(req, "eit"),
		DirName:     param(req, "dirname"),
		Tags:        param(req, "tags"),
	}
}

func (r *Receiver) handleTimerAdd(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	t := timerFromRequest(req)
	if t.ServiceRef == "" || t.Begin == 0 || t.End <= t.Begin {
		result(w, false, "Missing or invalid parameter")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clash := r.conflicts(t.Begin, t.End, -1); !t.JustPlay && t.Disabled == 0 && len(clash) > 0 {
		result(w, false, conflictMessage(clash))
		return
	}
	t.ServiceName = r.serviceName(t.ServiceRef)
	r.timers = append(r.timers, t)
	result(w, true, "Timer '"+t.Name+"' added")
}

func (r *Receiver) handleTimerAddByEvent(w http.ResponseWriter, req *http.Request) {
	ref := param(req, "sRef")
	id := int64Param(req, "eventid")
	r.mu.Lock()
	defer r.mu.Unlock()

	var ev *Event
	for _, e := range r.events[ref] {
		if e.ID == id {
			e := e
			ev = &e
			break
		}
	}
	if ev == nil {
		result(w, false, "EventId not found")
		return
	}
	after, _ := strconv.Atoi(param(req, "afterevent"))
	t := Timer{
		ServiceRef:  ref,
		ServiceName: r.serviceName(ref),
		Name:        ev.Title,
		Description: ev.Short,
		Begin:       ev.Begin - 120,
		End:         ev.Begin + ev.Duration + 300,
		JustPlay:    param(req, "justplay") == "1",
		AlwaysZap:   param(req, "always_zap") == "1",
		AfterEvent:  after,
		EIT:         ev.ID,
		DirName:     param(req, "dirname"),
		Tags:        param(req, "tags"),
	}
	if clash := r.conflicts(t.Begin, t.End, -1); !t.JustPlay && len(clash) > 0 {
		result(w, false, conflictMessage(clash))
		return
	}
	r.timers = append(r.timers, t)
	result(w, true, "Timer '"+t.Name+"' added")
}

func (r *Receiver) findTimer(ref string, begin, end int64) int {
	for i, t := range r.timers {
		if t.ServiceRef == ref && t.Begin == begin && t.End == end {
			return i
		}
	}
	return -1
}

func (r *Receiver) handleTimerChange(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.findTimer(param(req, "sRef"), int64Param(req, "begin"), int64Param(req, "end"))
	if idx < 0 {
		result(w, false, "Timer not found")
		return
	}
	after, _ := strconv.Atoi(param(req, "afterevent"))
	repeated, _ := strconv.Atoi(param(req, "repeated"))
	t := Timer{
		ServiceRef:  param(req, "channel"),
		Name:        param(req, "change_name"),
		Description: param(req, "change_description"),
		Begin:       int64Param(req, "change_begin"),
		End:         int64Param(req, "change_end"),
		Disabled:    int(int64Param(req, "disabled")),
		JustPlay:    param(req, "justplay") == "1",
		AlwaysZap:   param(req, "always_zap") == "1",
		AfterEvent:  after,
		Repeated:    repeated,
		EIT:         r.timers[idx].EIT,
		DirName:     param(req, "dirname"),
		Tags:        param(req, "tags"),
	}
	if clash := r.conflicts(t.Begin, t.End, idx); !t.JustPlay && t.Disabled == 0 && len(clash) > 0 {
		result(w, false, conflictMessage(clash))
		return
	}
	t.ServiceName = r.serviceName(t.ServiceRef)
	r.timers[idx] = t
	result(w, true, "Timer '"+t.Name+"' changed")
}

func (r *Receiver) handleTimerDelete(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.findTimer(param(req, "sRef"), int64Param(req, "begin"), int64Param(req, "end"))
	if idx < 0 {
		result(w, false, "Timer not found")
		return
	}
	r.timers = append(r.timers[:idx], r.timers[idx+1:]...)
	result(w, true, "The timer has been deleted successfully")
}

func (r *Receiver) handleTimerToggle(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.findTimer(param(req, "sRef"), int64Param(req, "begin"), int64Param(req, "end"))
	if idx < 0 {
		result(w, false, "Timer not found")
		return
	}
	if r.timers[idx].Disabled == 0 {
		r.timers[idx].Disabled = 1
	} else {
		r.timers[idx].Disabled = 0
	}
	disabled := r.timers[idx].Disabled == 1
	msg := "Timer enabled"
	if disabled {
		msg = "Timer disabled"
	}
	writeJSON(w, map[string]any{"result": true, "message": msg, "disabled": disabled})
}

func (r *Receiver) handleMovieList(w http.ResponseWriter, req *http.Request) {
	dir := req.URL.Query().Get("dirname")
	if dir == "" {
		dir = "/media/hdd/movie/"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]map[string]any, 0, len(r.movies))
	for _, m := range r.movies {
		out = append(out, map[string]any{
			"serviceref":          m.ServiceRef,
			"eventname":           m.Title,
			"servicename":         m.ServiceName,
			"description":         m.Description,
			"descriptionExtended": "",
			"length":              m.Length,
			"filesize":            m.Size,
			"filename":            m.Filename,
			"fullname":            m.ServiceRef,
			"tags":                "",
			"recordingtime":       strconv.FormatInt(m.RecordingTime, 10),
			"lastseen":            0,
		})
	}
	writeJSON(w, map[string]any{
		"result":    true,
		"directory": dir,
		"bookmarks": []string{"/media/hdd/movie/", "/media/hdd/movie/series/"},
		"movies":    out,
	})
}

func (r *Receiver) handleMovieDelete(w http.ResponseWriter, req *http.Request) {
	ref := param(req, "sRef")
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.movies {
		if m.ServiceRef == ref {
			r.movies = append(r.movies[:i], r.movies[i+1:]...)
			result(w, true, "The movie has been deleted successfully")
			return
		}
	}
	result(w, false, "Could not delete movie: not found")
}

func info() map[string]any {
	return map[string]any{
		"brand":     "Fake",
		"model":     "Receiver 4K",
		"boxtype":   "fake4k",
		"chipset":   "bcm7252s",
		"imagever":  "8.3",
		"enigmaver": "2024-01-01",
		"webifver":  "OWIF 2.2.0",
		"kernelver": "5.15.0",
		"uptime":    "3d 4:05",
		"tuners":    []map[string]any{{"name": "Tuner A", "type": "DVB-S2X"}, {"name": "Tuner B", "type": "DVB-C"}},
		"hdd":       []map[string]any{{"model": "WDC", "capacity": "1.8 TB", "free": "900 GB"}},
		"ifaces":    []map[string]any{{"name": "eth0", "mac": "00:11:22:33:44:55", "ip": "192.168.1.20", "dhcp": true}},
	}
}

func (r *Receiver) handleAbout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"result": true, "info": info()})
}

func (r *Receiver) handleDeviceInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, info())
}

func (r *Receiver) handleStatusInfo(w http.ResponseWriter, _ *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	writeJSON(w, map[string]any{
		"inStandby":              strconv.FormatBool(r.standby),
		"isRecording":            "false",
		"volume":                 r.volume,
		"muted":                  r.muted,
		"currservice_station":    r.serviceName(r.current),
		"currservice_serviceref": r.current,
		"currservice_name":       "",
	})
}

func (r *Receiver) handleSignal(w http.ResponseWriter, _ *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]any{
		"result":      true,
		"snr":         r.snr,
		"snr_db":      strconv.FormatFloat(float64(r.snr)/6.0, 'f', 2, 64) + " dB",
		"agc":         90,
		"ber":         0,
		"tunertype":   "DVB-S2",
		"tunernumber": 0,
	}
	if r.lockField {
		out["lock"] = r.snr > 50
	}
	writeJSON(w, out)
}

func (r *Receiver) handleZap(w http.ResponseWriter, req *http.Request) {
	ref := req.URL.Query().Get("sRef")
	if ref == "" {
		result(w, false, "Parameter sRef missing")
		return
	}
	r.mu.Lock()
	r.current = ref
	r.mu.Unlock()
	result(w, true, "Active service is now '"+ref+"'")
}

func (r *Receiver) handleRemote(w http.ResponseWriter, req *http.Request) {
	code, err := strconv.Atoi(req.URL.Query().Get("command"))
	if err != nil {
		result(w, false, "the command parameter is missing")
		return
	}
	r.mu.Lock()
	r.keys = append(r.keys, code)
	r.mu.Unlock()
	result(w, true, "RC command '"+strconv.Itoa(code)+"' has been issued")
}

func (r *Receiver) handlePower(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := req.URL.Query().Get("newstate"); s != "" {
		switch s {
		case "0":
			r.standby = !r.standby
		case "4":
			r.standby = false
		case "5":
			r.standby = true
		}
	}
	writeJSON(w, map[string]any{"result": true, "instandby": r.standby})
}

func (r *Receiver) handleVolume(w http.ResponseWriter, req *http.Request) {
	set := req.URL.Query().Get("set")
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case set == "up":
		r.volume = min(100, r.volume+5)
	case set == "down":
		r.volume = max(0, r.volume-5)
	case set == "mute":
		r.muted = !r.muted
	case set == "state", set == "":
	case strings.HasPrefix(set, "set"):
		n, err := strconv.Atoi(strings.TrimPrefix(set, "set"))
		if err != nil {
			writeJSON(w, map[string]any{"result": false, "message": "Wrong parameter format for set=" + set})
			return
		}
		r.volume = n
	default:
		writeJSON(w, map[string]any{"result": false, "message": "Unknown Volume command " + set})
		return
	}
	writeJSON(w, map[string]any{"result": true, "message": "state", "current": r.volume, "ismute": r.muted})
}

func (r *Receiver) handleMessage(w http.ResponseWriter, req *http.Request) {
	text := req.URL.Query().Get("text")
	if text == "" {
		result(w, false, "Parameter text missing")
		return
	}
	r.mu.Lock()
	r.messages = append(r.messages, text)
	r.mu.Unlock()
	result(w, true, "Message sent successfully!")
}

// grabJPEG is the smallest JPEG header the fake needs to return.
var grabJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0xFF, 0xD9}

func (r *Receiver) handleGrab(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(grabJPEG)
}
