// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fake provides an in-memory OpenWebIF receiver for tests.
package fake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Root references as the receiver expects them in /api/getservices.
const (
	rootTV    = `1:7:1:0:0:0:0:0:0:0:FROM BOUQUET "bouquets.tv" ORDER BY bouquet`
	rootRadio = `1:7:2:0:0:0:0:0:0:0:FROM BOUQUET "bouquets.radio" ORDER BY bouquet`
)

// Default fixture references.
const (
	FavouritesRef = `1:7:1:0:0:0:0:0:0:0:FROM BOUQUET "userbouquet.favourites.tv" ORDER BY bouquet`
	HDRef         = `1:7:1:0:0:0:0:0:0:0:FROM BOUQUET "userbouquet.hd.tv" ORDER BY bouquet`
	RadioRef      = `1:7:2:0:0:0:0:0:0:0:FROM BOUQUET "userbouquet.radio.radio" ORDER BY bouquet`
	MarkerRef     = "1:64:0:0:0:0:0:0:0:0:"

	ARDRef  = "1:0:19:283D:3FB:1:C00000:0:0:0:"
	ZDFRef  = "1:0:19:2B66:3F3:1:C00000:0:0:0:"
	ArteRef = "1:0:19:283E:3FB:1:C00000:0:0:0:"
	DLFRef  = "1:0:2:6F1C:437:1:C00000:0:0:0:"
)

// Entry is a bouquet or service row.
type Entry struct {
	Ref  string
	Name string
}

// Event is an EPG entry attached to a service.
type Event struct {
	ID       int64
	Title    string
	Short    string
	Long     string
	Begin    int64
	Duration int64
}

// Timer is a timer as the fake stores it.
type Timer struct {
	ServiceRef  string
	ServiceName string
	Name        string
	Description string
	Begin       int64
	End         int64
	State       int
	Disabled    int
	JustPlay    bool
	AlwaysZap   bool
	AfterEvent  int
	Repeated    int
	EIT         int64
	DirName     string
	Tags        string
}

// Movie is a recording as the fake stores it.
type Movie struct {
	ServiceRef    string
	Title         string
	ServiceName   string
	Description   string
	Length        string
	Filename      string
	Size          int64
	RecordingTime int64
}

// Receiver is a stateful OpenWebIF stand-in served over httptest.
type Receiver struct {
	*httptest.Server

	mu        sync.Mutex
	now       func() time.Time
	bouquets  map[string][]Entry
	services  map[string][]Entry
	events    map[string][]Event
	timers    []Timer
	movies    []Movie
	failures  map[string]int
	delays    map[string]time.Duration
	requests  []string
	keys      []int
	messages  []string
	current   string
	standby   bool
	volume    int
	muted     bool
	snr       int
	lockField bool
	username  string
	password  string
}

// New starts a receiver populated with default fixtures. The server is closed
// through t.Cleanup by the caller or explicitly via Close.
func New() *Receiver {
	r := &Receiver{
		now:      time.Now,
		failures: make(map[string]int),
		delays:   make(map[string]time.Duration),
	}
	r.reset()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/getservices", r.handleServices)
	mux.HandleFunc("/api/epgnownext", r.handleNowNext)
	mux.HandleFunc("/api/epgnow", r.handleNow)
	mux.HandleFunc("/api/epgservice", r.handleEPGService)
	mux.HandleFunc("/api/epgmulti", r.handleEPGMulti)
	mux.HandleFunc("/api/epgsearch", r.handleEPGSearch)
	mux.HandleFunc("/api/timerlist", r.handleTimerList)
	mux.HandleFunc("/api/timeradd", r.handleTimerAdd)
	mux.HandleFunc("/api/timeraddbyeventid", r.handleTimerAddByEvent)
	mux.HandleFunc("/api/timerchange", r.handleTimerChange)
	mux.HandleFunc("/api/timerdelete", r.handleTimerDelete)
	mux.HandleFunc("/api/timertogglestatus", r.handleTimerToggle)
	mux.HandleFunc("/api/movielist", r.handleMovieList)
	mux.HandleFunc("/api/moviedelete", r.handleMovieDelete)
	mux.HandleFunc("/api/about", r.handleAbout)
	mux.HandleFunc("/api/deviceinfo", r.handleDeviceInfo)
	mux.HandleFunc("/api/statusinfo", r.handleStatusInfo)
	mux.HandleFunc("/api/signal", r.handleSignal)
	mux.HandleFunc("/api/zap", r.handleZap)
	mux.HandleFunc("/api/remotecontrol", r.handleRemote)
	mux.HandleFunc("/api/powerstate", r.handlePower)
	mux.HandleFunc("/api/vol", r.handleVolume)
	mux.HandleFunc("/api/message", r.handleMessage)
	mux.HandleFunc("/grab", r.handleGrab)

	r.Server = httptest.NewServer(r.middleware(mux))
	return r
}

func (r *Receiver) reset() {
	r.bouquets = map[string][]Entry{
		rootTV: {
			{Ref: FavouritesRef, Name: "Favourites (TV)"},
			{Ref: MarkerRef, Name: "--- separator ---"},
			{Ref: HDRef, Name: "HD Channels"},
		},
		rootRadio: {
			{Ref: RadioRef, Name: "Radio"},
		},
	}
	r.services = map[string][]Entry{
		FavouritesRef: {
			{Ref: ARDRef, Name: "Das Erste HD"},
			{Ref: MarkerRef, Name: "News"},
			{Ref: ZDFRef, Name: "ZDF HD"},
			{Ref: ArteRef, Name: "arte HD"},
		},
		HDRef: {
			{Ref: ARDRef, Name: "Das Erste HD"},
			{Ref: ArteRef, Name: "arte HD"},
		},
		RadioRef: {
			{Ref: DLFRef, Name: "Deutschlandfunk"},
		},
	}
	r.events = make(map[string][]Event)
	r.timers = nil
	r.movies = nil
	r.current = ARDRef
	r.volume = 40
	r.snr = 80
	r.lockField = true
}

// SetNow pins the clock used for now/next selection.
func (r *Receiver) SetNow(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = func() time.Time { return now }
}

// RequireAuth makes every endpoint demand basic auth.
func (r *Receiver) RequireAuth(username, password string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.username, r.password = username, password
}

// SetFailures makes the next count requests to path answer 500.
func (r *Receiver) SetFailures(path string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[path] = count
}

// SetDelay delays every response to path.
func (r *Receiver) SetDelay(path string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays[path] = d
}

// SetSignal configures /api/signal. withLock=false omits the lock field like
// older images do.
func (r *Receiver) SetSignal(snr int, withLock bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snr, r.lockField = snr, withLock
}

// AddBouquet appends a bouquet to the TV or radio root.
func (r *Receiver) AddBouquet(radio bool, ref, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	root := rootTV
	if radio {
		root = rootRadio
	}
	r.bouquets[root] = append(r.bouquets[root], Entry{Ref: ref, Name: name})
}

// AddService appends a service to a bouquet.
func (r *Receiver) AddService(bouquetRef, ref, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[bouquetRef] = append(r.services[bouquetRef], Entry{Ref: ref, Name: name})
}

// AddEvent attaches an EPG event to a service.
func (r *Receiver) AddEvent(serviceRef string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[serviceRef] = append(r.events[serviceRef], ev)
}

// AddTimer stores a timer directly, bypassing conflict checks.
func (r *Receiver) AddTimer(t Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = append(r.timers, t)
}

// AddMovie stores a recording.
func (r *Receiver) AddMovie(m Movie) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movies = append(r.movies, m)
}

// Timers returns a copy of the stored timers.
func (r *Receiver) Timers() []Timer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Timer(nil), r.timers...)
}

// Movies returns a copy of the stored recordings.
func (r *Receiver) Movies() []Movie {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Movie(nil), r.movies...)
}

// Requests returns the paths requested so far, in order.
func (r *Receiver) Requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...)
}

// RequestCount counts requests to path.
func (r *Receiver) RequestCount(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.requests {
		if p == path {
			n++
		}
	}
	return n
}

// Keys returns the remote control codes received.
func (r *Receiver) Keys() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.keys...)
}

// Messages returns the on-screen messages received.
func (r *Receiver) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// CurrentService returns the service the receiver is tuned to.
func (r *Receiver) CurrentService() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Standby reports the fake power state.
func (r *Receiver) Standby() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.standby
}

// HostPort returns host and port of the listening server.
func (r *Receiver) HostPort() (string, int) {
	u, _ := url.Parse(r.URL)
	port, _ := strconv.Atoi(u.Port())
	return u.Hostname(), port
}

func (r *Receiver) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.requests = append(r.requests, req.URL.Path)
		user, pass := r.username, r.password
		delay := r.delays[req.URL.Path]
		fail := r.failures[req.URL.Path] > 0
		if fail {
			r.failures[req.URL.Path]--
		}
		r.mu.Unlock()

		if user != "" || pass != "" {
			u, p, ok := req.BasicAuth()
			if !ok || u != user || p != pass {
				w.Header().Set("WWW-Authenticate", `Basic realm="OpenWebif"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return
			}
		}
		if fail {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func result(w http.ResponseWriter, ok bool, message string) {
	writeJSON(w, map[string]any{"result": ok, "message": message})
}

func param(req *http.Request, key string) string {
	if req.Method == http.MethodPost {
		_ = req.ParseForm()
		return req.Form.Get(key)
	}
	return req.URL.Query().Get(key)
}

func int64Param(req *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(param(req, key), 10, 64)
	return n
}
