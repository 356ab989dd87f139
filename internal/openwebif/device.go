// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Tuner describes one tuner slot.
type Tuner struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Disk describes a storage device attached to the receiver.
type Disk struct {
	Model    string `json:"model"`
	Capacity string `json:"capacity"`
	Free     string `json:"free"`
}

// NetInterface describes a network interface of the receiver.
type NetInterface struct {
	Name string   `json:"name"`
	MAC  string   `json:"mac"`
	IP   string   `json:"ip"`
	DHCP FlexBool `json:"dhcp"`
}

// DeviceInfo is the hardware/software description of the receiver.
type DeviceInfo struct {
	Brand         string         `json:"brand"`
	Model         string         `json:"model"`
	BoxType       string         `json:"boxtype"`
	Chipset       string         `json:"chipset"`
	ImageVersion  string         `json:"imagever"`
	EnigmaVersion string         `json:"enigmaver"`
	WebIFVersion  string         `json:"webifver"`
	KernelVersion string         `json:"kernelver"`
	Uptime        string         `json:"uptime"`
	Tuners        []Tuner        `json:"tuners"`
	Disks         []Disk         `json:"hdd"`
	Interfaces    []NetInterface `json:"ifaces"`
}

type aboutResponse struct {
	Result bool       `json:"result"`
	Info   DeviceInfo `json:"info"`
}

// About returns the /api/about info block. It is the cheapest call that
// proves a device profile is reachable and authorised.
func (c *Client) About(ctx context.Context) (*DeviceInfo, error) {
	var resp aboutResponse
	if err := c.getJSON(ctx, "about", "/api/about", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Info, nil
}

// DeviceInfo returns the detailed /api/deviceinfo payload.
func (c *Client) DeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	var info DeviceInfo
	if err := c.getJSON(ctx, "deviceinfo", "/api/deviceinfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// StatusInfo is the live state of the receiver.
type StatusInfo struct {
	InStandby          FlexBool  `json:"inStandby"`
	IsRecording        FlexBool  `json:"isRecording"`
	Volume             IntString `json:"volume"`
	Muted              FlexBool  `json:"muted"`
	ServiceName        string    `json:"currservice_station"`
	ServiceRef         string    `json:"currservice_serviceref"`
	EventTitle         string    `json:"currservice_name"`
	EventDescription   string    `json:"currservice_description"`
	EventBegin         string    `json:"currservice_begin"`
	EventEnd           string    `json:"currservice_end"`
	EventBeginUnix     IntString `json:"currservice_begin_timestamp"`
	EventEndUnix       IntString `json:"currservice_end_timestamp"`
	EventFullDescrText string    `json:"currservice_fulldescription"`
}

// StatusInfo returns the current service, volume and standby state.
func (c *Client) StatusInfo(ctx context.Context) (*StatusInfo, error) {
	var info StatusInfo
	if err := c.getJSON(ctx, "statusinfo", "/api/statusinfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Signal represents the response from /api/signal.
type Signal struct {
	Result      bool      `json:"result"`
	SNR         IntString `json:"snr"`
	SNRdB       string    `json:"snr_db"`
	AGC         IntString `json:"agc"`
	BER         IntString `json:"ber"`
	Locked      bool      `json:"lock"`
	TunerType   string    `json:"tunertype"`
	TunerNumber IntString `json:"tunernumber"`
}

// signalResponse shadows Signal.Locked so a missing "lock" can be told apart
// from an explicit false.
type signalResponse struct {
	Signal
	Lock *FlexBool `json:"lock"`
}

// Signal retrieves tuner signal stats (SNR, AGC, BER, lock).
func (c *Client) Signal(ctx context.Context) (*Signal, error) {
	var res signalResponse
	if err := c.getJSON(ctx, "signal", "/api/signal", nil, &res); err != nil {
		return nil, err
	}
	sig := res.Signal
	if res.Lock != nil {
		sig.Locked = bool(*res.Lock)
	} else {
		// Older images omit "lock"; a high SNR means the tuner is locked.
		sig.Locked = sig.SNR > 50
	}
	return &sig, nil
}

// RemoteControl sends one key press. Codes are Linux input key codes.
func (c *Client) RemoteControl(ctx context.Context, code int, longPress bool) error {
	params := url.Values{}
	params.Set("command", strconv.Itoa(code))
	if longPress {
		params.Set("type", "long")
	}

	var res Response
	if err := c.command(ctx, "remotecontrol", "/api/remotecontrol", params, &res); err != nil {
		return err
	}
	if !res.Result {
		return resultError("remotecontrol", res.Message)
	}
	return nil
}

// PowerState values accepted by /api/powerstate.
type PowerState int

const (
	PowerQuery       PowerState = -1
	PowerToggle      PowerState = 0
	PowerDeepStandby PowerState = 1
	PowerReboot      PowerState = 2
	PowerRestartGUI  PowerState = 3
	PowerWakeup      PowerState = 4
	PowerStandby     PowerState = 5
)

// ParsePowerState maps a name to a PowerState.
func ParsePowerState(s string) (PowerState, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "status", "query":
		return PowerQuery, true
	case "toggle":
		return PowerToggle, true
	case "deepstandby", "off", "shutdown":
		return PowerDeepStandby, true
	case "reboot":
		return PowerReboot, true
	case "restart", "restartgui", "gui":
		return PowerRestartGUI, true
	case "wakeup", "on":
		return PowerWakeup, true
	case "standby":
		return PowerStandby, true
	}
	return PowerQuery, false
}

type powerResponse struct {
	Result    bool     `json:"result"`
	InStandby FlexBool `json:"instandby"`
}

// PowerState changes the power state and reports whether the box is now in
// standby. PowerQuery only reads the state.
func (c *Client) PowerState(ctx context.Context, state PowerState) (bool, error) {
	var params url.Values
	if state != PowerQuery {
		params = url.Values{}
		params.Set("newstate", strconv.Itoa(int(state)))
	}

	send := c.command
	if state == PowerQuery {
		send = c.getJSON
	}
	var res powerResponse
	if err := send(ctx, "powerstate", "/api/powerstate", params, &res); err != nil {
		return false, err
	}
	if !res.Result {
		return false, resultError("powerstate", "")
	}
	return bool(res.InStandby), nil
}

// VolumeState is the receiver's audio state after a volume call.
type VolumeState struct {
	Result  bool      `json:"result"`
	Message string    `json:"message"`
	Current IntString `json:"current"`
	Muted   FlexBool  `json:"ismute"`
}

// Volume accepts "up", "down", "mute", "state" or an absolute level 0..100.
func (c *Client) Volume(ctx context.Context, action string) (*VolumeState, error) {
	set := strings.ToLower(strings.TrimSpace(action))
	switch set {
	case "up", "down", "mute", "state":
	default:
		level, err := strconv.Atoi(set)
		if err != nil || level < 0 || level > 100 {
			return nil, &OWIError{Sentinel: ErrUpstreamBadResponse, Operation: "vol", Status: http.StatusBadRequest, Body: "invalid volume action " + strconv.Quote(action)}
		}
		set = "set" + strconv.Itoa(level)
	}

	params := url.Values{}
	params.Set("set", set)

	send := c.command
	if set == "state" {
		send = c.getJSON
	}
	var res VolumeState
	if err := send(ctx, "vol", "/api/vol", params, &res); err != nil {
		return nil, err
	}
	if !res.Result {
		return nil, resultError("vol", res.Message)
	}
	return &res, nil
}

// MessageType selects the icon of an on-screen message.
type MessageType int

const (
	MessageYesNo   MessageType = 0
	MessageInfo    MessageType = 1
	MessageWarning MessageType = 2
	MessageError   MessageType = 3
)

// ParseMessageType maps a name to a MessageType; "" means info.
func ParseMessageType(s string) (MessageType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return MessageInfo, true
	case "warning", "warn":
		return MessageWarning, true
	case "error":
		return MessageError, true
	case "yesno", "question":
		return MessageYesNo, true
	}
	return MessageInfo, false
}

// Message shows text on the TV screen for timeout seconds (0 = until dismissed).
func (c *Client) Message(ctx context.Context, text string, kind MessageType, timeout int) error {
	params := url.Values{}
	params.Set("text", text)
	params.Set("type", strconv.Itoa(int(kind)))
	if timeout > 0 {
		params.Set("timeout", strconv.Itoa(timeout))
	}

	var res Response
	if err := c.command(ctx, "message", "/api/message", params, &res); err != nil {
		return err
	}
	if !res.Result {
		return resultError("message", res.Message)
	}
	return nil
}

// ScreenshotMode selects which planes /grab captures.
type ScreenshotMode string

const (
	ScreenshotAll   ScreenshotMode = "all"
	ScreenshotVideo ScreenshotMode = "video"
	ScreenshotOSD   ScreenshotMode = "osd"
)

// ParseScreenshotMode validates a mode name; "" means all.
func ParseScreenshotMode(s string) (ScreenshotMode, bool) {
	switch m := ScreenshotMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ScreenshotAll, true
	case ScreenshotAll, ScreenshotVideo, ScreenshotOSD:
		return m, true
	}
	return ScreenshotAll, false
}

// Screenshot captures the current picture as JPEG. width <= 0 keeps the native size.
func (c *Client) Screenshot(ctx context.Context, mode ScreenshotMode, width int) ([]byte, error) {
	if mode == "" {
		mode = ScreenshotAll
	}
	params := url.Values{}
	params.Set("format", "jpg")
	params.Set("mode", string(mode))
	if width > 0 {
		params.Set("r", strconv.Itoa(width))
	}
	return c.getRaw(ctx, "grab", "/grab", params)
}
