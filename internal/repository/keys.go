// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// remoteKeys maps remote control buttons to Linux input key codes.
var remoteKeys = map[string]int{
	"power":    116,
	"1":        2,
	"2":        3,
	"3":        4,
	"4":        5,
	"5":        6,
	"6":        7,
	"7":        8,
	"8":        9,
	"9":        10,
	"0":        11,
	"up":       103,
	"down":     108,
	"left":     105,
	"right":    106,
	"ok":       352,
	"menu":     139,
	"exit":     174,
	"info":     358,
	"epg":      365,
	"volup":    115,
	"voldown":  114,
	"mute":     113,
	"chup":     402,
	"chdown":   403,
	"red":      398,
	"green":    399,
	"yellow":   400,
	"blue":     401,
	"play":     207,
	"pause":    119,
	"stop":     128,
	"record":   167,
	"rewind":   168,
	"forward":  208,
	"tv":       377,
	"radio":    385,
	"text":     388,
	"audio":    392,
	"subtitle": 370,
	"help":     138,
	"prev":     412,
	"next":     407,
}

// keyAliases accepts common alternative spellings.
var keyAliases = map[string]string{
	"back":        "exit",
	"enter":       "ok",
	"select":      "ok",
	"vol+":        "volup",
	"vol-":        "voldown",
	"ch+":         "chup",
	"ch-":         "chdown",
	"channelup":   "chup",
	"channeldown": "chdown",
	"ff":          "forward",
	"rew":         "rewind",
	"rec":         "record",
	"teletext":    "text",
	"guide":       "epg",
}

// KeyCode resolves a key name (case-insensitive) or a numeric key code.
// Single digits are buttons, not codes.
func KeyCode(key string) (int, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := keyAliases[k]; ok {
		k = alias
	}
	if code, ok := remoteKeys[k]; ok {
		return code, nil
	}
	if code, err := strconv.Atoi(k); err == nil && code > 0 && code < 0x300 {
		return code, nil
	}
	return 0, fmt.Errorf("%w: unknown remote key %q", ErrInvalidArgument, key)
}

// KeyNames lists the known key names, sorted.
func KeyNames() []string {
	names := make([]string, 0, len(remoteKeys))
	for name := range remoteKeys {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
