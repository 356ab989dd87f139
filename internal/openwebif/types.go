// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Response is the generic result envelope most OpenWebIF endpoints return.
type Response struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
}

// IntString handles JSON fields that can be "123" or 123. Empty strings decode to 0.
type IntString int64

func (v *IntString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*v = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*v = 0
			return nil
		}
		// Some images append units ("85 %"); keep the leading number.
		if idx := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '-' && r != '.' }); idx > 0 {
			s = s[:idx]
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*v = IntString(int64(f))
			return nil
		}
		return fmt.Errorf("intstring: invalid string %q", s)
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("intstring: invalid json value: %s", string(b))
	}
	if i, err := n.Int64(); err == nil {
		*v = IntString(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("intstring: not a number: %s", n.String())
	}
	*v = IntString(int64(f))
	return nil
}

// Int64 returns the value as int64.
func (v IntString) Int64() int64 { return int64(v) }

// FlexString handles JSON fields that can be a string or a number.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("flexstring: invalid json value: %s", string(b))
	}
	if i, err := n.Int64(); err == nil {
		*s = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// FlexBool handles booleans encoded as true, "true", "True", 1 or "1".
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch strings.ToLower(strings.Trim(string(b), `"`)) {
	case "true", "1", "yes", "on":
		*f = true
	case "", "null", "false", "0", "no", "off":
		*f = false
	default:
		return fmt.Errorf("flexbool: invalid json value: %s", string(b))
	}
	return nil
}

// MovieLocation represents a directory bookmark
type MovieLocation struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// BookmarkList handles varied bookmark formats ([], [strings], [objects], "", {})
type BookmarkList []MovieLocation

func (bl *BookmarkList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*bl = []MovieLocation{}
		return nil
	}

	var objs []MovieLocation
	if err := json.Unmarshal(b, &objs); err == nil {
		*bl = BookmarkList(objs)
		return nil
	}

	var strs []string
	if err := json.Unmarshal(b, &strs); err == nil {
		list := make([]MovieLocation, len(strs))
		for i, s := range strs {
			list[i] = MovieLocation{Path: s, Name: filepath.Base(s)}
		}
		*bl = BookmarkList(list)
		return nil
	}

	var obj MovieLocation
	if err := json.Unmarshal(b, &obj); err == nil {
		if obj.Path == "" && obj.Name == "" {
			*bl = []MovieLocation{}
			return nil
		}
		*bl = BookmarkList{obj}
		return nil
	}

	return fmt.Errorf("bookmarks: invalid json format")
}
