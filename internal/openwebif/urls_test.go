// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamURL(t *testing.T) {
	ref := "1:0:19:283D:3FB:1:C00000:0:0:0:"

	direct := New("http://user:pw@192.168.1.20", Options{StreamPort: 8001})
	assert.Equal(t, "http://192.168.1.20:8001/1:0:19:283D:3FB:1:C00000:0:0:0:", direct.StreamURL(ref))

	webif := New("http://192.168.1.20:8080", Options{})
	assert.Equal(t, "http://192.168.1.20:8080/web/stream.m3u?ref=1%3A0%3A19%3A283D%3A3FB%3A1%3AC00000%3A0%3A0%3A0%3A", webif.StreamURL(ref))
}

func TestFileStreamURL(t *testing.T) {
	c := New("http://box", Options{})
	assert.Equal(t, "http://box/file?file=%2Fmedia%2Fhdd%2Fmovie%2Fa+b.ts", c.FileStreamURL("/media/hdd/movie/a b.ts"))
}

func TestPiconName(t *testing.T) {
	tests := map[string]string{
		"1:0:19:283D:3FB:1:C00000:0:0:0:":                      "1_0_19_283D_3FB_1_C00000_0_0_0",
		"1:0:19:283D:3FB:1:C00000:0:0:0":                       "1_0_19_283D_3FB_1_C00000_0_0_0",
		"4097:0:1:0:0:0:0:0:0:0:http%3a//host/x.m3u8:Channel": "4097_0_1_0_0_0_0_0_0_0",
		"  ": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, PiconName(in), in)
	}
}

func TestPiconURL(t *testing.T) {
	c := New("http://box:80/", Options{})
	assert.Equal(t, "http://box:80/picon/1_0_1_1_1_1_1_0_0_0.png", c.PiconURL("1:0:1:1:1:1:1:0:0:0:"))
	assert.Empty(t, c.PiconURL(""))
}
