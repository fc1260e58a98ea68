// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"errors"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type colorMode string

func (colorMode) Choices() []string { return []string{"auto", "always", "never"} }

func TestDecode_Coercion(t *testing.T) {
	type Args struct {
		Name      string
		Port      int
		Ratio     float64
		Retries   uint
		Timeout   time.Duration
		Endpoint  url.URL
		Verbose   bool
		Workers   *int
		Includes  []string
		UnsetOpt  *string
		UnsetList []int
	}

	raw := RawValues{
		"name":     {Values: []string{"api"}, Set: true},
		"port":     {Values: []string{"8080"}, Set: true},
		"ratio":    {Values: []string{"0.75"}, Set: true},
		"retries":  {Values: []string{"3"}, Set: true},
		"timeout":  {Values: []string{"1m30s"}, Set: true},
		"endpoint": {Values: []string{"https://example.com/v1"}, Set: true},
		"verbose":  {Values: []string{"true"}, Set: true},
		"workers":  {Values: []string{"4"}, Set: true},
		"includes": {Values: []string{"a", "b"}, Set: true},
	}
	got, err := Decode[Args](raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	four := 4
	want := Args{
		Name:      "api",
		Port:      8080,
		Ratio:     0.75,
		Retries:   3,
		Timeout:   90 * time.Second,
		Endpoint:  url.URL{Scheme: "https", Host: "example.com", Path: "/v1"},
		Verbose:   true,
		Workers:   &four,
		Includes:  []string{"a", "b"},
		UnsetList: []int{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
	if got.UnsetList == nil {
		t.Error("unset list decoded to nil, want empty slice")
	}
}

func TestDecode_Defaults(t *testing.T) {
	type Args struct {
		Port  int      `default:"8080"`
		Hosts []string `default:"a,b"`
		Debug bool     `default:"true"`
	}

	got, err := Decode[Args](RawValues{
		"port":  {},
		"hosts": {},
		"debug": {},
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := Args{Port: 8080, Hosts: []string{"a", "b"}, Debug: true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_ChoiceNormalization(t *testing.T) {
	type Args struct {
		Color colorMode
		Cache string `choices:"disk_cache,mem_cache"`
	}

	got, err := Decode[Args](RawValues{
		"color": {Values: []string{"ALWAYS"}, Set: true},
		"cache": {Values: []string{"Disk-Cache"}, Set: true},
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Color != "always" || got.Cache != "disk_cache" {
		t.Errorf("Decode() = %+v, want canonical choice spellings", got)
	}
}

func TestDecode_ChoiceSuggestion(t *testing.T) {
	type mealArgs struct {
		Action string `choices:"eat,sleep"`
	}
	type modeArgs struct {
		Mode string `choices:"fast,safe"`
	}

	tests := []struct {
		name     string
		decode   func(RawValues) error
		raw      RawValues
		wantHint string
	}{
		{
			name:     "one-edit neighbor",
			decode:   func(r RawValues) error { _, err := Decode[mealArgs](r); return err },
			raw:      RawValues{"action": {Values: []string{"eet"}, Set: true}},
			wantHint: "eat",
		},
		{
			name:     "transposition",
			decode:   func(r RawValues) error { _, err := Decode[modeArgs](r); return err },
			raw:      RawValues{"mode": {Values: []string{"fsat"}, Set: true}},
			wantHint: "fast",
		},
		{
			name:     "nothing close enough",
			decode:   func(r RawValues) error { _, err := Decode[modeArgs](r); return err },
			raw:      RawValues{"mode": {Values: []string{"sluggish"}, Set: true}},
			wantHint: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode(tt.raw)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if len(ve.Problems) != 1 || ve.Problems[0].Kind != ProblemChoice {
				t.Fatalf("Problems = %+v, want one choice problem", ve.Problems)
			}
			if ve.Problems[0].Suggestion != tt.wantHint {
				t.Errorf("Suggestion = %q, want %q", ve.Problems[0].Suggestion, tt.wantHint)
			}
		})
	}
}

func TestDecode_AllProblemsReported(t *testing.T) {
	type Args struct {
		Port int
		Mode string `choices:"fast,safe"`
		Name string
	}

	_, err := Decode[Args](RawValues{
		"port":   {Values: []string{"eighty"}, Set: true},
		"mode":   {Values: []string{"slow"}, Set: true},
		"rogue":  {Values: []string{"x"}, Set: true},
		"bandit": {Values: []string{"y"}, Set: true},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}

	kinds := map[ProblemKind]int{}
	for _, p := range ve.Problems {
		kinds[p.Kind]++
	}
	want := map[ProblemKind]int{
		ProblemType:       1, // port
		ProblemChoice:     1, // mode
		ProblemMissing:    1, // name
		ProblemUnexpected: 2, // rogue, bandit
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("problem kinds = %v, want %v\nerror: %v", kinds, want, ve)
	}
}

func TestDecode_RequiredListRejectsEmpty(t *testing.T) {
	type Args struct {
		Files []string `nonempty:""`
	}

	_, err := Decode[Args](RawValues{"files": {}})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if ve.Problems[0].Kind != ProblemMissingValue {
		t.Errorf("Kind = %v, want ProblemMissingValue", ve.Problems[0].Kind)
	}
	if !strings.Contains(ve.Error(), "at least one value") {
		t.Errorf("error %q does not mention the minimum", ve.Error())
	}
}

func TestCanonicalChoice(t *testing.T) {
	choices := []string{"disk_cache", "mem_cache"}
	tests := []struct{ in, want string }{
		{"disk_cache", "disk_cache"},
		{"Disk-Cache", "disk_cache"},
		{"MEM_CACHE", "mem_cache"},
		{"tape", ""},
	}
	for _, tt := range tests {
		if got := canonicalChoice(tt.in, choices); got != tt.want {
			t.Errorf("canonicalChoice(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
