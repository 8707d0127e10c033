// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"errors"
	"testing"
)

func TestUnitScale(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"inh2o", 248.84},
		{"inH2O", 248.84},
		{"psi", 6894.757293168361},
		{"PSI\x00\x00", 6894.757293168361},
		{"mbar", 100},
		{"bar", 100000},
		{"Pa", 1},
		{"kpa", 1000},
		{"KPA ", 1000},
	}
	for _, tc := range cases {
		res, err := UnitScale(tc.in)
		if err != nil {
			t.Errorf("%q: %v", tc.in, err)
			continue
		}
		if !approxEqual(res, tc.out) {
			t.Errorf("%v != expected %v for %q", res, tc.out, tc.in)
		}
	}
}

func TestUnitScaleUnknown(t *testing.T) {
	for _, in := range []string{"", "atm", "torr", "mmhg", "hpa", "psig", "cmh2o"} {
		if _, err := UnitScale(in); !errors.Is(err, ErrUnknownUnit) {
			t.Errorf("%q: got %v, want ErrUnknownUnit", in, err)
		}
	}
}

func TestTrimText(t *testing.T) {
	cases := []struct {
		in  []byte
		out string
	}{
		{[]byte("psi\x00\x00"), "psi"},
		{[]byte("bar  "), "bar"},
		{[]byte("RSC\x00garbage"), "RSC"},
		{[]byte{0, 0, 0}, ""},
	}
	for _, tc := range cases {
		if res := trimText(tc.in); res != tc.out {
			t.Errorf("%q != expected %q", res, tc.out)
		}
	}
}
