// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rsc

import (
	"reflect"
	"testing"
)

func TestAcquisitionPattern(t *testing.T) {
	T, P := Temperature, Pressure
	cases := []struct {
		srd  uint8
		want []Measurement
	}{
		{0, []Measurement{T, P, T, P, T, P, T, P}},
		{1, []Measurement{T, P, P, T, P, P, T, P}},
		{2, []Measurement{T, P, P, P, T, P, P, P}},
	}
	for _, tc := range cases {
		a := acquisition{meas: Temperature, srd: tc.srd}
		got := []Measurement{a.meas}
		for len(got) < len(tc.want) {
			next, _ := a.advance()
			got = append(got, next)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("srd %d: got %v, want %v", tc.srd, got, tc.want)
		}
	}
}

func TestAcquisitionChangeFlag(t *testing.T) {
	a := acquisition{meas: Pressure, srd: 1}
	steps := []struct {
		next    Measurement
		changed bool
	}{
		{Pressure, false},
		{Temperature, true},
		{Pressure, true},
		{Pressure, false},
		{Temperature, true},
	}
	for i, s := range steps {
		next, changed := a.advance()
		if next != s.next || changed != s.changed {
			t.Errorf("step %d: got (%s, %v), want (%s, %v)", i, next, changed, s.next, s.changed)
		}
	}
}

func TestAcquisitionTemperatureResetsCounter(t *testing.T) {
	a := acquisition{meas: Temperature, count: 7, srd: 3}
	a.advance()
	if a.count != 0 || a.meas != Pressure {
		t.Errorf("got %+v", a)
	}
}
