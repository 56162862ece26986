package components

import "testing"

func TestClassNamesMatchConstants(t *testing.T) {
	for _, c := range []Class{ClassNone, ClassHostile, ClassObstacle, ClassWaypoint} {
		if got := ParseClass(c.String()); got != c {
			t.Errorf("ParseClass(%q) = %v, want %v", c.String(), got, c)
		}
	}
}

func TestParseClass(t *testing.T) {
	tests := []struct {
		in   string
		want Class
	}{
		{"hostile", ClassHostile},
		{"OBSTACLE", ClassObstacle},
		{"Waypoint", ClassWaypoint},
		{"", ClassNone},
		{"friendly", ClassNone},
	}
	for _, tc := range tests {
		if got := ParseClass(tc.in); got != tc.want {
			t.Errorf("ParseClass(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if s := Class(99).String(); s != "Unknown" {
		t.Errorf("String = %q, want Unknown", s)
	}
}
