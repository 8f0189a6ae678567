package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestWeekdaysUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Weekdays
	}{
		{"array", `[5,1,3,3]`, Weekdays{1, 3, 5}},
		{"null", `null`, Weekdays{}},
		{"string encoded", `"[1,3,5]"`, Weekdays{1, 3, 5}},
		{"double encoded", `"\"[0,6]\""`, Weekdays{0, 6}},
		{"string items", `["2","4"]`, Weekdays{2, 4}},
		{"comma list", `"1, 2"`, Weekdays{1, 2}},
		{"empty string", `""`, Weekdays{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var w Weekdays
			if err := json.Unmarshal([]byte(tc.in), &w); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(w, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, w)
			}
		})
	}
}

func TestWeekdaysUnmarshalInvalid(t *testing.T) {
	for _, in := range []string{`[7]`, `{"a":1}`, `"[x]"`, `[-1]`} {
		var w Weekdays
		if err := json.Unmarshal([]byte(in), &w); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
}

func TestWeekdaysInsideRoutine(t *testing.T) {
	var r Routine
	if err := json.Unmarshal([]byte(`{"text":"run","weekdays":"[1,3,5]"}`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Weekdays.Contains(time.Wednesday) || r.Weekdays.Contains(time.Tuesday) {
		t.Fatalf("unexpected weekdays %v", r.Weekdays)
	}
	out, err := json.Marshal(r.Weekdays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "[1,3,5]" {
		t.Fatalf("expected canonical array, got %s", out)
	}
}

func TestWeekdaysEveryDay(t *testing.T) {
	var w Weekdays
	for d := time.Sunday; d <= time.Saturday; d++ {
		if !w.Contains(d) {
			t.Fatalf("empty set should contain %v", d)
		}
	}
}

func TestRoutineInRange(t *testing.T) {
	start, end := "2024-03-01", "2024-03-31"
	r := Routine{StartDate: &start, EndDate: &end}
	if r.InRange("2024-02-29") || !r.InRange("2024-03-01") || !r.InRange("2024-03-31") || r.InRange("2024-04-01") {
		t.Fatalf("unexpected range behaviour")
	}
}
