package device

import "testing"

func TestScheduleDefaults(t *testing.T) {
	var d Device
	w := d.Schedule()
	if w.Start != "08:00" || w.End != "18:00" {
		t.Fatalf("default window = %+v", w)
	}
}

func TestScheduleContains(t *testing.T) {
	tests := []struct {
		window ScheduleWindow
		at     string
		want   bool
	}{
		{ScheduleWindow{"08:00", "18:00"}, "08:00", true},
		{ScheduleWindow{"08:00", "18:00"}, "17:59", true},
		{ScheduleWindow{"08:00", "18:00"}, "18:00", false},
		{ScheduleWindow{"08:00", "18:00"}, "07:59", false},
		// 跨午夜
		{ScheduleWindow{"22:00", "06:00"}, "23:30", true},
		{ScheduleWindow{"22:00", "06:00"}, "05:59", true},
		{ScheduleWindow{"22:00", "06:00"}, "12:00", false},
	}
	for _, tt := range tests {
		if got := tt.window.Contains(tt.at); got != tt.want {
			t.Fatalf("%+v Contains(%s) = %v, want %v", tt.window, tt.at, got, tt.want)
		}
	}
}
