package sensor

import "testing"

func TestAQI_Breakpoints(t *testing.T) {
	cases := []struct {
		pm   float64
		want int
	}{
		{-3, 0},
		{0, 0},
		{10, 42},
		{12.0, 50},
		{12.09, 50}, // truncated to 12.0
		{12.1, 51},
		{35.4, 100},
		{35.5, 101},
		{55.4, 150},
		{55.5, 151},
		{150.4, 200},
		{150.5, 201},
		{250.4, 300},
		{250.5, 301},
		{350.5, 401},
		{500.4, 500},
		{812, 500},
	}
	for _, tc := range cases {
		if got := AQI(tc.pm); got != tc.want {
			t.Errorf("AQI(%v) = %d, want %d", tc.pm, got, tc.want)
		}
	}
}

func TestCategoryFor(t *testing.T) {
	cases := []struct {
		aqi   int
		name  string
		color string
	}{
		{0, "Good", "#00e400"},
		{50, "Good", "#00e400"},
		{51, "Moderate", "#ffff00"},
		{150, "Unhealthy for Sensitive Groups", "#ff7e00"},
		{151, "Unhealthy", "#ff0000"},
		{300, "Very Unhealthy", "#8f3f97"},
		{301, "Hazardous", "#7e0023"},
		{500, "Hazardous", "#7e0023"},
	}
	for _, tc := range cases {
		got := CategoryFor(tc.aqi)
		if got.Name != tc.name || got.Color != tc.color {
			t.Errorf("CategoryFor(%d) = %+v, want %s %s", tc.aqi, got, tc.name, tc.color)
		}
	}
}
