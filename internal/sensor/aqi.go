package sensor

import "math"

type breakpoint struct {
	cLo, cHi float64
	iLo, iHi int
}

// US EPA PM2.5 breakpoints (µg/m³, 24h table used for NowCast-less displays).
var pm25Breakpoints = []breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

const maxAQI = 500

// AQI converts a PM2.5 concentration into the US EPA index. The
// concentration is truncated to 0.1 µg/m³ first; values past the top of
// the table clamp to 500.
func AQI(pm25 float64) int {
	if math.IsNaN(pm25) || pm25 <= 0 {
		return 0
	}
	c := math.Floor(pm25*10+1e-9) / 10
	for _, bp := range pm25Breakpoints {
		if c <= bp.cHi {
			if c < bp.cLo {
				// gap between two rows, e.g. 12.05 truncated stays 12.0
				c = bp.cLo
			}
			ratio := float64(bp.iHi-bp.iLo) / (bp.cHi - bp.cLo)
			return int(math.Round(ratio*(c-bp.cLo) + float64(bp.iLo)))
		}
	}
	return maxAQI
}

// Category is the EPA band an AQI value falls into.
type Category struct {
	Name  string
	Color string
}

var categories = []struct {
	upTo int
	cat  Category
}{
	{50, Category{"Good", "#00e400"}},
	{100, Category{"Moderate", "#ffff00"}},
	{150, Category{"Unhealthy for Sensitive Groups", "#ff7e00"}},
	{200, Category{"Unhealthy", "#ff0000"}},
	{300, Category{"Very Unhealthy", "#8f3f97"}},
}

var hazardous = Category{"Hazardous", "#7e0023"}

// CategoryFor returns the band for aqi.
func CategoryFor(aqi int) Category {
	for _, c := range categories {
		if aqi <= c.upTo {
			return c.cat
		}
	}
	return hazardous
}
