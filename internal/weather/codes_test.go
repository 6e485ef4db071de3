package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skycast-app/skycast/internal/weather"
)

func TestTranslateCode(t *testing.T) {
	cases := []struct {
		code        int
		main        string
		description string
		icon        string
	}{
		{0, "Clear", "clear sky", "01d"},
		{2, "Clouds", "partly cloudy", "02d"},
		{45, "Fog", "foggy", "50d"},
		{55, "Drizzle", "dense drizzle", "09d"},
		{63, "Rain", "moderate rain", "10d"},
		{75, "Snow", "heavy snow", "13d"},
		{82, "Rain", "violent rain showers", "09d"},
		{95, "Thunderstorm", "thunderstorm", "11d"},
		{99, "Thunderstorm", "thunderstorm with heavy hail", "11d"},
	}

	for _, tc := range cases {
		t.Run(tc.main+"/"+tc.description, func(t *testing.T) {
			c := weather.TranslateCode(tc.code)
			assert.Equal(t, tc.code, c.ID)
			assert.Equal(t, tc.main, c.Main)
			assert.Equal(t, tc.description, c.Description)
			assert.Equal(t, tc.icon, c.Icon)
		})
	}
}

func TestTranslateCode_Unknown(t *testing.T) {
	for _, code := range []int{-1, 42, 100, 9999} {
		c := weather.TranslateCode(code)
		assert.Equal(t, code, c.ID)
		assert.Equal(t, "Unknown", c.Main)
		assert.Equal(t, "unknown", c.Description)
		assert.Equal(t, "01d", c.Icon)
	}
}
