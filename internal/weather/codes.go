package weather

// weatherCodes maps WMO weather interpretation codes to normalized conditions.
// Icon names follow the provider-agnostic dNN convention the presentation
// layer already understands.
var weatherCodes = map[int]Condition{
	0:  {Main: "Clear", Description: "clear sky", Icon: "01d"},
	1:  {Main: "Clear", Description: "mainly clear", Icon: "01d"},
	2:  {Main: "Clouds", Description: "partly cloudy", Icon: "02d"},
	3:  {Main: "Clouds", Description: "overcast", Icon: "03d"},
	45: {Main: "Fog", Description: "foggy", Icon: "50d"},
	48: {Main: "Fog", Description: "depositing rime fog", Icon: "50d"},
	51: {Main: "Drizzle", Description: "light drizzle", Icon: "09d"},
	53: {Main: "Drizzle", Description: "moderate drizzle", Icon: "09d"},
	55: {Main: "Drizzle", Description: "dense drizzle", Icon: "09d"},
	61: {Main: "Rain", Description: "slight rain", Icon: "10d"},
	63: {Main: "Rain", Description: "moderate rain", Icon: "10d"},
	65: {Main: "Rain", Description: "heavy rain", Icon: "10d"},
	71: {Main: "Snow", Description: "slight snow", Icon: "13d"},
	73: {Main: "Snow", Description: "moderate snow", Icon: "13d"},
	75: {Main: "Snow", Description: "heavy snow", Icon: "13d"},
	77: {Main: "Snow", Description: "snow grains", Icon: "13d"},
	80: {Main: "Rain", Description: "slight rain showers", Icon: "09d"},
	81: {Main: "Rain", Description: "moderate rain showers", Icon: "09d"},
	82: {Main: "Rain", Description: "violent rain showers", Icon: "09d"},
	85: {Main: "Snow", Description: "slight snow showers", Icon: "13d"},
	86: {Main: "Snow", Description: "heavy snow showers", Icon: "13d"},
	95: {Main: "Thunderstorm", Description: "thunderstorm", Icon: "11d"},
	96: {Main: "Thunderstorm", Description: "thunderstorm with slight hail", Icon: "11d"},
	99: {Main: "Thunderstorm", Description: "thunderstorm with heavy hail", Icon: "11d"},
}

// TranslateCode maps a provider weather code to a normalized condition.
// Unrecognized codes resolve to an Unknown condition with the default day
// icon rather than failing.
func TranslateCode(code int) Condition {
	c, ok := weatherCodes[code]
	if !ok {
		c = Condition{Main: "Unknown", Description: "unknown", Icon: "01d"}
	}
	c.ID = code
	return c
}
