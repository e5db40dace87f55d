package weather

import "math"

// Unit conversions from the metric provider readings to the imperial report.
func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

func MSToMph(ms float64) float64 { return ms * 2.236936 }

func MphToMS(mph float64) float64 { return mph / 2.236936 }

// AggregateReadings combines multiple provider readings into a single Report.
// Numeric fields are averaged; conditions are selected by majority, ties going
// to the condition seen first.
func AggregateReadings(readings []ProviderReading) Report {
	if len(readings) == 0 {
		return Report{Condition: ConditionCloudy}
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
	)

	conditionCounts := make(map[Condition]int)
	var conditionOrder []Condition
	providers := make([]ProviderContribution, 0, len(readings))

	for _, r := range readings {
		sumTemp += r.TemperatureC
		sumHumidity += r.HumidityPct
		sumWind += r.WindSpeedMS

		if _, seen := conditionCounts[r.Condition]; !seen {
			conditionOrder = append(conditionOrder, r.Condition)
		}
		conditionCounts[r.Condition]++

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	n := float64(len(readings))

	bestCond := conditionOrder[0]
	for _, cond := range conditionOrder[1:] {
		if conditionCounts[cond] > conditionCounts[bestCond] {
			bestCond = cond
		}
	}

	humidity := math.Min(math.Max(sumHumidity/n, 0), 100)
	wind := math.Max(sumWind/n, 0)

	return Report{
		Temperature: round1(CelsiusToFahrenheit(sumTemp / n)),
		Condition:   bestCond,
		Humidity:    round1(humidity),
		WindSpeed:   round1(MSToMph(wind)),
		Providers:   providers,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
