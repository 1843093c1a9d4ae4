package core

// Metric identifies one numeric particle measurement that can be
// aggregated per sample and compared across samples.
type Metric string

const (
	MetricArea         Metric = "area_um2"
	MetricDiameter     Metric = "equivalent_diameter_um"
	MetricPerimeter    Metric = "perimeter_um"
	MetricAspectRatio  Metric = "aspect_ratio"
	MetricEccentricity Metric = "eccentricity"
	MetricSolidity     Metric = "solidity"
)

// Metrics lists every comparable metric in report order.
func Metrics() []Metric {
	return []Metric{
		MetricArea,
		MetricDiameter,
		MetricPerimeter,
		MetricAspectRatio,
		MetricEccentricity,
		MetricSolidity,
	}
}
