package models

// HeatPoint is one weighted sample of the heat layer.
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"` // normalized 0-1
}

// GradientStop maps a weight to a color.
type GradientStop struct {
	At    float64 `json:"at"`
	Color string  `json:"color"`
}

// HeatLayer is the heatmap payload handed to the render surface.
type HeatLayer struct {
	Points   []HeatPoint    `json:"points"`
	Radius   int            `json:"radius"`
	Blur     int            `json:"blur"`
	MaxZoom  int            `json:"maxZoom"`
	Gradient []GradientStop `json:"gradient"`
}
