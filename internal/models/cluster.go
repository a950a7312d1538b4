package models

// SizeTier is a presentation hint derived from the member count.
type SizeTier string

const (
	TierSmall  SizeTier = "small"
	TierMedium SizeTier = "medium"
	TierLarge  SizeTier = "large"
)

// Bounds is a lat/lng bounding box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Cluster groups nearby markers at one zoom level. It is recomputed on every
// zoom, pan or filter change and never stored.
type Cluster struct {
	ID        string   `json:"id"`
	Centroid  LatLng   `json:"centroid"`
	MemberIDs []ZoneID `json:"memberIds"`
	Count     int      `json:"count"`
	Tier      SizeTier `json:"tier"`
	Bounds    Bounds   `json:"bounds"`
}
