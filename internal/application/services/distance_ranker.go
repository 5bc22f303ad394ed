package services

import (
	"cmp"
	"math"
	"slices"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
)

const (
	earthRadiusKm = 6371.0

	// MissingDistanceKm orders listings without coordinates after every real distance
	MissingDistanceKm = 999999.0
)

// DistanceKm returns the great-circle distance between two points using the haversine formula.
func DistanceKm(originLat, originLng, lat, lng float64) float64 {
	dLat := toRadians(lat - originLat)
	dLng := toRadians(lng - originLng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(originLat))*math.Cos(toRadians(lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// RoundKm rounds a distance to one decimal place
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}

// RankByDistance orders listings by distance from origin. The sort is stable,
// so listings at the same rounded distance keep the store's order.
func RankByDistance(origin entities.GeoPoint, listings []*entities.Listing) []entities.RankedListing {
	type keyed struct {
		ranked entities.RankedListing
		key    float64
	}

	items := make([]keyed, 0, len(listings))
	for _, l := range listings {
		item := keyed{ranked: entities.RankedListing{Listing: l}, key: MissingDistanceKm}
		if lat, lng, ok := l.Coordinates(); ok {
			d := RoundKm(DistanceKm(origin.Latitude, origin.Longitude, lat, lng))
			item.ranked.DistanceKm = &d
			item.key = d
		}
		items = append(items, item)
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return cmp.Compare(a.key, b.key)
	})

	ranked := make([]entities.RankedListing, len(items))
	for i, item := range items {
		ranked[i] = item.ranked
	}
	return ranked
}

// Unranked wraps listings without distances, preserving order
func Unranked(listings []*entities.Listing) []entities.RankedListing {
	ranked := make([]entities.RankedListing, len(listings))
	for i, l := range listings {
		ranked[i] = entities.RankedListing{Listing: l}
	}
	return ranked
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
