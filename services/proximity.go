package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"reachout-backend/models"
)

const (
	earthRadiusKm = 6371

	// NearbyRadiusKm bounds the "near" partition when ranking donors for a
	// located request.
	NearbyRadiusKm = 50.0
)

// ParseCoordinates parses a "lat,long" pair as stored on donors, hospitals
// and requests.
func ParseCoordinates(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("coordinates %q: want \"lat,long\"", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude %q: %w", parts[0], err)
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude %q: %w", parts[1], err)
	}
	return lat, lng, nil
}

// DistanceKm returns the great-circle distance between two points using
// the Haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lng1Rad := toRadians(lng1)
	lat2Rad := toRadians(lat2)
	lng2Rad := toRadians(lng2)

	deltaLat := lat2Rad - lat1Rad
	deltaLng := lng2Rad - lng1Rad

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// DistanceBetween computes the distance in km between two "lat,long"
// strings, rounded to two decimals. A parse failure on either side is
// returned as a value so callers can degrade instead of dropping the pair.
func DistanceBetween(a, b string) (float64, error) {
	aLat, aLng, err := ParseCoordinates(a)
	if err != nil {
		return 0, err
	}
	bLat, bLng, err := ParseCoordinates(b)
	if err != nil {
		return 0, err
	}
	return math.Round(DistanceKm(aLat, aLng, bLat, bLng)*100) / 100, nil
}

// RankedDonor is a donor with its distance to the request, when rankable.
type RankedDonor struct {
	Donor      models.Donor
	DistanceKm *float64
}

// RankByProximity orders donors for a located request: donors within
// NearbyRadiusKm come first, ascending by distance; everyone else follows
// in input order. Donors with missing or unparseable coordinates are
// unrankable and land in the trailing partition, never dropped. An
// unparseable request location disables ranking entirely.
func RankByProximity(requestLocation string, donors []models.Donor) []RankedDonor {
	reqLat, reqLng, err := ParseCoordinates(requestLocation)
	if err != nil {
		return unranked(donors)
	}

	var near, other []RankedDonor
	for _, donor := range donors {
		if donor.Location == "" {
			other = append(other, RankedDonor{Donor: donor})
			continue
		}
		lat, lng, err := ParseCoordinates(donor.Location)
		if err != nil {
			other = append(other, RankedDonor{Donor: donor})
			continue
		}
		dist := DistanceKm(reqLat, reqLng, lat, lng)
		ranked := RankedDonor{Donor: donor, DistanceKm: &dist}
		if dist <= NearbyRadiusKm {
			near = append(near, ranked)
		} else {
			other = append(other, ranked)
		}
	}

	sort.SliceStable(near, func(i, j int) bool {
		return *near[i].DistanceKm < *near[j].DistanceKm
	})

	return append(near, other...)
}

func unranked(donors []models.Donor) []RankedDonor {
	out := make([]RankedDonor, 0, len(donors))
	for _, donor := range donors {
		out = append(out, RankedDonor{Donor: donor})
	}
	return out
}
