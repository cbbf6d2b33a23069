// Package geo provides great-circle math for airport coordinate pairs.
package geo

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Constants
const (
	EarthRadiusKm = 6378.0 // Earth radius used for great-circle distance (km)
	DegToRad      = math.Pi / 180
	RadToDeg      = 180 / math.Pi
)

// Distance returns the great-circle distance in kilometers between two
// points given in decimal degrees, computed with the haversine formula and
// rounded to 2 decimal places. Identical points yield exactly 0.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * DegToRad
	phi2 := lat2 * DegToRad
	dPhi := (lat2 - lat1) * DegToRad
	dLambda := (lon2 - lon1) * DegToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(EarthRadiusKm*c*100) / 100
}

// InitialBearing returns the initial great-circle bearing in degrees
// [0, 360) from the first point toward the second
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * DegToRad
	phi2 := lat2 * DegToRad
	dLambda := (lon2 - lon1) * DegToRad

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	bearing := math.Atan2(y, x) * RadToDeg
	bearing = math.Mod(bearing+360, 360)
	return math.Round(bearing*100) / 100
}

// MagneticVariation returns the magnetic declination in degrees
// (+East, -West) at the given surface position and time.
// Returns 0 if the field model fails.
func MagneticVariation(lat, lon float64, t time.Time) float64 {
	loc := egm96.NewLocationGeodetic(lat, lon, 0)

	mag, err := wmm.CalculateWMMMagneticField(loc, t)
	if err != nil {
		return 0.0
	}

	return mag.D()
}

// MagneticBearing converts a true bearing to a magnetic bearing at the
// given position, normalized to [0, 360)
func MagneticBearing(trueBearing, lat, lon float64, t time.Time) float64 {
	mag := trueBearing - MagneticVariation(lat, lon, t)
	mag = math.Mod(mag+360, 360)
	return math.Round(mag*100) / 100
}
