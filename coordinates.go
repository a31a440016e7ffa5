package gazetteer

import (
	"fmt"
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// Coordinates is a WGS84 position. North and east are positive.
type Coordinates struct {
	Lat float64
	Lng float64
}

// geohashPrecision is the number of geohash characters emitted by
// Geohash. 9 characters resolve to roughly 5m, more than enough for
// identifying a settlement.
const geohashPrecision = 9

// Geohash returns the geohash string of the position.
func (c Coordinates) Geohash() string {
	return geohash.EncodeWithPrecision(c.Lat, c.Lng, geohashPrecision)
}

// latLng converts to an S2 spherical point for the spatial index.
func (c Coordinates) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lng)
}

// ParseCoordinates parses the UN-LOCODE degrees-minutes coordinate
// format: two latitude degree digits followed by minutes and an N/S
// bearing, a space, then three longitude degree digits followed by
// minutes and an E/W bearing. "4042N 07400W" is 40.7 north, 74 west.
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("coordinates %q: want two bearing groups", s)
	}

	lat, err := parseBearing(parts[0], 2, 'N', 'S')
	if err != nil {
		return Coordinates{}, fmt.Errorf("coordinates %q: %w", s, err)
	}
	lng, err := parseBearing(parts[1], 3, 'E', 'W')
	if err != nil {
		return Coordinates{}, fmt.Errorf("coordinates %q: %w", s, err)
	}
	return Coordinates{Lat: lat, Lng: lng}, nil
}

// parseBearing decodes one degrees-minutes group. degDigits is the
// fixed width of the degrees part; the remaining digits are minutes.
// neg is the bearing letter that flips the sign (S or W).
func parseBearing(group string, degDigits int, pos, neg byte) (float64, error) {
	if len(group) < degDigits+2 {
		return 0, fmt.Errorf("bearing group %q too short", group)
	}
	bearing := group[len(group)-1]
	if bearing != pos && bearing != neg {
		return 0, fmt.Errorf("bearing group %q: want %c or %c", group, pos, neg)
	}
	digits := group[:len(group)-1]
	deg, err := strconv.ParseFloat(digits[:degDigits], 64)
	if err != nil {
		return 0, fmt.Errorf("bearing group %q: degrees: %w", group, err)
	}
	min, err := strconv.ParseFloat(digits[degDigits:], 64)
	if err != nil {
		return 0, fmt.Errorf("bearing group %q: minutes: %w", group, err)
	}
	value := deg + min/60.0
	if bearing == neg {
		value = -value
	}
	return value, nil
}
