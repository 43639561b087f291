package osm2initial

import (
	"github.com/paulmach/osm"
)

// Tags is an opaque view over the free-form key/value pairs of OSM object
type Tags map[string]string

func tagsFromOSM(tags osm.Tags) Tags {
	result := make(Tags, len(tags))
	for _, tag := range tags {
		result[tag.Key] = tag.Value
	}
	return result
}

// Find returns value for the given key or an empty string
func (tags Tags) Find(key string) string {
	return tags[key]
}

// Has reports whether the key is present (with any value)
func (tags Tags) Has(key string) bool {
	_, ok := tags[key]
	return ok
}

// Is reports whether the key is present and equals to value
func (tags Tags) Is(key, value string) bool {
	v, ok := tags[key]
	return ok && v == value
}

// Clone returns copy of tags
func (tags Tags) Clone() Tags {
	result := make(Tags, len(tags))
	for k, v := range tags {
		result[k] = v
	}
	return result
}

var (
	// List of non-car types from https://wiki.openstreetmap.org/wiki/Key:highway
	// `service` is debatable: it covers alleys, but loses some minor roads too.
	defaultExcludedHighways = []string{
		"footway",
		"living_street",
		"pedestrian",
		"track",
		"bus_guideway",
		"escape",
		"raceway",
		"bridleway",
		"steps",
		"path",
		"cycleway",
		"proposed",
		"construction",
		"service",
		"abandoned",
		"elevator",
		"planned",
		"razed",
	}

	// Order matters: first match wins
	areaRules = []areaRule{
		{"leisure", "park", AREA_PARK},
		{"leisure", "golf_course", AREA_PARK},
		{"natural", "wood", AREA_PARK},
		{"landuse", "cemetery", AREA_PARK},
		{"natural", "water", AREA_WATER},
	}

	junctionTypes = map[string]struct{}{
		"circular":   {},
		"roundabout": {},
	}

	noParkingValues = map[string]struct{}{
		"no":          {},
		"no_parking":  {},
		"no_stopping": {},
		"separate":    {},
	}
)

type areaRule struct {
	key      string
	value    string
	areaType AreaType
}
