package osm2initial

// HighwayType is value of `highway` tag for drivable roads
type HighwayType uint16

const (
	HIGHWAY_MOTORWAY = HighwayType(iota + 1)
	HIGHWAY_MOTORWAY_LINK
	HIGHWAY_TRUNK
	HIGHWAY_TRUNK_LINK
	HIGHWAY_PRIMARY
	HIGHWAY_PRIMARY_LINK
	HIGHWAY_SECONDARY
	HIGHWAY_SECONDARY_LINK
	HIGHWAY_TERTIARY
	HIGHWAY_TERTIARY_LINK
	HIGHWAY_RESIDENTIAL
	HIGHWAY_LIVING_STREET
	HIGHWAY_SERVICE
	HIGHWAY_UNCLASSIFIED
)

func (iotaIdx HighwayType) String() string {
	return [...]string{"motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link", "secondary", "secondary_link", "tertiary", "tertiary_link", "residential", "living_street", "service", "unclassified"}[iotaIdx-1]
}

// getHighwayType returns HIGHWAY_UNCLASSIFIED for unknown values
func getHighwayType(str string) HighwayType {
	if found, ok := highwaysTypes[str]; ok {
		return found
	}
	return HIGHWAY_UNCLASSIFIED
}

var (
	highwaysTypes = map[string]HighwayType{
		"motorway":       HIGHWAY_MOTORWAY,
		"motorway_link":  HIGHWAY_MOTORWAY_LINK,
		"trunk":          HIGHWAY_TRUNK,
		"trunk_link":     HIGHWAY_TRUNK_LINK,
		"primary":        HIGHWAY_PRIMARY,
		"primary_link":   HIGHWAY_PRIMARY_LINK,
		"secondary":      HIGHWAY_SECONDARY,
		"secondary_link": HIGHWAY_SECONDARY_LINK,
		"tertiary":       HIGHWAY_TERTIARY,
		"tertiary_link":  HIGHWAY_TERTIARY_LINK,
		"residential":    HIGHWAY_RESIDENTIAL,
		"living_street":  HIGHWAY_LIVING_STREET,
		"service":        HIGHWAY_SERVICE,
		"unclassified":   HIGHWAY_UNCLASSIFIED,
	}

	// Motorways are implied to be oneway in OSM
	onewayDefaultByHighway = map[HighwayType]bool{
		HIGHWAY_MOTORWAY:      true,
		HIGHWAY_MOTORWAY_LINK: true,
	}

	// Driving lanes per direction when `lanes` tags are missing
	defaultLanesByHighway = map[HighwayType]int{
		HIGHWAY_MOTORWAY:       3,
		HIGHWAY_MOTORWAY_LINK:  1,
		HIGHWAY_TRUNK:          2,
		HIGHWAY_TRUNK_LINK:     1,
		HIGHWAY_PRIMARY:        2,
		HIGHWAY_PRIMARY_LINK:   1,
		HIGHWAY_SECONDARY:      1,
		HIGHWAY_SECONDARY_LINK: 1,
		HIGHWAY_TERTIARY:       1,
		HIGHWAY_TERTIARY_LINK:  1,
		HIGHWAY_RESIDENTIAL:    1,
		HIGHWAY_LIVING_STREET:  1,
		HIGHWAY_SERVICE:        1,
		HIGHWAY_UNCLASSIFIED:   1,
	}

	// Highways where sidewalks are assumed when `sidewalk` tag is missing
	sidewalkDefaultByHighway = map[HighwayType]bool{
		HIGHWAY_PRIMARY:     true,
		HIGHWAY_SECONDARY:   true,
		HIGHWAY_TERTIARY:    true,
		HIGHWAY_RESIDENTIAL: true,
	}
)
