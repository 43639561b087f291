package osm2initial

// FeatureCategory is the outcome of tags classification
type FeatureCategory uint16

const (
	FEATURE_UNCLASSIFIED = FeatureCategory(iota + 1)
	FEATURE_ROAD
	FEATURE_BUILDING
	FEATURE_AREA
)

func (iotaIdx FeatureCategory) String() string {
	return [...]string{"unclassified", "road", "building", "area"}[iotaIdx-1]
}

// AreaType is kind of the area feature
type AreaType uint16

const (
	AREA_PARK = AreaType(iota + 1)
	AREA_WATER
)

func (iotaIdx AreaType) String() string {
	return [...]string{"park", "water"}[iotaIdx-1]
}

// Classification is result of Classifier.Classify. AreaType is set for FEATURE_AREA only.
type Classification struct {
	Category FeatureCategory
	AreaType AreaType
}

// Classifier decides what a tagged way (or relation) represents.
// It's the only place where raw tags are inspected for classification purposes.
type Classifier struct {
	excludedHighways map[string]struct{}
}

// NewClassifier returns classifier which treats given `highway` values as non-roads.
// Nil means default exclusion list.
func NewClassifier(excludedHighways []string) *Classifier {
	if excludedHighways == nil {
		excludedHighways = defaultExcludedHighways
	}
	classifier := &Classifier{
		excludedHighways: make(map[string]struct{}, len(excludedHighways)),
	}
	for _, value := range excludedHighways {
		classifier.excludedHighways[value] = struct{}{}
	}
	return classifier
}

// Classify is total: it always returns some category
func (classifier *Classifier) Classify(tags Tags) Classification {
	if classifier.isRoad(tags) {
		return Classification{Category: FEATURE_ROAD}
	}
	if tags.Has("building") {
		return Classification{Category: FEATURE_BUILDING}
	}
	if areaType, ok := getAreaType(tags); ok {
		return Classification{Category: FEATURE_AREA, AreaType: areaType}
	}
	return Classification{Category: FEATURE_UNCLASSIFIED}
}

func (classifier *Classifier) isRoad(tags Tags) bool {
	highway, ok := tags["highway"]
	if !ok {
		return false
	}
	_, excluded := classifier.excludedHighways[highway]
	return !excluded
}

func getAreaType(tags Tags) (AreaType, bool) {
	for _, rule := range areaRules {
		if tags.Is(rule.key, rule.value) {
			return rule.areaType, true
		}
	}
	return 0, false
}
