package osm2initial

import "fmt"

// StableIntersectionID identifies an intersection for the whole construction run. IDs are never reused.
type StableIntersectionID int

// StableRoadID identifies a road for the whole construction run. IDs are never reused.
type StableRoadID int

func (id StableIntersectionID) String() string {
	return fmt.Sprintf("i%d", int(id))
}

func (id StableRoadID) String() string {
	return fmt.Sprintf("r%d", int(id))
}
