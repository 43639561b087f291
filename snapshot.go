package osm2initial

import (
	"encoding/binary"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

// SnapshotStore keeps debug snapshots of maps: bucket per map name, key is the save version
type SnapshotStore struct {
	db *bbolt.DB
}

// OpenSnapshotStore opens (or creates) bbolt database file
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open snapshots db '%s'", path)
	}
	return &SnapshotStore{db: db}, nil
}

// Close closes underlying database
func (store *SnapshotStore) Close() error {
	return store.db.Close()
}

type snapshot struct {
	Map     *InitialMap `msgpack:"map"`
	Version uint64      `msgpack:"version"`
	GPSMin  orb.Point   `msgpack:"gps_min"`
	GPSMax  orb.Point   `msgpack:"gps_max"`
	HasGPS  bool        `msgpack:"has_gps"`
}

// Save writes snapshot of the map and increments the number of saved versions.
// Focus (if not nil) is stored as FocusOn.
func (initialMap *InitialMap) Save(store *SnapshotStore, focus *StableIntersectionID) (uint64, error) {
	if focus != nil {
		focusCopy := *focus
		initialMap.FocusOn = &focusCopy
	}
	version := initialMap.versionsSaved
	snap := snapshot{
		Map:     initialMap,
		Version: version,
	}
	if initialMap.GPSBounds != nil {
		snap.GPSMin = initialMap.GPSBounds.Min
		snap.GPSMax = initialMap.GPSBounds.Max
		snap.HasGPS = true
	}
	buf, err := msgpack.Marshal(&snap)
	if err != nil {
		return 0, errors.Wrap(err, "Can't encode snapshot")
	}
	err = store.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(initialMap.Name))
		if err != nil {
			return errors.Wrap(err, "Can't create bucket")
		}
		return bucket.Put(versionKey(version), buf)
	})
	if err != nil {
		return 0, errors.Wrapf(err, "Can't save snapshot of '%s'", initialMap.Name)
	}
	initialMap.versionsSaved++
	return version, nil
}

// Load reads snapshot of given version
func (store *SnapshotStore) Load(name string, version uint64) (*InitialMap, error) {
	var buf []byte
	err := store.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(name))
		if bucket == nil {
			return errors.Wrapf(ErrNotFound, "map '%s'", name)
		}
		value := bucket.Get(versionKey(version))
		if value == nil {
			return errors.Wrapf(ErrNotFound, "map '%s' version %d", name, version)
		}
		// Value is valid only inside transaction
		buf = append([]byte{}, value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	snap := snapshot{}
	if err := msgpack.Unmarshal(buf, &snap); err != nil {
		return nil, errors.Wrap(err, "Can't decode snapshot")
	}
	initialMap := snap.Map
	if initialMap == nil {
		return nil, errors.Errorf("snapshot of '%s' version %d is empty", name, version)
	}
	if initialMap.Roads == nil {
		initialMap.Roads = make(map[StableRoadID]*Road)
	}
	if initialMap.Intersections == nil {
		initialMap.Intersections = make(map[StableIntersectionID]*Intersection)
	}
	for _, intersection := range initialMap.Intersections {
		if intersection.Roads == nil {
			intersection.Roads = make(map[StableRoadID]struct{})
		}
	}
	initialMap.retiredIntersections = make(map[StableIntersectionID]struct{})
	initialMap.retiredRoads = make(map[StableRoadID]struct{})
	initialMap.versionsSaved = snap.Version + 1
	if snap.HasGPS {
		initialMap.GPSBounds = newGPSBoundsFromBound(orb.Bound{Min: snap.GPSMin, Max: snap.GPSMax})
	}
	return initialMap, nil
}

// Versions returns saved versions of the map in ascending order
func (store *SnapshotStore) Versions(name string) ([]uint64, error) {
	versions := []uint64{}
	err := store.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(name))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			versions = append(versions, binary.BigEndian.Uint64(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Can't list versions of '%s'", name)
	}
	return versions, nil
}

func versionKey(version uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, version)
	return key
}
