package osm2initial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Extracted is the flat output of extraction stage
type Extracted struct {
	Roads     []RawRoad
	Buildings []Building
	Areas     []Area
}

// ExtractOptions tunes the extraction stage
type ExtractOptions struct {
	Classifier  *Classifier
	Boundary    orb.Ring // lon/lat; used only for closing clipped multipolygons
	RingClosure RingClosure
	Workers     int
	Logger      *zap.Logger
	Progress    Progress
}

func (opts *ExtractOptions) prepare() {
	if opts.Classifier == nil {
		opts.Classifier = NewClassifier(nil)
	}
	if opts.RingClosure == 0 {
		opts.RingClosure = RING_CLOSURE_STRAIGHT
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Progress == nil {
		opts.Progress = NopProgress{}
	}
}

type classifiedWay struct {
	way            *osm.Way
	pts            []orb.Point
	tags           Tags
	classification Classification
	valid          bool
}

// Extract classifies every way and relation of the document.
// Ways are classified in parallel, but the output order is always by OSM ID.
func Extract(doc *Document, opts ExtractOptions) (*Extracted, error) {
	opts.prepare()
	logger := opts.Logger

	wayIDs := maps.Keys(doc.Ways)
	slices.Sort(wayIDs)
	classified := make([]classifiedWay, len(wayIDs))

	opts.Progress.Start("Classifying ways", len(wayIDs))
	g := errgroup.Group{}
	g.SetLimit(opts.Workers)
	chunkSize := (len(wayIDs) + opts.Workers - 1) / opts.Workers
	for start := 0; start < len(wayIDs); start += chunkSize {
		from, to := start, start+chunkSize
		if to > len(wayIDs) {
			to = len(wayIDs)
		}
		g.Go(func() error {
			for i := from; i < to; i++ {
				classified[i] = classifyWay(doc, opts.Classifier, doc.Ways[wayIDs[i]])
				opts.Progress.Next()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "Can't classify ways")
	}
	opts.Progress.Finish()

	result := &Extracted{}
	unclassified := make(map[osm.WayID][]orb.Point)
	for _, item := range classified {
		if !item.valid {
			logger.Warn("way refers to unknown nodes, skipping", zap.Int64("osm_way_id", int64(item.way.ID)))
			continue
		}
		switch item.classification.Category {
		case FEATURE_ROAD:
			if len(item.pts) < 2 {
				logger.Debug("road has less than 2 points", zap.Int64("osm_way_id", int64(item.way.ID)))
				continue
			}
			result.Roads = append(result.Roads, newRawRoad(item.way, item.pts, item.tags))
		case FEATURE_BUILDING:
			if len(item.pts) < 3 {
				logger.Debug("building has less than 3 points", zap.Int64("osm_way_id", int64(item.way.ID)))
				continue
			}
			result.Buildings = append(result.Buildings, newBuilding(item.way, item.pts, item.tags))
		case FEATURE_AREA:
			if len(item.pts) < 3 {
				logger.Debug("area has less than 3 points", zap.Int64("osm_way_id", int64(item.way.ID)))
				continue
			}
			result.Areas = append(result.Areas, Area{
				AreaType: item.classification.AreaType,
				OSMID:    int64(item.way.ID),
				Points:   closeRing(item.pts),
				Tags:     item.tags,
			})
		default:
			unclassified[item.way.ID] = item.pts
		}
	}

	relationIDs := maps.Keys(doc.Relations)
	slices.Sort(relationIDs)
	for _, relationID := range relationIDs {
		areas := extractMultipolygon(doc.Relations[relationID], unclassified, opts)
		result.Areas = append(result.Areas, areas...)
	}

	logger.Info("Extraction is done",
		zap.Int("roads", len(result.Roads)),
		zap.Int("buildings", len(result.Buildings)),
		zap.Int("areas", len(result.Areas)),
	)
	return result, nil
}

func classifyWay(doc *Document, classifier *Classifier, way *osm.Way) classifiedWay {
	item := classifiedWay{
		way:  way,
		tags: tagsFromOSM(way.Tags),
	}
	item.pts, item.valid = doc.resolveWay(way)
	item.classification = classifier.Classify(item.tags)
	return item
}

// extractMultipolygon glues outer members of `type=multipolygon` relation into areas
func extractMultipolygon(relation *osm.Relation, unclassified map[osm.WayID][]orb.Point, opts ExtractOptions) []Area {
	logger := opts.Logger
	tags := tagsFromOSM(relation.Tags)
	if !tags.Is("type", "multipolygon") {
		return nil
	}
	classification := opts.Classifier.Classify(tags)
	if classification.Category != FEATURE_AREA {
		return nil
	}
	relationField := zap.Int64("osm_relation_id", int64(relation.ID))
	fragments := make([][]orb.Point, 0, len(relation.Members))
	ok := true
	for _, member := range relation.Members {
		if member.Type != osm.TypeWay {
			logger.Warn("multipolygon refers to unhandled member",
				relationField,
				zap.String("member_type", string(member.Type)),
				zap.Int64("member_ref", member.Ref),
				zap.String("role", member.Role),
			)
			if member.Role == "outer" {
				ok = false
			}
			continue
		}
		pts, found := unclassified[osm.WayID(member.Ref)]
		if !found {
			// The way has been clipped out of the extract
			continue
		}
		if member.Role != "outer" {
			logger.Warn("multipolygon member has unhandled role",
				relationField,
				zap.Int64("osm_way_id", member.Ref),
				zap.String("role", member.Role),
			)
			continue
		}
		fragments = append(fragments, pts)
	}
	if !ok {
		return nil
	}
	rings := GlueMultipolygon(fragments, opts.Boundary, opts.RingClosure)
	if len(rings) == 0 {
		logger.Warn("failed to glue multipolygon", relationField, zap.Int("fragments", len(fragments)))
		return nil
	}
	areas := make([]Area, 0, len(rings))
	for _, ring := range rings {
		areas = append(areas, Area{
			AreaType: classification.AreaType,
			OSMID:    int64(relation.ID),
			Points:   ring,
			Tags:     tags,
		})
	}
	return areas
}
