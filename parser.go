package osm2initial

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Parser runs the whole pipeline: OSM document -> extracted features -> raw map -> initial map
type Parser struct {
	filename   string
	name       string
	boundary   orb.Ring
	cfg        Config
	laneLayout LaneLayoutFunc
	edits      *MapEdits
	logger     *zap.Logger
	progress   Progress
	snapshots  *SnapshotStore
}

// Result is what Parser produces
type Result struct {
	Map       *InitialMap
	Raw       *RawMap
	Anomalies []Anomaly
	Merged    []StableRoadID
}

func (parser *Parser) String() string {
	return fmt.Sprintf(`
Initial map parser parameters:
	filename: '%s'
	name: '%s'
	boundary points: %d
	excluded_highways: '%s'
	lane_width: %f
	dead_end_length: %f
	anomaly_depth: %d
	short_road_threshold: %f
	ring_closure: '%s'
	workers: %d
	snapshots enabled?: %t
	`,
		parser.filename,
		parser.name,
		len(parser.boundary),
		strings.Join(parser.cfg.ExcludedHighways, ","),
		parser.cfg.LaneWidth,
		parser.cfg.DeadEndLength,
		parser.cfg.AnomalyDepth,
		parser.cfg.ShortRoadThreshold,
		parser.cfg.RingClosure,
		parser.cfg.Workers,
		parser.snapshots != nil,
	)
}

// NewParser returns parser for the given OSM file. Map name defaults to the file name without extensions.
func NewParser(fileName string, options ...func(*Parser)) *Parser {
	base := filepath.Base(fileName)
	parser := &Parser{
		filename:   fileName,
		name:       strings.SplitN(base, ".", 2)[0],
		cfg:        DefaultConfig(),
		laneLayout: DefaultLaneLayout,
		logger:     zap.NewNop(),
		progress:   NopProgress{},
	}
	for _, option := range options {
		option(parser)
	}
	return parser
}

func WithName(name string) func(*Parser) {
	return func(parser *Parser) {
		parser.name = name
	}
}

// WithBoundary sets clip polygon (lon/lat)
func WithBoundary(boundary orb.Ring) func(*Parser) {
	return func(parser *Parser) {
		parser.boundary = boundary
	}
}

func WithConfig(cfg Config) func(*Parser) {
	return func(parser *Parser) {
		parser.cfg = cfg
	}
}

func WithLaneLayout(laneLayout LaneLayoutFunc) func(*Parser) {
	return func(parser *Parser) {
		parser.laneLayout = laneLayout
	}
}

func WithEdits(edits *MapEdits) func(*Parser) {
	return func(parser *Parser) {
		parser.edits = edits
	}
}

func WithLogger(logger *zap.Logger) func(*Parser) {
	return func(parser *Parser) {
		parser.logger = logger
	}
}

func WithProgress(progress Progress) func(*Parser) {
	return func(parser *Parser) {
		parser.progress = progress
	}
}

// WithSnapshots enables saving snapshot after every stage which changes the graph
func WithSnapshots(store *SnapshotStore) func(*Parser) {
	return func(parser *Parser) {
		parser.snapshots = store
	}
}

// Build reads the file and runs every stage
func (parser *Parser) Build() (*Result, error) {
	doc, err := ReadDocument(parser.filename, parser.logger)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read OSM file")
	}
	return parser.BuildFromDocument(doc)
}

// BuildFromDocument runs every stage over already parsed document
func (parser *Parser) BuildFromDocument(doc *Document) (*Result, error) {
	if err := parser.cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Bad configuration")
	}
	ringClosure, _ := ParseRingClosure(parser.cfg.RingClosure)
	logger := parser.logger

	extracted, err := Extract(doc, ExtractOptions{
		Classifier:  NewClassifier(parser.cfg.ExcludedHighways),
		Boundary:    parser.boundary,
		RingClosure: ringClosure,
		Workers:     parser.cfg.Workers,
		Logger:      logger,
		Progress:    parser.progress,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't extract features")
	}
	rawMap := NewRawMap(parser.name, extracted, parser.boundary, logger)

	initialMap, err := BuildInitialMap(rawMap, BuildOptions{
		LaneLayout: parser.laneLayout,
		Edits:      parser.edits,
		LaneWidth:  parser.cfg.LaneWidth,
		Logger:     logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't build initial map")
	}
	if err := parser.saveSnapshot(initialMap); err != nil {
		return nil, err
	}

	synthesis := SynthesisOptions{
		DeadEndLength: parser.cfg.DeadEndLength,
		Workers:       parser.cfg.Workers,
		Logger:        logger,
		Progress:      parser.progress,
	}
	if err := SynthesizePolygons(initialMap, synthesis); err != nil {
		return nil, errors.Wrap(err, "Can't synthesize intersection polygons")
	}
	if err := initialMap.validate(); err != nil {
		return nil, errors.Wrap(err, "Graph is inconsistent after polygons synthesis")
	}
	if err := parser.saveSnapshot(initialMap); err != nil {
		return nil, err
	}

	result := &Result{
		Map:       initialMap,
		Raw:       rawMap,
		Anomalies: DetectAnomalies(initialMap, parser.cfg.AnomalyDepth, logger),
	}
	logger.Info("Anomalies scan is done", zap.Int("anomalies", len(result.Anomalies)))

	if parser.cfg.ShortRoadThreshold > 0 {
		// Polygons of merged intersections are recomputed without progress bar
		synthesis.Progress = nil
		result.Merged, err = MergeShortRoads(initialMap, MergeOptions{
			Threshold: parser.cfg.ShortRoadThreshold,
			Synthesis: synthesis,
			Logger:    logger,
		})
		if err != nil {
			return nil, errors.Wrap(err, "Can't merge short roads")
		}
		if err := parser.saveSnapshot(initialMap); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (parser *Parser) saveSnapshot(initialMap *InitialMap) error {
	if parser.snapshots == nil {
		return nil
	}
	version, err := initialMap.Save(parser.snapshots, initialMap.FocusOn)
	if err != nil {
		return errors.Wrap(err, "Can't save snapshot")
	}
	parser.logger.Debug("snapshot saved", zap.String("name", initialMap.Name), zap.Uint64("version", version))
	return nil
}
