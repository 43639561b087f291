package osm2initial

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// Document is parsed OSM extract: every node, way and relation keyed by its ID
type Document struct {
	Nodes     map[osm.NodeID]*osm.Node
	Ways      map[osm.WayID]*osm.Way
	Relations map[osm.RelationID]*osm.Relation
}

func newEmptyDocument() *Document {
	return &Document{
		Nodes:     make(map[osm.NodeID]*osm.Node),
		Ways:      make(map[osm.WayID]*osm.Way),
		Relations: make(map[osm.RelationID]*osm.Relation),
	}
}

// NewDocument prepares document from in-memory OSM data
func NewDocument(data *osm.OSM) *Document {
	doc := newEmptyDocument()
	for _, node := range data.Nodes {
		doc.Nodes[node.ID] = node
	}
	for _, way := range data.Ways {
		doc.Ways[way.ID] = way
	}
	for _, relation := range data.Relations {
		doc.Relations[relation.ID] = relation
	}
	return doc
}

// ReadDocument reads whole OSM file. Supported extensions are: '.osm', '.xml', '.pbf' ('.osm.pbf')
func ReadDocument(filename string, logger *zap.Logger) (*Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	var scanner OSMScanner
	// Guess file extension and prepare correct scanner
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".osm", ".xml":
		scanner = osmxml.New(context.Background(), file)
	case ".pbf":
		scanner = osmpbf.New(context.Background(), file, 4)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "extension '%s' for file '%s'", ext, filename)
	}
	defer scanner.Close()

	doc := newEmptyDocument()
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			doc.Nodes[obj.ID] = obj
		case *osm.Way:
			doc.Ways[obj.ID] = obj
		case *osm.Relation:
			doc.Relations[obj.ID] = obj
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Scanner error")
	}
	logger.Info("OSM document has been read",
		zap.String("file", filename),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("ways", len(doc.Ways)),
		zap.Int("relations", len(doc.Relations)),
	)
	return doc, nil
}

// resolveWay returns points of the way. If any node reference can't be resolved then whole way is invalid.
func (doc *Document) resolveWay(way *osm.Way) ([]orb.Point, bool) {
	pts := make([]orb.Point, 0, len(way.Nodes))
	for _, wayNode := range way.Nodes {
		node, ok := doc.Nodes[wayNode.ID]
		if !ok {
			return nil, false
		}
		pts = append(pts, orb.Point{node.Lon, node.Lat})
	}
	return pts, true
}
