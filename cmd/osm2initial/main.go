package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/ch"
	"github.com/LdDl/osm2initial"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	osmFileName   = flag.String("file", "my_map.osm", "Filename of *.osm, *.xml or *.osm.pbf file")
	boundaryFile  = flag.String("boundary", "", "GeoJSON file with clip polygon. If empty, bounds are derived from the data")
	configFile    = flag.String("config", "", "Config file (yaml/json/toml). If empty, defaults (and OSM2INITIAL_* env variables) are used")
	mapName       = flag.String("name", "", "Name of the map. If empty, file name is used")
	out           = flag.String("out", "my_map.csv", "Filename of 'Comma-Separated Values' (CSV) formatted file. E.g.: if file name is 'map.csv' then 'map_intersections.csv' and 'map_roads.csv' will be produced")
	geojsonOut    = flag.String("geojson", "", "Filename for GeoJSON export of intersection polygons and roads. If empty, nothing is exported")
	snapshotsFile = flag.String("snapshots", "", "bbolt database for snapshots of every stage. If empty, snapshots are disabled")
	doContraction = flag.Bool("contract", false, "Prepare contraction hierarchies over the final roads graph?")
	logLevel      = flag.String("loglevel", "info", "Log level: debug / info / warn / error")
	showProgress  = flag.Bool("progress", true, "Show progress bars?")
)

func main() {
	flag.Parse()

	logger, err := osm2initial.NewLogger(*logLevel)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer logger.Sync()

	cfg, err := osm2initial.LoadConfig(*configFile)
	if err != nil {
		logger.Fatal("Can't load config", zap.Error(err))
	}

	options := []func(*osm2initial.Parser){
		osm2initial.WithConfig(cfg),
		osm2initial.WithLogger(logger),
	}
	if *mapName != "" {
		options = append(options, osm2initial.WithName(*mapName))
	}
	if *showProgress {
		options = append(options, osm2initial.WithProgress(osm2initial.NewBarProgress()))
	}
	if *boundaryFile != "" {
		boundary, err := osm2initial.ReadBoundary(*boundaryFile)
		if err != nil {
			logger.Fatal("Can't read boundary", zap.Error(err))
		}
		options = append(options, osm2initial.WithBoundary(boundary))
	}
	if *snapshotsFile != "" {
		store, err := osm2initial.OpenSnapshotStore(*snapshotsFile)
		if err != nil {
			logger.Fatal("Can't open snapshots", zap.Error(err))
		}
		defer store.Close()
		options = append(options, osm2initial.WithSnapshots(store))
	}

	parser := osm2initial.NewParser(*osmFileName, options...)
	logger.Debug(parser.String())

	st := time.Now()
	result, err := parser.Build()
	if err != nil {
		logger.Fatal("Can't build initial map", zap.Error(err))
	}
	logger.Info("Initial map is ready",
		zap.Duration("elapsed", time.Since(st)),
		zap.Int("roads", len(result.Map.Roads)),
		zap.Int("intersections", len(result.Map.Intersections)),
		zap.Int("anomalies", len(result.Anomalies)),
		zap.Int("merged", len(result.Merged)),
	)

	err = result.Map.ExportToCSV(*out)
	if err != nil {
		logger.Fatal("Can't export CSV", zap.Error(err))
	}

	if *geojsonOut != "" {
		file, err := os.Create(*geojsonOut)
		if err != nil {
			logger.Fatal("Can't create GeoJSON file", zap.Error(err))
		}
		defer file.Close()
		err = result.Map.ExportGeoJSON(file)
		if err != nil {
			logger.Fatal("Can't export GeoJSON", zap.Error(err))
		}
	}

	if *doContraction {
		err = exportContraction(result.Map, *out, logger)
		if err != nil {
			logger.Fatal("Can't prepare contraction hierarchies", zap.Error(err))
		}
	}
}

// exportContraction writes vertices and shortcuts of the contraction hierarchies built over drivable roads
func exportContraction(initialMap *osm2initial.InitialMap, out string, logger *zap.Logger) error {
	fnamePart := strings.Split(out, ".csv") // to guarantee proper filename and its extension
	fnameVertices := fnamePart[0] + "_vertices.csv"
	fnameShortcuts := fnamePart[0] + "_shortcuts.csv"

	graph := ch.Graph{}
	for _, intersectionID := range initialMap.IntersectionIDs() {
		err := graph.CreateVertex(int64(intersectionID))
		if err != nil {
			return errors.Wrap(err, "Can not create vertex")
		}
	}
	for _, roadID := range initialMap.RoadIDs() {
		road := initialMap.Roads[roadID]
		cost := planar.Length(road.OriginalCenter)
		fwd, back := road.DrivingDirections()
		if fwd {
			err := graph.AddEdge(int64(road.Src), int64(road.Dst), cost)
			if err != nil {
				return errors.Wrap(err, "Can not wrap Source and Target vertices as Edge")
			}
		}
		if back {
			err := graph.AddEdge(int64(road.Dst), int64(road.Src), cost)
			if err != nil {
				return errors.Wrap(err, "Can not wrap Target and Source vertices as Edge")
			}
		}
	}

	logger.Info("Starting contraction process")
	st := time.Now()
	graph.PrepareContractionHierarchies()
	logger.Info("Done contraction process", zap.Duration("elapsed", time.Since(st)))

	fileVertices, err := os.Create(fnameVertices)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer fileVertices.Close()
	writerVertices := csv.NewWriter(fileVertices)
	defer writerVertices.Flush()
	writerVertices.Comma = ';'
	// 		vertex_id - int64, ID of intersection
	// 		order_pos - int, Position of vertex in hierarchies (evaluted by library)
	// 		importance - int, Importance of vertex in graph (evaluted by library)
	//      geom - WKT point
	err = writerVertices.Write([]string{"vertex_id", "order_pos", "importance", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for i := 0; i < len(graph.Vertices); i++ {
		label := graph.Vertices[i].Label
		pt := orb.Point{}
		if intersection, ok := initialMap.Intersections[osm2initial.StableIntersectionID(label)]; ok {
			pt = intersection.Point
			if initialMap.GPSBounds != nil {
				pt = initialMap.GPSBounds.ToGPS(pt)
			}
		}
		err = writerVertices.Write([]string{
			fmt.Sprintf("%d", label),
			fmt.Sprintf("%d", graph.Vertices[i].OrderPos()),
			fmt.Sprintf("%d", graph.Vertices[i].Importance()),
			wkt.MarshalString(pt),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write vertex")
		}
	}

	// 	from_vertex_id - int64, ID of source vertex
	// 	to_vertex_id - int64, ID of target vertex
	// 	weight - float64, Weight of an edge (meters)
	// 	via_vertex_id - int64, ID of vertex through which the shortcut exists
	err = graph.ExportShortcutsToFile(fnameShortcuts)
	if err != nil {
		return errors.Wrap(err, "Can't export shortcuts")
	}
	return nil
}
