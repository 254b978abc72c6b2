package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

const (
	dimensions  = 2
	minChildren = 2
	maxChildren = 8

	// Minimum side of an indexed box and half-side of a query box, in degrees.
	minExtent = 1e-9
)

// polygonItem wraps a polygon's bounding box for R-tree indexing.
type polygonItem struct {
	idx  int
	rect *rtreego.Rect
}

func (p *polygonItem) Bounds() *rtreego.Rect {
	return p.rect
}

// AquiferIndex answers point-in-polygon queries over the aquifer set. The
// R-tree only narrows candidates by bounding box; containment is decided by
// ray casting in listing order, so the first listed polygon wins on overlap.
type AquiferIndex struct {
	polygons []domain.AquiferPolygon
	tree     *rtreego.Rtree
}

// NewAquiferIndex indexes polygons in the order given. Rings with fewer than
// three vertices are ignored.
func NewAquiferIndex(polygons []domain.AquiferPolygon) *AquiferIndex {
	ix := &AquiferIndex{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
	for _, p := range polygons {
		if len(p.Ring) < 3 {
			continue
		}
		lo, hi := domain.RingBounds(p.Ring)
		rect, err := rtreego.NewRect(
			rtreego.Point{lo[0], lo[1]},
			[]float64{max(hi[0]-lo[0], minExtent), max(hi[1]-lo[1], minExtent)},
		)
		if err != nil {
			continue
		}
		ix.tree.Insert(&polygonItem{idx: len(ix.polygons), rect: rect})
		ix.polygons = append(ix.polygons, p)
	}
	return ix
}

// Len returns the number of indexed polygons.
func (ix *AquiferIndex) Len() int {
	return len(ix.polygons)
}

// Lookup returns the first listed aquifer whose polygon contains pt.
func (ix *AquiferIndex) Lookup(pt domain.GeoPoint) (domain.Aquifer, bool) {
	if ix == nil || len(ix.polygons) == 0 {
		return domain.Aquifer{}, false
	}
	query := rtreego.Point{pt.Lon, pt.Lat}.ToRect(minExtent)
	hits := ix.tree.SearchIntersect(query)

	candidates := make([]int, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, h.(*polygonItem).idx)
	}
	slices.Sort(candidates)

	for _, i := range candidates {
		p := ix.polygons[i]
		if domain.PointInPolygon(pt, p.Ring) {
			return domain.Aquifer{Name: p.Name, Type: p.Type}, true
		}
	}
	return domain.Aquifer{}, false
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"properties"`
	Geometry struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
}

// parseAquifers reads a GeoJSON FeatureCollection of Polygon or MultiPolygon
// features. Only outer rings are used. Unusable features are skipped.
func parseAquifers(b []byte, logger *slog.Logger) ([]domain.AquiferPolygon, error) {
	var fc featureCollection
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("decode aquifers: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, errors.New("aquifers: not a FeatureCollection")
	}

	var out []domain.AquiferPolygon
	for i, f := range fc.Features {
		aqType := f.Properties.Type
		if !domain.ValidateAquiferType(aqType).Valid {
			aqType = domain.AquiferUnknown
		}

		var rings [][][]float64
		switch f.Geometry.Type {
		case "Polygon":
			var poly [][][]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &poly); err != nil || len(poly) == 0 {
				logger.Warn("skipping aquifer feature", "index", i, "name", f.Properties.Name, "error", err)
				continue
			}
			rings = append(rings, poly[0])
		case "MultiPolygon":
			var multi [][][][]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &multi); err != nil {
				logger.Warn("skipping aquifer feature", "index", i, "name", f.Properties.Name, "error", err)
				continue
			}
			for _, poly := range multi {
				if len(poly) > 0 {
					rings = append(rings, poly[0])
				}
			}
		default:
			logger.Warn("skipping aquifer feature", "index", i, "geometry", f.Geometry.Type)
			continue
		}

		for _, r := range rings {
			ring := make([][2]float64, 0, len(r))
			for _, pos := range r {
				if len(pos) >= 2 {
					ring = append(ring, [2]float64{pos[0], pos[1]})
				}
			}
			out = append(out, domain.AquiferPolygon{Name: f.Properties.Name, Type: aqType, Ring: ring})
		}
	}
	return out, nil
}
