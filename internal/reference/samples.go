package reference

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

// parseSamples reads a groundwater CSV with a header naming at least lat, lon,
// and depth; aquifer is optional. Rows that fail to parse or fall outside the
// accepted depth range are skipped.
func parseSamples(b []byte, logger *slog.Logger) ([]domain.GroundwaterSample, error) {
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"lat", "lon", "depth"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing %q column", name)
		}
	}
	aqCol, hasAquifer := col["aquifer"]

	var samples []domain.GroundwaterSample
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		s, err := sampleFromRecord(rec, col)
		if err != nil {
			logger.Warn("skipping groundwater sample", "line", line, "error", err)
			continue
		}
		if hasAquifer && aqCol < len(rec) {
			s.AquiferName = strings.TrimSpace(rec[aqCol])
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func sampleFromRecord(rec []string, col map[string]int) (domain.GroundwaterSample, error) {
	field := func(name string) (float64, error) {
		i := col[name]
		if i >= len(rec) {
			return 0, fmt.Errorf("missing %s", name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", name, err)
		}
		return v, nil
	}

	lat, err := field("lat")
	if err != nil {
		return domain.GroundwaterSample{}, err
	}
	lon, err := field("lon")
	if err != nil {
		return domain.GroundwaterSample{}, err
	}
	depth, err := field("depth")
	if err != nil {
		return domain.GroundwaterSample{}, err
	}
	if _, err := domain.ValidateLocation(lat, lon); err != nil {
		return domain.GroundwaterSample{}, err
	}
	if r := domain.ValidateGroundwaterDepth(depth); !r.Valid {
		return domain.GroundwaterSample{}, errors.New(r.Error)
	}
	return domain.GroundwaterSample{Lat: lat, Lon: lon, DepthM: depth}, nil
}
