package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/app"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/config"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/observability"
)

type cli struct {
	out      io.Writer
	errOut   io.Writer
	logLevel string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:          "rtrwhctl",
		Short:        "Rooftop rainwater harvesting assessment from the command line",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(c.rainfallCmd())
	root.AddCommand(c.groundwaterCmd())
	root.AddCommand(c.contextCmd())
	root.AddCommand(c.assessCmd())
	root.AddCommand(c.boundariesCmd())
	return root
}

func (c *cli) core() (*app.Core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.NewLoggerTo(c.errOut, c.logLevel, "text")
	return app.Build(cfg, logger, observability.NewMetricsWith(prometheus.NewRegistry()))
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func locationFlags(cmd *cobra.Command, lat, lon *float64) {
	cmd.Flags().Float64Var(lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(lon, "lon", 0, "longitude in decimal degrees")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
}

func (c *cli) rainfallCmd() *cobra.Command {
	var (
		lat, lon float64
		source   string
	)
	cmd := &cobra.Command{
		Use:   "rainfall",
		Short: "Resolve annual and monthly rainfall for a point",
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := c.core()
			if err != nil {
				return err
			}
			if source == "" {
				res, err := core.Service.GetRainfall(cmd.Context(), lat, lon)
				if err != nil {
					return err
				}
				return c.print(res)
			}
			pt, err := domain.ValidateLocation(lat, lon)
			if err != nil {
				return err
			}
			res, err := core.Rainfall.Stage(cmd.Context(), source, pt)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	locationFlags(cmd, &lat, &lon)
	cmd.Flags().StringVar(&source, "source", "", "query a single source (open-meteo, nasa-power, static) instead of the fallback chain")
	return cmd
}

func (c *cli) groundwaterCmd() *cobra.Command {
	var lat, lon float64
	cmd := &cobra.Command{
		Use:   "groundwater",
		Short: "Resolve groundwater depth and aquifer for a point",
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := c.core()
			if err != nil {
				return err
			}
			gw, err := core.Service.GetGroundwater(cmd.Context(), lat, lon)
			if err != nil {
				return err
			}
			return c.print(gw)
		},
	}
	locationFlags(cmd, &lat, &lon)
	return cmd
}

func (c *cli) contextCmd() *cobra.Command {
	var lat, lon float64
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Resolve rainfall, groundwater, aquifer, and site defaults for a point",
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := c.core()
			if err != nil {
				return err
			}
			rc, err := core.Service.ResolveContext(cmd.Context(), lat, lon)
			if err != nil {
				return err
			}
			return c.print(rc)
		},
	}
	locationFlags(cmd, &lat, &lon)
	return cmd
}

func (c *cli) assessCmd() *cobra.Command {
	var (
		file                 string
		lat, lon, roofArea   float64
		openSpace, occupiers float64
		efficiency           float64
		roofType             string
	)
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run a full assessment from flags or a JSON request file",
		Long: "Run a full assessment. The request comes from --file (use - for stdin)\n" +
			"or from the individual flags; unset optional flags take their defaults.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req domain.AssessmentRequest
			if file != "" {
				r, err := c.readRequest(cmd, file)
				if err != nil {
					return err
				}
				req = r
			} else {
				f := cmd.Flags()
				if f.Changed("lat") || f.Changed("lon") {
					req.Location = &domain.LocationRequest{}
					if f.Changed("lat") {
						req.Location.Lat = &lat
					}
					if f.Changed("lon") {
						req.Location.Lon = &lon
					}
				}
				if f.Changed("roof-area") {
					req.RoofAreaM2 = &roofArea
				}
				if f.Changed("roof-type") {
					req.RoofType = &roofType
				}
				if f.Changed("open-space") {
					req.OpenSpaceM2 = &openSpace
				}
				if f.Changed("occupiers") {
					req.Occupiers = &occupiers
				}
				if f.Changed("efficiency") {
					req.CollectionEfficiency = &efficiency
				}
			}

			core, err := c.core()
			if err != nil {
				return err
			}
			res, err := core.Service.Assess(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON assessment request (- for stdin)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in decimal degrees")
	cmd.Flags().Float64Var(&roofArea, "roof-area", 0, "roof area in m²")
	cmd.Flags().StringVar(&roofType, "roof-type", "", "roof type (concrete, tile, metal, asbestos)")
	cmd.Flags().Float64Var(&openSpace, "open-space", 0, "open space in m²")
	cmd.Flags().Float64Var(&occupiers, "occupiers", 0, "number of occupiers")
	cmd.Flags().Float64Var(&efficiency, "efficiency", 0, "collection efficiency (0.1 to 1.0)")
	cmd.MarkFlagsMutuallyExclusive("file", "lat")
	cmd.MarkFlagsMutuallyExclusive("file", "roof-area")
	return cmd
}

func (c *cli) readRequest(cmd *cobra.Command, file string) (domain.AssessmentRequest, error) {
	var r io.Reader
	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return domain.AssessmentRequest{}, fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}
	var req domain.AssessmentRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return domain.AssessmentRequest{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

func (c *cli) boundariesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boundaries",
		Short: "Print validation ranges and check every boundary probe",
		RunE: func(_ *cobra.Command, _ []string) error {
			probes := domain.ProbeBoundaries()
			var failed []string
			for _, p := range probes {
				if !p.Passed() {
					failed = append(failed, fmt.Sprintf("%s=%g", p.Field, p.Value))
				}
			}
			if err := c.print(map[string]any{
				"boundaries": domain.Boundaries(),
				"probes":     probes,
				"passed":     len(failed) == 0,
			}); err != nil {
				return err
			}
			if len(failed) > 0 {
				return errors.New("boundary probes failed: " + fmt.Sprint(failed))
			}
			return nil
		},
	}
}
