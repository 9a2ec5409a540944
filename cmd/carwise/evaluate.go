package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/carwise/internal/domain/catalog"
	"github.com/okian/carwise/internal/domain/pricing"
	"github.com/okian/carwise/internal/domain/reliability"
	"github.com/okian/carwise/internal/domain/vehicle"
	"github.com/spf13/cobra"
)

// vehicleFlags binds the descriptor flags shared by assess and price.
type vehicleFlags struct {
	brand        string
	model        string
	year         int
	mileage      int
	fuel         string
	transmission string
}

func (f *vehicleFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.brand, "brand", "", "vehicle brand, e.g. Volkswagen")
	fs.StringVar(&f.model, "model", "", "vehicle model, e.g. Golf")
	fs.IntVar(&f.year, "year", 0, "model year")
	fs.IntVar(&f.mileage, "mileage", 0, "odometer reading in km")
	fs.StringVar(&f.fuel, "fuel", "", "fuel type (default Gasoline)")
	fs.StringVar(&f.transmission, "transmission", "", "transmission type (default Manual)")
	_ = cmd.MarkFlagRequired("brand")
	_ = cmd.MarkFlagRequired("year")
}

func (f *vehicleFlags) descriptor() vehicle.Descriptor {
	return vehicle.Descriptor{
		Brand:            f.brand,
		Model:            f.model,
		ModelYear:        f.year,
		MileageKm:        f.mileage,
		FuelType:         vehicle.FuelType(f.fuel),
		TransmissionType: vehicle.TransmissionType(f.transmission),
	}
}

func newAssessCmd() *cobra.Command {
	var f vehicleFlags
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Print a reliability assessment as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := reliability.NewEstimator().Assess(f.descriptor())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}
	f.register(cmd)
	return cmd
}

func newPriceCmd() *cobra.Command {
	var (
		f           vehicleFlags
		catalogPath string
	)
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Print a price estimate as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			est, err := pricing.NewEstimator(cat).Estimate(f.descriptor())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), est)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog override file (YAML or JSON)")
	return cmd
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
