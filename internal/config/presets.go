package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Simplici0/salesdash/internal/unitecon"
)

// Presets are the calculator form defaults and the logistics tariff.
type Presets struct {
	Parameters unitecon.CostParameters
	Tariff     unitecon.Tariff
}

type presetFile struct {
	Parameters struct {
		UnitCost                  float64 `mapstructure:"unit_cost"`
		CommissionRate            float64 `mapstructure:"commission_rate"`
		AcquiringRate             float64 `mapstructure:"acquiring_rate"`
		ReturnRate                float64 `mapstructure:"return_rate"`
		VATRate                   float64 `mapstructure:"vat_rate"`
		StorageDays               int     `mapstructure:"storage_days"`
		StorageCostPerLiterPerDay float64 `mapstructure:"storage_cost_per_liter_per_day"`
		ReverseLogisticsCost      float64 `mapstructure:"reverse_logistics_cost"`
		DimensionsMm              string  `mapstructure:"dimensions_mm"`
		WarehouseCoefficient      float64 `mapstructure:"warehouse_coefficient"`
	} `mapstructure:"parameters"`
	Tariff struct {
		BaseDeliveryFee     float64 `mapstructure:"base_delivery_fee"`
		DeliveryFeePerLiter float64 `mapstructure:"delivery_fee_per_liter"`
		BaseVolumeLiters    float64 `mapstructure:"base_volume_liters"`
	} `mapstructure:"tariff"`
}

// LoadPresets reads calculator presets from a YAML/JSON/TOML file. Keys that
// are absent fall back to the built-in defaults; an empty path returns the
// defaults alone.
func LoadPresets(path string) (Presets, error) {
	params := unitecon.DefaultParameters()
	tariff := unitecon.DefaultTariff()

	v := viper.New()
	defaults := map[string]any{
		"parameters.unit_cost":                      params.UnitCost,
		"parameters.commission_rate":                params.CommissionRate,
		"parameters.acquiring_rate":                 params.AcquiringRate,
		"parameters.return_rate":                    params.ReturnRate,
		"parameters.vat_rate":                       params.VATRate,
		"parameters.storage_days":                   params.StorageDays,
		"parameters.storage_cost_per_liter_per_day": params.StorageCostPerLiterPerDay,
		"parameters.reverse_logistics_cost":         params.ReverseLogisticsCost,
		"parameters.dimensions_mm":                  params.DimensionsMm,
		"parameters.warehouse_coefficient":          params.WarehouseCoefficient,
		"tariff.base_delivery_fee":                  tariff.BaseDeliveryFee,
		"tariff.delivery_fee_per_liter":             tariff.DeliveryFeePerLiter,
		"tariff.base_volume_liters":                 tariff.BaseVolumeLiters,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Presets{}, fmt.Errorf("read presets %s: %w", path, err)
		}
	}

	var file presetFile
	if err := v.Unmarshal(&file); err != nil {
		return Presets{}, fmt.Errorf("decode presets: %w", err)
	}

	if _, err := unitecon.ParseDimensions(file.Parameters.DimensionsMm); err != nil {
		return Presets{}, fmt.Errorf("presets: %w", err)
	}

	p := file.Parameters
	t := file.Tariff
	return Presets{
		Parameters: unitecon.CostParameters{
			UnitCost:                  p.UnitCost,
			CommissionRate:            p.CommissionRate,
			AcquiringRate:             p.AcquiringRate,
			ReturnRate:                p.ReturnRate,
			VATRate:                   p.VATRate,
			StorageDays:               p.StorageDays,
			StorageCostPerLiterPerDay: p.StorageCostPerLiterPerDay,
			ReverseLogisticsCost:      p.ReverseLogisticsCost,
			DimensionsMm:              p.DimensionsMm,
			WarehouseCoefficient:      p.WarehouseCoefficient,
		},
		Tariff: unitecon.Tariff{
			BaseDeliveryFee:     t.BaseDeliveryFee,
			DeliveryFeePerLiter: t.DeliveryFeePerLiter,
			BaseVolumeLiters:    t.BaseVolumeLiters,
		},
	}, nil
}
