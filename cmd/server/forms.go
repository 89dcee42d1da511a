package main

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Simplici0/salesdash/internal/unitecon"
)

// parseUnitForm reads calculator inputs. Fields start from defaults so a
// partially valid form still echoes what was accepted.
func parseUnitForm(values url.Values, defaults unitecon.CostParameters) (unitecon.CostParameters, error) {
	params := defaults

	var err error
	if params.UnitCost, err = parseNonNegativeFloat(values.Get("unit_cost"), "unit_cost"); err != nil {
		return params, err
	}
	if params.CommissionRate, err = parseFloat(values.Get("commission_rate"), "commission_rate"); err != nil {
		return params, err
	}
	if params.AcquiringRate, err = parseFloat(values.Get("acquiring_rate"), "acquiring_rate"); err != nil {
		return params, err
	}
	if params.ReturnRate, err = parseFloat(values.Get("return_rate"), "return_rate"); err != nil {
		return params, err
	}
	if params.VATRate, err = parseFloat(values.Get("vat_rate"), "vat_rate"); err != nil {
		return params, err
	}
	if params.StorageDays, err = parseNonNegativeInt(values.Get("storage_days"), "storage_days"); err != nil {
		return params, err
	}
	if params.StorageCostPerLiterPerDay, err = parseNonNegativeFloat(values.Get("storage_cost_per_liter_per_day"), "storage_cost_per_liter_per_day"); err != nil {
		return params, err
	}
	if params.ReverseLogisticsCost, err = parseNonNegativeFloat(values.Get("reverse_logistics_cost"), "reverse_logistics_cost"); err != nil {
		return params, err
	}
	if params.WarehouseCoefficient, err = parseFloat(values.Get("warehouse_coefficient"), "warehouse_coefficient"); err != nil {
		return params, err
	}
	params.DimensionsMm = strings.TrimSpace(values.Get("dimensions_mm"))

	return params, validateParams(params)
}

// validateParams enforces the calculator input rules shared by the form and
// the JSON API: every number finite, money amounts and storage days >= 0.
// Percentages are not range-checked.
func validateParams(p unitecon.CostParameters) error {
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"commission_rate", p.CommissionRate},
		{"acquiring_rate", p.AcquiringRate},
		{"return_rate", p.ReturnRate},
		{"vat_rate", p.VATRate},
		{"warehouse_coefficient", p.WarehouseCoefficient},
	} {
		if !isFinite(field.value) {
			return fmt.Errorf("%s must be a finite number", field.name)
		}
	}

	for _, field := range []struct {
		name  string
		value float64
	}{
		{"unit_cost", p.UnitCost},
		{"storage_cost_per_liter_per_day", p.StorageCostPerLiterPerDay},
		{"reverse_logistics_cost", p.ReverseLogisticsCost},
	} {
		if !isFinite(field.value) {
			return fmt.Errorf("%s must be a finite number", field.name)
		}
		if field.value < 0 {
			return fmt.Errorf("%s must be greater than or equal to 0", field.name)
		}
	}

	if p.StorageDays < 0 {
		return fmt.Errorf("storage_days must be greater than or equal to 0")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// parseFloat accepts a comma as the decimal separator.
func parseFloat(raw, field string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(value) {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	return value, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := parseFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func parseNonNegativeInt(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}
