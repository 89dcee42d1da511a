package unitecon

import (
	"errors"
	"math"
)

// ErrUndefinedVAT is returned when the VAT rate makes the price denominator zero.
var ErrUndefinedVAT = errors.New("vat rate of -100% leaves price excluding VAT undefined")

// ErrNonFiniteResult is returned when the inputs overflow float64.
var ErrNonFiniteResult = errors.New("inputs are too large to produce a finite result")

// CostParameters represents the merchant and logistics inputs of one evaluation.
type CostParameters struct {
	UnitCost                  float64 `json:"unit_cost"`
	CommissionRate            float64 `json:"commission_rate"`
	AcquiringRate             float64 `json:"acquiring_rate"`
	ReturnRate                float64 `json:"return_rate"`
	VATRate                   float64 `json:"vat_rate"`
	StorageDays               int     `json:"storage_days"`
	StorageCostPerLiterPerDay float64 `json:"storage_cost_per_liter_per_day"`
	ReverseLogisticsCost      float64 `json:"reverse_logistics_cost"`
	DimensionsMm              string  `json:"dimensions_mm"`
	WarehouseCoefficient      float64 `json:"warehouse_coefficient"`
}

// PriceContext carries the historical price of the selected item.
type PriceContext struct {
	AverageUnitPrice float64
}

// Tariff holds the marketplace logistics constants.
type Tariff struct {
	BaseDeliveryFee     float64
	DeliveryFeePerLiter float64
	BaseVolumeLiters    float64
}

// CostBreakdown contains all intermediate and final values of one evaluation.
type CostBreakdown struct {
	VolumeLiters      float64 `json:"volume_liters"`
	PriceExcludingVAT float64 `json:"price_excluding_vat"`
	CommissionFee     float64 `json:"commission_fee"`
	AcquiringFee      float64 `json:"acquiring_fee"`
	DeliveryFee       float64 `json:"delivery_fee"`
	StorageFee        float64 `json:"storage_fee"`
	ReturnLoss        float64 `json:"return_loss"`
	TotalCost         float64 `json:"total_cost"`
	Profit            float64 `json:"profit"`
}

// Profitable reports whether the unit breaks even or better.
func (b CostBreakdown) Profitable() bool {
	return b.Profit >= 0
}

// Margin returns profit as a fraction of the price excluding VAT.
func (b CostBreakdown) Margin() float64 {
	if b.PriceExcludingVAT == 0 {
		return 0
	}
	return b.Profit / b.PriceExcludingVAT
}

// Engine evaluates unit economics. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	tariff Tariff
}

// DefaultTariff returns the standard marketplace logistics tariff.
func DefaultTariff() Tariff {
	return Tariff{
		BaseDeliveryFee:     38,
		DeliveryFeePerLiter: 9.5,
		BaseVolumeLiters:    1,
	}
}

// DefaultParameters returns the calculator form defaults.
func DefaultParameters() CostParameters {
	return CostParameters{
		UnitCost:                  100.0,
		CommissionRate:            21.0,
		AcquiringRate:             1.9,
		ReturnRate:                7.0,
		VATRate:                   10.0,
		StorageDays:               30,
		StorageCostPerLiterPerDay: 0.07,
		ReverseLogisticsCost:      50.0,
		DimensionsMm:              "13x263x202",
		WarehouseCoefficient:      160.0,
	}
}

// NewEngine creates an Engine using the given tariff.
func NewEngine(tariff Tariff) *Engine {
	return &Engine{tariff: tariff}
}

// Tariff returns the logistics tariff the engine was built with.
func (e *Engine) Tariff() Tariff {
	return e.tariff
}

// Evaluate computes the per-unit cost breakdown and profit.
func (e *Engine) Evaluate(price PriceContext, params CostParameters) (CostBreakdown, error) {
	dims, err := ParseDimensions(params.DimensionsMm)
	if err != nil {
		return CostBreakdown{}, err
	}

	vatDivisor := 1 + params.VATRate/100
	if vatDivisor == 0 {
		return CostBreakdown{}, ErrUndefinedVAT
	}

	volumeLiters := dims.VolumeLiters()
	warehouseK := params.WarehouseCoefficient / 100
	extraLiters := math.Max(volumeLiters-e.tariff.BaseVolumeLiters, 0)

	priceExclVAT := price.AverageUnitPrice / vatDivisor
	commissionFee := priceExclVAT * (params.CommissionRate / 100)
	acquiringFee := priceExclVAT * (params.AcquiringRate / 100)
	deliveryFee := (e.tariff.BaseDeliveryFee + e.tariff.DeliveryFeePerLiter*extraLiters) * warehouseK
	storageFee := (params.StorageCostPerLiterPerDay + params.StorageCostPerLiterPerDay*extraLiters) * warehouseK * float64(params.StorageDays)
	returnLoss := priceExclVAT*(params.ReturnRate/100) + params.ReverseLogisticsCost*(params.ReturnRate/100)

	totalCost := params.UnitCost + commissionFee + acquiringFee + deliveryFee + storageFee + returnLoss

	breakdown := CostBreakdown{
		VolumeLiters:      volumeLiters,
		PriceExcludingVAT: priceExclVAT,
		CommissionFee:     commissionFee,
		AcquiringFee:      acquiringFee,
		DeliveryFee:       deliveryFee,
		StorageFee:        storageFee,
		ReturnLoss:        returnLoss,
		TotalCost:         totalCost,
		Profit:            priceExclVAT - totalCost,
	}
	if !breakdown.finite() {
		return CostBreakdown{}, ErrNonFiniteResult
	}
	return breakdown, nil
}

func (b CostBreakdown) finite() bool {
	for _, v := range []float64{
		b.VolumeLiters, b.PriceExcludingVAT, b.CommissionFee, b.AcquiringFee,
		b.DeliveryFee, b.StorageFee, b.ReturnLoss, b.TotalCost, b.Profit,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
