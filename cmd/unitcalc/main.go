// Command unitcalc evaluates unit economics for one item from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Simplici0/salesdash/internal/config"
	"github.com/Simplici0/salesdash/internal/sales"
	"github.com/Simplici0/salesdash/internal/unitecon"
)

var (
	labelStyle  = lipgloss.NewStyle().Width(24)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	profitStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e"))
	lossStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	dataPath    string
	item        string
	price       float64
	presetsPath string
	params      unitecon.CostParameters
	tariff      unitecon.Tariff
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	defaults := unitecon.DefaultParameters()
	override := defaults

	fs := flag.NewFlagSet("unitcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dataPath, "data", "", "sales CSV (ID;Date;Amount;SumS) used to price -item")
	fs.StringVar(&opts.item, "item", "", "item id whose average sale price is used")
	fs.Float64Var(&opts.price, "price", 0, "sale price including VAT; replaces -data/-item")
	fs.StringVar(&opts.presetsPath, "presets", "", "presets file with parameter defaults")
	fs.Float64Var(&override.UnitCost, "unit-cost", defaults.UnitCost, "unit cost")
	fs.Float64Var(&override.CommissionRate, "commission", defaults.CommissionRate, "marketplace commission, %")
	fs.Float64Var(&override.AcquiringRate, "acquiring", defaults.AcquiringRate, "acquiring, %")
	fs.Float64Var(&override.ReturnRate, "returns", defaults.ReturnRate, "return rate, %")
	fs.Float64Var(&override.VATRate, "vat", defaults.VATRate, "VAT, %")
	fs.IntVar(&override.StorageDays, "storage-days", defaults.StorageDays, "storage period in days")
	fs.Float64Var(&override.StorageCostPerLiterPerDay, "storage-cost", defaults.StorageCostPerLiterPerDay, "storage cost per liter per day")
	fs.Float64Var(&override.ReverseLogisticsCost, "reverse-cost", defaults.ReverseLogisticsCost, "reverse logistics cost per return")
	fs.StringVar(&override.DimensionsMm, "dims", defaults.DimensionsMm, "package dimensions LxWxH in mm")
	fs.Float64Var(&override.WarehouseCoefficient, "warehouse", defaults.WarehouseCoefficient, "warehouse coefficient, %")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	presets, err := config.LoadPresets(opts.presetsPath)
	if err != nil {
		return opts, err
	}
	opts.params = presets.Parameters
	opts.tariff = presets.Tariff

	// Explicit flags win over presets.
	priceSet := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "price":
			priceSet = true
		case "unit-cost":
			opts.params.UnitCost = override.UnitCost
		case "commission":
			opts.params.CommissionRate = override.CommissionRate
		case "acquiring":
			opts.params.AcquiringRate = override.AcquiringRate
		case "returns":
			opts.params.ReturnRate = override.ReturnRate
		case "vat":
			opts.params.VATRate = override.VATRate
		case "storage-days":
			opts.params.StorageDays = override.StorageDays
		case "storage-cost":
			opts.params.StorageCostPerLiterPerDay = override.StorageCostPerLiterPerDay
		case "reverse-cost":
			opts.params.ReverseLogisticsCost = override.ReverseLogisticsCost
		case "dims":
			opts.params.DimensionsMm = override.DimensionsMm
		case "warehouse":
			opts.params.WarehouseCoefficient = override.WarehouseCoefficient
		}
	})

	if !priceSet && (opts.dataPath == "" || opts.item == "") {
		return opts, errors.New("either -price or both -data and -item are required")
	}
	if priceSet {
		opts.dataPath, opts.item = "", ""
	}

	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "unitcalc:", err)
		return 2
	}

	price := opts.price
	if opts.item != "" {
		price, err = itemPrice(opts.dataPath, opts.item)
		if err != nil {
			fmt.Fprintln(stderr, "unitcalc:", err)
			return 1
		}
	}

	breakdown, err := unitecon.NewEngine(opts.tariff).Evaluate(unitecon.PriceContext{AverageUnitPrice: price}, opts.params)
	if err != nil {
		fmt.Fprintln(stderr, "unitcalc:", err)
		return 1
	}

	fmt.Fprint(stdout, render(opts.item, price, breakdown))
	return 0
}

func itemPrice(dataPath, item string) (float64, error) {
	f, err := os.Open(dataPath)
	if err != nil {
		return 0, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := sales.ReadCSV(f)
	if err != nil {
		return 0, fmt.Errorf("read dataset %s: %w", dataPath, err)
	}

	repo := sales.NewMemoryRepository(records)
	ctx := context.Background()
	items, err := repo.Items(ctx)
	if err != nil {
		return 0, err
	}
	for _, candidate := range items {
		if candidate == item {
			return sales.AverageUnitPrice(ctx, repo, item)
		}
	}
	return 0, fmt.Errorf("item %q not found in %s", item, dataPath)
}

func money(value float64) string {
	return humanize.FormatFloat("#,###.##", value) + " ₽"
}

func render(item string, price float64, b unitecon.CostBreakdown) string {
	var sb strings.Builder

	title := "Unit economics"
	if item != "" {
		title += " for " + item
	}
	sb.WriteString(titleStyle.Render(title) + "\n\n")

	rows := []struct {
		label string
		value string
	}{
		{"Sale price", money(price)},
		{"Volume", fmt.Sprintf("%.3f l", b.VolumeLiters)},
		{"Price excluding VAT", money(b.PriceExcludingVAT)},
		{"Commission", money(b.CommissionFee)},
		{"Acquiring", money(b.AcquiringFee)},
		{"Delivery", money(b.DeliveryFee)},
		{"Storage", money(b.StorageFee)},
		{"Returns", money(b.ReturnLoss)},
		{"Total cost", money(b.TotalCost)},
	}
	for _, row := range rows {
		sb.WriteString(labelStyle.Render(row.label) + row.value + "\n")
	}

	margin := humanize.FormatFloat("#,###.#", b.Margin()*100) + "%"
	if b.Profitable() {
		sb.WriteString(profitStyle.Render(labelStyle.Render("Profit per unit")+money(b.Profit)+" ("+margin+")") + "\n")
	} else {
		sb.WriteString(lossStyle.Render(labelStyle.Render("Loss per unit")+money(b.Profit)+" ("+margin+")") + "\n")
	}
	return sb.String()
}
