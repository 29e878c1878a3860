package main

import (
	"fmt"

	"github.com/spf13/viper"
)

type civBand struct {
	freqFrom uint
	freqTo   uint
	label    string
}

// US amateur allocations, hertz. The tx verb refuses to key up outside these
// unless --force-tx. A band plan file replaces the whole table.
var civBands = []civBand{
	{freqFrom: 1800000, freqTo: 2000000, label: "160m"},
	{freqFrom: 3500000, freqTo: 4000000, label: "80m"},
	{freqFrom: 7000000, freqTo: 7300000, label: "40m"},
	{freqFrom: 10100000, freqTo: 10150000, label: "30m"},
	{freqFrom: 14000000, freqTo: 14350000, label: "20m"},
	{freqFrom: 18068000, freqTo: 18168000, label: "17m"},
	{freqFrom: 21000000, freqTo: 21450000, label: "15m"},
	{freqFrom: 24890000, freqTo: 24990000, label: "12m"},
	{freqFrom: 28000000, freqTo: 29700000, label: "10m"},
	{freqFrom: 50000000, freqTo: 54000000, label: "6m"},
	{freqFrom: 144000000, freqTo: 148000000, label: "2m"},
	{freqFrom: 420000000, freqTo: 450000000, label: "70cm"},
}

type bandPlanEntry struct {
	From  uint   `mapstructure:"from"`
	To    uint   `mapstructure:"to"`
	Label string `mapstructure:"label"`
}

// loadBandPlan replaces the built-in table from a YAML file:
//
//	bands:
//	  - from: 144000000
//	    to: 148000000
//	    label: 2m
func loadBandPlan(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("band plan %v: %w", path, err)
	}
	var entries []bandPlanEntry
	if err := v.UnmarshalKey("bands", &entries); err != nil {
		return fmt.Errorf("band plan %v: %w", path, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("band plan %v: no bands defined", path)
	}
	bands := make([]civBand, 0, len(entries))
	for _, e := range entries {
		if e.From >= e.To {
			return fmt.Errorf("band plan %v: empty range %d-%d (%v)", path, e.From, e.To, e.Label)
		}
		bands = append(bands, civBand{freqFrom: e.From, freqTo: e.To, label: e.Label})
	}
	civBands = bands
	return nil
}

// bandLabel returns the label of the band containing freq, or "" when the
// frequency falls outside the plan.
func bandLabel(freq uint) string {
	for i := range civBands {
		if freq >= civBands[i].freqFrom && freq <= civBands[i].freqTo {
			return civBands[i].label
		}
	}
	return ""
}

func txAllowed(freq uint) bool {
	for i := range civBands {
		if freq >= civBands[i].freqFrom && freq <= civBands[i].freqTo {
			return true
		}
	}
	return false
}
