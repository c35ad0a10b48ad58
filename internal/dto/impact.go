package dto

import "quadledger/internal/models"

// ImpactEntryRequest creates or replaces the impact entry of an invoice.
// Omitted fields fall back to their defaults; the attach is a full replace.
type ImpactEntryRequest struct {
	InvoiceID     string   `json:"invoice_id"`
	WaterUsage    *float64 `json:"water_usage"`
	CO2Emissions  *float64 `json:"co2_emissions"`
	LaborScore    *int     `json:"labor_score"`
	RecyclingRate *float64 `json:"recycling_rate"`
}

type ImpactEntryResponse struct {
	Message     string             `json:"message"`
	ImpactEntry models.ImpactEntry `json:"impact_entry"`
}

type ImpactEntryView struct {
	models.ImpactEntry
	Supplier string  `json:"supplier"`
	Amount   float64 `json:"amount"`
}

type ImpactEntriesResponse struct {
	ImpactEntries []ImpactEntryView `json:"impact_entries"`
}
