package dto

import "quadledger/internal/models"

type DashboardSummary struct {
	TotalInvoices        int     `json:"total_invoices"`
	TotalAmount          float64 `json:"total_amount"`
	VerifiedTransactions int     `json:"verified_transactions"`
	ImpactEntries        int     `json:"impact_entries"`
	TotalCO2Emissions    float64 `json:"total_co2_emissions"`
	AvgLaborScore        float64 `json:"avg_labor_score"`
}

type DashboardSummaryResponse struct {
	Summary        DashboardSummary       `json:"summary"`
	RecentInvoices []models.InvoiceRecord `json:"recent_invoices"`
}
