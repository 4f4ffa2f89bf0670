package services

import (
	"strconv"

	"github.com/ViBaTo/panel-control-tm/models"
)

const (
	// RevenuePerProcessedCall is the assumed average revenue of one appointment.
	RevenuePerProcessedCall = 150
	// baselineLostCalls is subtracted before counting calls as lost.
	baselineLostCalls = 10
	// CustomerSatisfaction is a fixed figure until surveys exist.
	CustomerSatisfaction = 94.2
)

// ComputeAgentMetrics derives the dashboard aggregate from the full call set.
func ComputeAgentMetrics(calls []models.AppointmentCall) models.AgentMetrics {
	total := len(calls)
	processed := 0
	for _, c := range calls {
		if c.Procesado {
			processed++
		}
	}

	rate := "0"
	if total > 0 {
		rate = strconv.FormatFloat(float64(processed)/float64(total)*100, 'f', 1, 64)
	}

	lost := total - processed - baselineLostCalls
	if lost < 0 {
		lost = 0
	}

	return models.AgentMetrics{
		LlamadasTotales:     total,
		CitasProcesadas:     processed,
		TasaConversion:      rate,
		LlamadasPerdidas:    lost,
		IngresoEstimado:     processed * RevenuePerProcessedCall,
		SatisfaccionCliente: CustomerSatisfaction,
	}
}
