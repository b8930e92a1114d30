package ops

import "context"

// HealthOutput reports server identity and dependency readiness.
type HealthOutput struct {
	Status          string `json:"status"`
	RevelaAvailable bool   `json:"revela_available"`
	SuiRPCURL       string `json:"sui_rpc_url"`
	Server          string `json:"server"`
	Version         string `json:"version"`
}

// HealthCheck probes the decompiler binary and reports the configured
// RPC endpoint. A missing decompiler makes the status unhealthy but is
// not an error: the server can still answer health and catalog queries.
func HealthCheck(ctx context.Context, env *Env) *HealthOutput {
	available := env.Prober.Available(ctx) == nil

	status := "healthy"
	if !available {
		status = "unhealthy"
	}

	return &HealthOutput{
		Status:          status,
		RevelaAvailable: available,
		SuiRPCURL:       env.Cfg.RPCURL,
		Server:          ServerName,
		Version:         ServerVersion,
	}
}
