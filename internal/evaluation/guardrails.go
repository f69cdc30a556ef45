package evaluation

import "fmt"

// GuardrailConfig sets the minimum quality bars an evaluation run must
// clear. Zero values disable the corresponding gate.
type GuardrailConfig struct {
	MinTop1Accuracy float64
	MinNeedRecall   float64
	MinMRR          float64
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	return &Guardrails{config: config}
}

// Violations lists every quality bar the summary fails to clear. An empty
// slice means the run passes.
func (g *Guardrails) Violations(summary *EvalSummary) []string {
	var violations []string

	if g.config.MinTop1Accuracy > 0 && summary.Top1Accuracy < g.config.MinTop1Accuracy {
		violations = append(violations, fmt.Sprintf(
			"top-1 accuracy %.3f below minimum %.3f", summary.Top1Accuracy, g.config.MinTop1Accuracy))
	}
	if g.config.MinNeedRecall > 0 && summary.NeedRecallMicro() < g.config.MinNeedRecall {
		violations = append(violations, fmt.Sprintf(
			"need recall %.3f below minimum %.3f", summary.NeedRecallMicro(), g.config.MinNeedRecall))
	}
	if g.config.MinMRR > 0 && summary.MRR < g.config.MinMRR {
		violations = append(violations, fmt.Sprintf(
			"MRR %.3f below minimum %.3f", summary.MRR, g.config.MinMRR))
	}

	return violations
}
