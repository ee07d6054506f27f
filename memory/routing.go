package memory

import "github.com/agentflow/memoryengine/types"

// RoutingDecision is the result of RoutingPolicy.Route: which back-ends an
// item's write should fan out to, plus the reasons for the flags that came
// back false. A false WriteFeatures adds a reason only for perceptual items.
type RoutingDecision struct {
	WriteHot      bool
	WriteVector   bool
	WriteFeatures bool
	ArchiveCold   bool
	Reasons       []string
}

// RoutingPolicy is a pure, stateless function over a MemoryItem's
// confidence and type. Semantic graph extraction is deliberately not one
// of its flags: every write passes through the graph indexer regardless of
// the routing decision, and the indexer filters internally.
type RoutingPolicy struct {
	HotMinConfidence     float64
	VectorMinConfidence  float64
	FeatureMinConfidence float64
	ColdMinConfidence    float64
}

// NewRoutingPolicy returns a policy using the defaults from the external
// interfaces table.
func NewRoutingPolicy() RoutingPolicy {
	return RoutingPolicy{
		HotMinConfidence:     0.40,
		VectorMinConfidence:  0.50,
		FeatureMinConfidence: 0.45,
		ColdMinConfidence:    0.55,
	}
}

// Route computes the routing decision for item.
func (p RoutingPolicy) Route(item *types.MemoryItem) RoutingDecision {
	var reasons []string

	writeHot := item.Confidence >= p.HotMinConfidence
	if !writeHot {
		reasons = append(reasons, "low_confidence_hot")
	}

	writeVector := item.Confidence >= p.VectorMinConfidence && item.Type != types.MemoryWorking
	if !writeVector {
		reasons = append(reasons, "skip_vector")
	}

	writeFeatures := item.Type == types.MemoryPerceptual && item.Confidence >= p.FeatureMinConfidence
	if !writeFeatures && item.Type == types.MemoryPerceptual {
		reasons = append(reasons, "skip_features")
	}

	archiveCold := isArchivableType(item.Type) && item.Confidence >= p.ColdMinConfidence
	if !archiveCold {
		reasons = append(reasons, "skip_cold")
	}

	return RoutingDecision{
		WriteHot:      writeHot,
		WriteVector:   writeVector,
		WriteFeatures: writeFeatures,
		ArchiveCold:   archiveCold,
		Reasons:       reasons,
	}
}

func isArchivableType(t types.MemoryType) bool {
	return t == types.MemoryEpisodic || t == types.MemorySemantic || t == types.MemoryPerceptual
}
