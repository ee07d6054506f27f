package memory

import (
	"context"
	"strings"

	"github.com/agentflow/memoryengine/memory/tokenize"
	"github.com/agentflow/memoryengine/types"
)

// PolicyDecision is the store/don't-store verdict for one conversation
// turn, carrying enough shape to become a MemoryEvent.
type PolicyDecision struct {
	Store   bool
	Type    types.MemoryType
	Summary string
	Tags    []string
	Reasons []string
}

// ToEvent converts an accepted decision into a MemoryEvent for owner, or
// nil if the decision declined to store.
func (d PolicyDecision) ToEvent(owner string) *types.MemoryEvent {
	if !d.Store || d.Summary == "" {
		return nil
	}
	return &types.MemoryEvent{
		Content: d.Summary,
		Type:    d.Type,
		Owner:   owner,
		Tags:    d.Tags,
	}
}

// ConversationPolicy decides, given conversational context, whether and
// how a turn should be persisted to memory.
type ConversationPolicy interface {
	Decide(ctx context.Context, owner string, history []types.ConversationTurn, userMsg, assistantMsg string) (PolicyDecision, error)
}

// HeuristicConversationPolicy is a reference, rule-based policy: it never
// calls an LLM, deciding purely from token counts and keyword/novelty
// heuristics over recent history.
type HeuristicConversationPolicy struct {
	MinTokens            int
	NoveltyThreshold     float64
	ShortTurnMinNovelty  float64
	PreferenceKeywords   map[string]struct{}
}

// NewHeuristicConversationPolicy returns the default heuristic policy.
func NewHeuristicConversationPolicy() HeuristicConversationPolicy {
	keywords := map[string]struct{}{}
	for _, k := range []string{"prefer", "always", "never", "likes", "dislikes"} {
		keywords[k] = struct{}{}
	}
	return HeuristicConversationPolicy{
		MinTokens:           24,
		NoveltyThreshold:    0.65,
		ShortTurnMinNovelty: 0.8,
		PreferenceKeywords:  keywords,
	}
}

func (p HeuristicConversationPolicy) Decide(_ context.Context, _ string, history []types.ConversationTurn, userMsg, assistantMsg string) (PolicyDecision, error) {
	combined := userMsg + " " + assistantMsg
	toks := tokenize.Tokens(combined)
	var reasons []string
	memType := types.MemoryEpisodic

	isPreference := false
	lower := strings.ToLower(combined)
	for kw := range p.PreferenceKeywords {
		if strings.Contains(lower, kw) {
			isPreference = true
			break
		}
	}

	if len(toks) < p.MinTokens {
		reasons = append(reasons, "short_turn")
	}
	if isPreference {
		memType = types.MemorySemantic
		reasons = append(reasons, "preference_signal")
	}

	if len(history) > 0 {
		recent := history
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		var recentText strings.Builder
		for _, turn := range recent {
			recentText.WriteString(turn.Role)
			recentText.WriteString(": ")
			recentText.WriteString(turn.Text)
			recentText.WriteString(" ")
		}
		novelty := 1.0 - overlapRatio(toks, tokenize.Tokens(recentText.String()))
		floor := p.NoveltyThreshold
		if len(toks) < p.MinTokens {
			floor = p.ShortTurnMinNovelty
		}
		if novelty < floor {
			reasons = append(reasons, "low_novelty")
		}
	}

	store := isPreference
	if !isPreference {
		store = !containsReason(reasons, "short_turn") && !containsReason(reasons, "low_novelty")
	}

	summary := summarize(userMsg, assistantMsg, memType)
	tags := []string{"conversation", string(memType)}

	return PolicyDecision{
		Store:   store,
		Type:    memType,
		Summary: summary,
		Tags:    tags,
		Reasons: reasons,
	}, nil
}

func overlapRatio(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := toSet(a)
	setB := toSet(b)
	union := make(map[string]struct{}, len(setA)+len(setB))
	for k := range setA {
		union[k] = struct{}{}
	}
	for k := range setB {
		union[k] = struct{}{}
	}
	var overlap int
	for k := range setA {
		if _, ok := setB[k]; ok {
			overlap++
		}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(overlap) / float64(len(union))
}

func toSet(toks []string) map[string]struct{} {
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

func containsReason(reasons []string, target string) bool {
	for _, r := range reasons {
		if r == target {
			return true
		}
	}
	return false
}

func summarize(userMsg, assistantMsg string, memType types.MemoryType) string {
	if memType == types.MemorySemantic {
		return "User preference: " + strings.TrimSpace(userMsg)
	}
	return "User asked: " + strings.TrimSpace(userMsg) + " | Assistant replied: " + strings.TrimSpace(assistantMsg)
}
