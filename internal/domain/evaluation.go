package domain

import "time"

const (
	ScoreMin = 0
	ScoreMax = 2
)

type Recommendation string

const (
	RecommendationApproved Recommendation = "approved"
	RecommendationDenied   Recommendation = "denied"
)

// ScoreSet holds the six evaluation sub-scores, each on the 0-2 scale.
type ScoreSet struct {
	QualityOriginality        int32 `json:"score_quality_originality"`
	MethodologyDesign         int32 `json:"score_methodology_design"`
	ExpectedContributions     int32 `json:"score_expected_contributions"`
	KnowledgeAdvancement      int32 `json:"score_knowledge_advancement"`
	SocialEconomicImpact      int32 `json:"score_social_economic_impact"`
	ExploitationDissemination int32 `json:"score_exploitation_dissemination"`
}

func (s ScoreSet) Values() [6]int32 {
	return [6]int32{
		s.QualityOriginality,
		s.MethodologyDesign,
		s.ExpectedContributions,
		s.KnowledgeAdvancement,
		s.SocialEconomicImpact,
		s.ExploitationDissemination,
	}
}

// Sum is the record's total score (max 12).
func (s ScoreSet) Sum() int32 {
	var total int32
	for _, v := range s.Values() {
		total += v
	}
	return total
}

func (s ScoreSet) InRange() bool {
	for _, v := range s.Values() {
		if v < ScoreMin || v > ScoreMax {
			return false
		}
	}
	return true
}

// Evaluation is one evaluator's scorecard for an application. One row per
// (application, evaluator); scores are write-once, stamped by CompletedAt.
type Evaluation struct {
	ID             int32          `json:"id"`
	ApplicationID  int32          `json:"application_id"`
	EvaluatorID    int32          `json:"evaluator_id"`
	Scores         ScoreSet       `json:"scores"`
	Recommendation Recommendation `json:"recommendation,omitempty"`
	TotalScore     int32          `json:"total_score"`
	Comments       string         `json:"comments"`
	AssignedAt     time.Time      `json:"assigned_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	UpdatedOn      time.Time      `json:"updated_on"`
}

func (e *Evaluation) IsComplete() bool {
	return e.CompletedAt != nil
}
