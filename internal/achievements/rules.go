package achievements

import "github.com/MayankGitHub86/solvehub-sub000/internal/models"

// Rule is a threshold over one statistic. Kind is a closed set; an unknown
// kind is never satisfied.
type Rule struct {
	Kind      models.RuleKind
	Threshold int64
}

func RuleOf(b models.Badge) Rule {
	return Rule{Kind: b.RuleKind, Threshold: b.Threshold}
}

// Current reads the statistic the rule is measured against.
func (r Rule) Current(s models.UserStatistics) int64 {
	switch r.Kind {
	case models.RuleQuestionCount:
		return s.QuestionCount
	case models.RuleAnswerCount:
		return s.AnswerCount
	case models.RuleAcceptedAnswers:
		return s.AcceptedAnswerCount
	case models.RuleUpvotesReceived:
		return s.UpvotesReceived
	case models.RuleSavedQuestions:
		return s.SavedCount
	case models.RuleCommentCount:
		return s.CommentCount
	case models.RulePositiveVotesCast:
		return s.PositiveVotesCast
	case models.RulePointBalance:
		return s.PointBalance
	}
	return 0
}

func (r Rule) Known() bool {
	switch r.Kind {
	case models.RuleQuestionCount, models.RuleAnswerCount, models.RuleAcceptedAnswers,
		models.RuleUpvotesReceived, models.RuleSavedQuestions, models.RuleCommentCount,
		models.RulePositiveVotesCast, models.RulePointBalance:
		return true
	}
	return false
}

func (r Rule) Satisfied(s models.UserStatistics) bool {
	return r.Known() && r.Threshold > 0 && r.Current(s) >= r.Threshold
}

// Percent is current/threshold as a whole percentage capped at 100.
func (r Rule) Percent(s models.UserStatistics) int {
	if r.Threshold <= 0 {
		return 0
	}
	cur := r.Current(s)
	if cur <= 0 {
		return 0
	}
	if cur >= r.Threshold {
		return 100
	}
	return int(cur * 100 / r.Threshold)
}
