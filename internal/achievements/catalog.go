package achievements

import (
	"context"
	"fmt"

	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

// Badge names referenced outside the catalog.
const (
	BadgeFirstQuestion = "First Question"
	BadgeFirstAnswer   = "First Answer"
	BadgeProblemSolver = "Problem Solver"
	BadgeHelpfulHelper = "Helpful Helper"
)

// Catalog is the fixed badge set. Adding a badge means adding an entry here.
func Catalog() []models.Badge {
	return []models.Badge{
		{Name: BadgeFirstQuestion, Description: "Asked your first question", Icon: "❓", Points: 10, Category: "participation", RuleKind: models.RuleQuestionCount, Threshold: 1},
		{Name: "Curious Mind", Description: "Asked 10 questions", Icon: "🧠", Points: 25, Category: "participation", RuleKind: models.RuleQuestionCount, Threshold: 10},
		{Name: BadgeFirstAnswer, Description: "Posted your first answer", Icon: "💡", Points: 10, Category: "answers", RuleKind: models.RuleAnswerCount, Threshold: 1},
		{Name: "Answer Machine", Description: "Posted 50 answers", Icon: "⚙️", Points: 50, Category: "answers", RuleKind: models.RuleAnswerCount, Threshold: 50},
		{Name: BadgeProblemSolver, Description: "Had 10 answers accepted", Icon: "✅", Points: 50, Category: "answers", RuleKind: models.RuleAcceptedAnswers, Threshold: 10},
		{Name: "Rising Star", Description: "Received 10 upvotes on your answers", Icon: "⭐", Points: 20, Category: "community", RuleKind: models.RuleUpvotesReceived, Threshold: 10},
		{Name: BadgeHelpfulHelper, Description: "Received 100 upvotes on your answers", Icon: "🤝", Points: 100, Category: "community", RuleKind: models.RuleUpvotesReceived, Threshold: 100},
		{Name: "Bookworm", Description: "Saved 10 questions", Icon: "📚", Points: 15, Category: "participation", RuleKind: models.RuleSavedQuestions, Threshold: 10},
		{Name: "Commentator", Description: "Left 25 comments", Icon: "💬", Points: 15, Category: "community", RuleKind: models.RuleCommentCount, Threshold: 25},
		{Name: "Supporter", Description: "Upvoted 10 posts", Icon: "👍", Points: 10, Category: "community", RuleKind: models.RulePositiveVotesCast, Threshold: 10},
		{Name: "Century", Description: "Reached 100 points", Icon: "💯", Points: 25, Category: "reputation", RuleKind: models.RulePointBalance, Threshold: 100},
		{Name: "Expert", Description: "Reached 1000 points", Icon: "🏆", Points: 100, Category: "reputation", RuleKind: models.RulePointBalance, Threshold: 1000},
	}
}

// SeedCatalog upserts every catalog badge. Safe to run on every start.
func SeedCatalog(ctx context.Context, repo repository.BadgeRepo) error {
	for _, b := range Catalog() {
		b := b
		if _, err := repo.UpsertBadge(ctx, &b); err != nil {
			return fmt.Errorf("seed badge %q: %w", b.Name, err)
		}
	}
	return nil
}
