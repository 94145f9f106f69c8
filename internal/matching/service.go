package matching

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/MrJamesThe3rd/tally/internal/normalize"
)

var (
	ErrInvalidRule  = errors.New("raw payee and payee are required")
	ErrRuleNotFound = errors.New("payee rule not found")
)

// Rule renames transactions whose payee key contains Pattern. A rule with an Account
// only applies to that account and wins over unscoped rules.
type Rule struct {
	ID        int64
	Pattern   string
	Payee     string
	Account   string
	CreatedAt time.Time
}

type LearnParams struct {
	RawPayee string
	Payee    string
	// Account scopes the rule. Empty means every account.
	Account string
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindRule returns the best rule for key, or nil when none applies.
	FindRule(ctx context.Context, account, key string) (*Rule, error)
	UpsertRule(ctx context.Context, rule Rule) (*Rule, error)
	ListRules(ctx context.Context) ([]*Rule, error)
	DeleteRule(ctx context.Context, id int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Key reduces a raw payee to the text rules are matched against: the cleaned payee with
// case folded, so "VPA Shop@UPI" and "shop@upi" share a key.
func Key(rawPayee string) string {
	if strings.TrimSpace(rawPayee) == "" {
		return ""
	}

	return cases.Fold().String(normalize.CleanPayee(rawPayee))
}

// Suggest returns the learned payee for a raw payee seen on account, or "" when no rule
// matches.
func (s *Service) Suggest(ctx context.Context, account, rawPayee string) (string, error) {
	key := Key(rawPayee)
	if key == "" {
		return "", nil
	}

	rule, err := s.repo.FindRule(ctx, strings.TrimSpace(account), key)
	if err != nil || rule == nil {
		return "", err
	}

	return rule.Payee, nil
}

// Learn remembers that payees like p.RawPayee belong to p.Payee. Learning the same raw
// payee again for the same scope replaces the earlier rule.
func (s *Service) Learn(ctx context.Context, p LearnParams) (*Rule, error) {
	pattern := Key(p.RawPayee)
	payee := strings.TrimSpace(p.Payee)

	if pattern == "" || payee == "" {
		return nil, ErrInvalidRule
	}

	return s.repo.UpsertRule(ctx, Rule{
		Pattern: pattern,
		Payee:   payee,
		Account: strings.TrimSpace(p.Account),
	})
}

func (s *Service) Rules(ctx context.Context) ([]*Rule, error) {
	return s.repo.ListRules(ctx)
}

func (s *Service) Forget(ctx context.Context, id int64) error {
	return s.repo.DeleteRule(ctx, id)
}
