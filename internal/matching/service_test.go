package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/matching"
)

func TestKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"VPA Swiggy@ICICI", "swiggy@icici"},
		{"  at  UBER *TRIP ", "uber *trip"},
		{"PAGAMENTO AÇÃO", "pagamento ação"},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, matching.Key(tt.raw))
		})
	}
}

func TestService_Suggest(t *testing.T) {
	type testCase struct {
		name      string
		account   string
		raw       string
		setupMock func(m *matching.MockRepository)
		want      string
		wantErr   bool
	}

	tests := []testCase{
		{
			name:    "Match on cleaned key",
			account: " hdfc:1234 ",
			raw:     " VPA swiggy@icici ",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindRule(gomock.Any(), "hdfc:1234", "swiggy@icici").
					Return(&matching.Rule{ID: 1, Pattern: "swiggy", Payee: "Swiggy"}, nil)
			},
			want: "Swiggy",
		},
		{
			name: "No match",
			raw:  "UNKNOWN SHOP",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindRule(gomock.Any(), "", "unknown shop").Return(nil, nil)
			},
			want: "",
		},
		{
			name: "Empty raw payee skips lookup",
			raw:  "  ",
			want: "",
		},
		{
			name: "Error",
			raw:  "SHOP",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindRule(gomock.Any(), "", "shop").Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := matching.NewService(repo).Suggest(context.Background(), tt.account, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Learn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().UpsertRule(gomock.Any(), matching.Rule{Pattern: "swiggy@icici", Payee: "Swiggy", Account: "hdfc:1234"}).
		DoAndReturn(func(_ context.Context, r matching.Rule) (*matching.Rule, error) {
			r.ID = 7
			return &r, nil
		})

	svc := matching.NewService(repo)

	rule, err := svc.Learn(context.Background(), matching.LearnParams{
		RawPayee: "VPA Swiggy@ICICI",
		Payee:    " Swiggy ",
		Account:  "hdfc:1234",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), rule.ID)

	_, err = svc.Learn(context.Background(), matching.LearnParams{RawPayee: "", Payee: "Swiggy"})
	assert.ErrorIs(t, err, matching.ErrInvalidRule)

	_, err = svc.Learn(context.Background(), matching.LearnParams{RawPayee: "swiggy", Payee: " "})
	assert.ErrorIs(t, err, matching.ErrInvalidRule)
}

func TestService_RulesAndForget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().ListRules(gomock.Any()).Return([]*matching.Rule{{ID: 1, Pattern: "uber", Payee: "Uber"}}, nil)
	repo.EXPECT().DeleteRule(gomock.Any(), int64(1)).Return(nil)
	repo.EXPECT().DeleteRule(gomock.Any(), int64(2)).Return(matching.ErrRuleNotFound)

	svc := matching.NewService(repo)

	rules, err := svc.Rules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Uber", rules[0].Payee)

	assert.NoError(t, svc.Forget(context.Background(), 1))
	assert.ErrorIs(t, svc.Forget(context.Background(), 2), matching.ErrRuleNotFound)
}
