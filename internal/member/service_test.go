package member_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/famvest/internal/member"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    member.CreateParams
		setupMock func(m *member.MockRepository)
		wantErr   error
	}

	existing := []*member.Member{{ID: "self", Username: "self", Name: "Self"}}

	tests := []testCase{
		{
			name:   "Success",
			params: member.CreateParams{Username: "  Asha ", Name: "Asha", Avatar: "👧"},
			setupMock: func(m *member.MockRepository) {
				m.EXPECT().ListMembers(gomock.Any()).Return(existing, nil)
				m.EXPECT().UpsertMember(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:    "BlankUsername",
			params:  member.CreateParams{Username: " ", Name: "Asha"},
			wantErr: member.ErrInvalidMember,
		},
		{
			name:    "UsernameWithSpaces",
			params:  member.CreateParams{Username: "asha k", Name: "Asha"},
			wantErr: member.ErrInvalidMember,
		},
		{
			name:    "MissingName",
			params:  member.CreateParams{Username: "asha"},
			wantErr: member.ErrInvalidMember,
		},
		{
			name:   "DuplicateUsername",
			params: member.CreateParams{Username: "SELF", Name: "Me again"},
			setupMock: func(m *member.MockRepository) {
				m.EXPECT().ListMembers(gomock.Any()).Return(existing, nil)
			},
			wantErr: member.ErrUsernameTaken,
		},
		{
			name:   "RepoError",
			params: member.CreateParams{Username: "asha", Name: "Asha"},
			setupMock: func(m *member.MockRepository) {
				m.EXPECT().ListMembers(gomock.Any()).Return(nil, nil)
				m.EXPECT().UpsertMember(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := member.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := member.NewService(repo).Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, member.ErrInvalidMember) || errors.Is(tt.wantErr, member.ErrUsernameTaken) {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "asha", got.ID)
			assert.Equal(t, "asha", got.Username)
			assert.False(t, got.CreatedAt.IsZero())
		})
	}
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := member.NewMockRepository(ctrl)
	repo.EXPECT().GetMember(gomock.Any(), "self").Return(&member.Member{ID: "self", Username: "self", Name: "Self"}, nil)
	repo.EXPECT().UpsertMember(gomock.Any(), gomock.Any()).Return(nil)

	got, err := member.NewService(repo).Update(context.Background(), "self", member.UpdateParams{
		Name:  new("Ravi"),
		Email: new(" ravi@example.com "),
	})
	require.NoError(t, err)

	assert.Equal(t, "Ravi", got.Name)
	assert.Equal(t, "ravi@example.com", got.Email)
	assert.Equal(t, "self", got.Username, "username is immutable")
}

func TestService_UpdateNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := member.NewMockRepository(ctrl)
	repo.EXPECT().GetMember(gomock.Any(), "ghost").Return(nil, member.ErrNotFound)

	_, err := member.NewService(repo).Update(context.Background(), "ghost", member.UpdateParams{})
	assert.ErrorIs(t, err, member.ErrNotFound)
}

func TestService_EnsureDefaults(t *testing.T) {
	t.Run("SeedsEmptyHousehold", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var seeded []string

		repo := member.NewMockRepository(ctrl)
		repo.EXPECT().ListMembers(gomock.Any()).Return(nil, nil)
		repo.EXPECT().
			UpsertMember(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m *member.Member) error {
				seeded = append(seeded, m.ID)
				return nil
			}).
			Times(2)

		n, err := member.NewService(repo).EnsureDefaults(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"self", "spouse"}, seeded)
	})

	t.Run("LeavesExistingHouseholdAlone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := member.NewMockRepository(ctrl)
		repo.EXPECT().ListMembers(gomock.Any()).Return([]*member.Member{{ID: "asha"}}, nil)

		n, err := member.NewService(repo).EnsureDefaults(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
