package usecase

import (
	"context"
	"log/slog"
	"testing"

	"mail-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEmail(t *testing.T) {
	repo := &mockEmailRepo{byID: map[string]*domain.Email{
		"mine":   {ID: "mine", Recipient: "Alice@example.com", Subject: "Hello"},
		"theirs": {ID: "theirs", Recipient: "bob@example.com"},
	}}
	uc := NewGetEmail(repo, slog.Default())

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "own email", id: "mine"},
		{name: "other recipient", id: "theirs", wantErr: domain.ErrEmailForbidden},
		{name: "missing", id: "nope", wantErr: domain.ErrEmailNotFound},
		{name: "blank id", id: " ", wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Execute(context.Background(), alice, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
		})
	}
}
