package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/internal/service"
	"github.com/Skotchmaster/card_market/internal/testenv"
)

const userCreated = `{
	"type": "user.created",
	"data": {
		"id": "user_2xyz",
		"email_addresses": [{"id": "idn_1", "email_address": "trinity@example.com"}],
		"primary_email_address_id": "idn_1",
		"image_url": "https://img.example.com/t.png"
	}
}`

func newIdentity(t *testing.T, valid bool) (*service.IdentityService, *gorm.DB, *recordingPublisher) {
	t.Helper()
	db := testenv.NewDB(t)
	pub := &recordingPublisher{}
	return &service.IdentityService{
		Repo:     repo.New(db),
		Verifier: fakeVerifier{valid: valid},
		Events:   pub,
	}, db, pub
}

func userCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestIdentityWebhookProvisionsUser(t *testing.T) {
	t.Parallel()
	svc, db, pub := newIdentity(t, true)
	ctx := context.Background()

	require.NoError(t, svc.HandleWebhook(ctx, []byte(userCreated), http.Header{}))

	u, err := repo.New(db).GetUserByExternalID(ctx, "user_2xyz")
	require.NoError(t, err)
	assert.Equal(t, "trinity@example.com", u.Email)
	require.NotNil(t, u.ImageURL)
	assert.Equal(t, "https://img.example.com/t.png", *u.ImageURL)
	assert.Equal(t, []string{"user_provisioned"}, pub.types())
}

func TestIdentityWebhookDuplicateDeliveryIsSuccess(t *testing.T) {
	t.Parallel()
	svc, db, pub := newIdentity(t, true)
	ctx := context.Background()

	require.NoError(t, svc.HandleWebhook(ctx, []byte(userCreated), http.Header{}))
	require.NoError(t, svc.HandleWebhook(ctx, []byte(userCreated), http.Header{}))

	assert.EqualValues(t, 1, userCount(t, db))
	assert.Len(t, pub.types(), 1)
}

func TestIdentityWebhookTamperedSignature(t *testing.T) {
	t.Parallel()
	svc, db, _ := newIdentity(t, false)

	err := svc.HandleWebhook(context.Background(), []byte(userCreated), http.Header{})
	require.ErrorIs(t, err, service.ErrInvalidSignature)
	assert.Zero(t, userCount(t, db))
}

func TestIdentityWebhookEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{name: "other event type", payload: `{"type":"session.created","data":{"id":"sess_1"}}`, want: nil},
		{name: "no email", payload: `{"type":"user.created","data":{"id":"user_1","email_addresses":[]}}`, want: service.ErrMissingEmail},
		{name: "no user id", payload: `{"type":"user.created","data":{"email_addresses":[{"id":"a","email_address":"x@example.com"}]}}`, want: service.ErrValidation},
		{name: "malformed", payload: `{"type":`, want: service.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, db, _ := newIdentity(t, true)
			err := svc.HandleWebhook(context.Background(), []byte(tt.payload), http.Header{})
			if tt.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.want)
			}
			assert.Zero(t, userCount(t, db))
		})
	}
}

func TestProvisionUserWithoutImage(t *testing.T) {
	t.Parallel()
	svc, db, _ := newIdentity(t, true)

	created, err := svc.ProvisionUser(context.Background(), service.NewUser{ExternalID: "user_9", Email: "morpheus@example.com"})
	require.NoError(t, err)
	assert.True(t, created)

	u, err := repo.New(db).GetUserByExternalID(context.Background(), "user_9")
	require.NoError(t, err)
	assert.Nil(t, u.ImageURL)
}

func TestProvisionUserEmailHeldByAnotherUser(t *testing.T) {
	t.Parallel()
	svc, db, pub := newIdentity(t, true)
	ctx := context.Background()

	created, err := svc.ProvisionUser(ctx, service.NewUser{ExternalID: "user_1", Email: "neo@example.com"})
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.ProvisionUser(ctx, service.NewUser{ExternalID: "user_2", Email: "neo@example.com"})
	require.ErrorIs(t, err, service.ErrEmailConflict)
	assert.False(t, created)

	_, err = repo.New(db).GetUserByExternalID(ctx, "user_2")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.EqualValues(t, 1, userCount(t, db))
	assert.Equal(t, []string{"user_provisioned"}, pub.types())
}
