package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms-access/internal/models"
)

func TestStorage_Users(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	uid, err := storage.RegisterUser(ctx, models.User{
		Email:              "student@example.com",
		FullName:           "Test Student",
		PasswordHash:       "hashedpassword",
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionNone,
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	t.Run("get by uid and email", func(t *testing.T) {
		byUID, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, "student@example.com", byUID.Email)
		assert.Equal(t, models.SubscriptionNone, byUID.SubscriptionStatus)
		assert.Nil(t, byUID.SubscriptionID)

		byEmail, err := storage.GetUserByEmail(ctx, "student@example.com")
		require.NoError(t, err)
		assert.Equal(t, uid, byEmail.UID)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := storage.RegisterUser(ctx, models.User{
			Email:              "student@example.com",
			FullName:           "Another Student",
			PasswordHash:       "hashedpassword",
			Role:               models.RoleUser,
			SubscriptionStatus: models.SubscriptionNone,
		})
		require.Error(t, err)
	})

	t.Run("update subscription sets and clears external id", func(t *testing.T) {
		subID := "sub_integration"
		err := storage.UpdateSubscription(ctx, uid, &subID, models.SubscriptionPending)
		require.NoError(t, err)

		u, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		require.NotNil(t, u.SubscriptionID)
		assert.Equal(t, subID, *u.SubscriptionID)
		assert.Equal(t, models.SubscriptionPending, u.SubscriptionStatus)

		err = storage.UpdateSubscription(ctx, uid, nil, models.SubscriptionCancelled)
		require.NoError(t, err)

		u, err = storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Nil(t, u.SubscriptionID)
		assert.Equal(t, models.SubscriptionCancelled, u.SubscriptionStatus)
	})

	t.Run("update subscription for missing user", func(t *testing.T) {
		err := storage.UpdateSubscription(ctx, "00000000-0000-0000-0000-000000000000", nil, models.SubscriptionCancelled)
		require.Error(t, err)
	})

	t.Run("reset token roundtrip", func(t *testing.T) {
		expiry := time.Now().Add(15 * time.Minute).UTC()
		err := storage.SetResetToken(ctx, uid, "tokenhash", expiry)
		require.NoError(t, err)

		u, err := storage.GetUserByResetToken(ctx, "tokenhash")
		require.NoError(t, err)
		assert.Equal(t, uid, u.UID)
		require.NotNil(t, u.ResetTokenExpiry)
		assert.WithinDuration(t, expiry, *u.ResetTokenExpiry, time.Second)

		err = storage.UpdatePassword(ctx, uid, "newhash")
		require.NoError(t, err)

		_, err = storage.GetUserByResetToken(ctx, "tokenhash")
		require.Error(t, err)
	})
}

func TestStorage_Payments(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		id, err := storage.SavePayment(ctx, models.Payment{
			PaymentID:      "pay_1",
			SubscriptionID: "sub_1",
			Signature:      "sig_1",
		})
		require.NoError(t, err)
		assert.Positive(t, id)

		p, found, err := storage.GetPaymentBySubscriptionID(ctx, "sub_1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "pay_1", p.PaymentID)
		assert.WithinDuration(t, time.Now(), p.CreatedAt, time.Minute)
	})

	t.Run("missing entry reported via found flag", func(t *testing.T) {
		p, found, err := storage.GetPaymentBySubscriptionID(ctx, "sub_missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, p)
	})

	t.Run("duplicate subscription id rejected", func(t *testing.T) {
		_, err := storage.SavePayment(ctx, models.Payment{
			PaymentID:      "pay_2",
			SubscriptionID: "sub_1",
			Signature:      "sig_2",
		})
		require.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		err := storage.DeletePayment(ctx, "sub_1")
		require.NoError(t, err)

		_, found, err := storage.GetPaymentBySubscriptionID(ctx, "sub_1")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestStorage_Courses(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	courseID := factory.CreateCourse(t, "Go Basics", "programming")
	factory.CreateLecture(t, courseID, "Introduction", 1)
	factory.CreateLecture(t, courseID, "Types", 2)

	t.Run("list courses", func(t *testing.T) {
		courses, err := storage.ListCourses(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "Go Basics", courses[0].Title)
	})

	t.Run("list lectures ordered by position", func(t *testing.T) {
		lectures, err := storage.ListLectures(ctx, courseID)
		require.NoError(t, err)
		require.Len(t, lectures, 2)
		assert.Equal(t, "Introduction", lectures[0].Title)
		assert.Equal(t, "Types", lectures[1].Title)
	})

	t.Run("remove course cascades", func(t *testing.T) {
		count, err := storage.RemoveCourse(ctx, courseID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		lectures, err := storage.ListLectures(ctx, courseID)
		require.NoError(t, err)
		assert.Empty(t, lectures)
	})
}
