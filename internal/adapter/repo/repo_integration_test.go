package repo

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/notify"
	"server/migrations"
)

// testPool connects to the database named by TEST_DATABASE_URL and applies
// the migrations, skipping the test when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, infra.Migrate(context.Background(), pool, migrations.FS))
	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, city, area string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@test.local",
		PasswordHash: "x",
		Name:         "Test User",
		Location:     domain.Location{Country: "bd", City: city, Area: area},
		Role:         domain.UserRoleUser,
	}
	require.NoError(t, NewUserRepository(pool).Create(context.Background(), u))
	return u
}

func createTestDonation(t *testing.T, pool *pgxpool.Pool, ownerID string) *domain.DonationPost {
	t.Helper()
	p := &domain.DonationPost{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       "Tabby cat",
		Species:     "cat",
		Location:    domain.Location{Country: "bd", City: "dhaka", Area: "mirpur"},
		IsAvailable: true,
	}
	require.NoError(t, NewDonationRepository(pool).Create(context.Background(), p))
	return p
}

func TestUpvoteIsUniqueAndCounted(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	donations := NewDonationRepository(pool)

	owner := createTestUser(t, pool, "dhaka", "mirpur")
	voter := createTestUser(t, pool, "dhaka", "mirpur")
	post := createTestDonation(t, pool, owner.ID)

	require.NoError(t, donations.Upvote(ctx, post.ID, voter.ID))
	require.ErrorIs(t, donations.Upvote(ctx, post.ID, voter.ID), domain.ErrAlreadyUpvoted)

	got, err := donations.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.UpvotesCount)

	count, err := donations.CountUpvotes(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, donations.RemoveUpvote(ctx, post.ID, voter.ID))
	require.ErrorIs(t, donations.RemoveUpvote(ctx, post.ID, voter.ID), domain.ErrNotUpvoted)

	got, err = donations.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.UpvotesCount)
}

func TestListIDsByAreaMatchesNormalized(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)

	// Unique city per run so leftover rows from earlier runs cannot match.
	token := uuid.NewString()
	owner := createTestUser(t, pool, "Austin-"+token, "Downtown")
	neighbor := createTestUser(t, pool, "  AUSTIN-"+strings.ToUpper(token)+"  ", "downtown")
	uptown := createTestUser(t, pool, "austin-"+token, "Uptown")

	ids, err := users.ListIDsByArea(ctx, " Austin-"+token+" ", "DOWNTOWN", owner.ID)
	require.NoError(t, err)
	require.Equal(t, []string{neighbor.ID}, ids)

	// The same matching drives notification fan-out end to end: the
	// neighbor gets exactly one row, the author and the other area none.
	notifications := NewNotificationRepository(pool)
	n := notify.New(users, notifications)
	post := &domain.DonationPost{
		ID:      uuid.NewString(),
		OwnerID: owner.ID,
		Title:   "Tabby cat",
		Location: domain.Location{
			Country: "us",
			City:    "Austin-" + token,
			Area:    "Downtown",
		},
	}
	require.NoError(t, n.DonationPostCreated(ctx, post))

	rows, err := notifications.ListByRecipient(ctx, neighbor.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, domain.NotificationNewPostInArea, rows[0].Type)
	require.NotNil(t, rows[0].PostID)
	require.Equal(t, post.ID, *rows[0].PostID)

	for _, id := range []string{owner.ID, uptown.ID} {
		rows, err := notifications.ListByRecipient(ctx, id, 10, 0)
		require.NoError(t, err)
		require.Empty(t, rows)
	}
}

func TestAcceptAdoptionFormSingleWinner(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	donations := NewDonationRepository(pool)

	owner := createTestUser(t, pool, "dhaka", "mirpur")
	first := createTestUser(t, pool, "dhaka", "mirpur")
	second := createTestUser(t, pool, "dhaka", "gulshan")
	post := createTestDonation(t, pool, owner.ID)

	formA := &domain.AdoptionForm{
		ID:             uuid.NewString(),
		DonationPostID: post.ID,
		ApplicantID:    first.ID,
		MeetingAt:      time.Now().Add(24 * time.Hour),
		Status:         domain.AdoptionPending,
	}
	formB := &domain.AdoptionForm{
		ID:             uuid.NewString(),
		DonationPostID: post.ID,
		ApplicantID:    second.ID,
		MeetingAt:      time.Now().Add(48 * time.Hour),
		Status:         domain.AdoptionPending,
	}
	require.NoError(t, donations.SubmitAdoptionForm(ctx, formA))
	require.NoError(t, donations.SubmitAdoptionForm(ctx, formB))

	// Duplicate application by the same user conflicts.
	dup := &domain.AdoptionForm{
		ID:             uuid.NewString(),
		DonationPostID: post.ID,
		ApplicantID:    first.ID,
		Status:         domain.AdoptionPending,
	}
	require.ErrorIs(t, donations.SubmitAdoptionForm(ctx, dup), domain.ErrAlreadyApplied)

	accepted, err := donations.AcceptAdoptionForm(ctx, formA.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AdoptionAccepted, accepted.Status)

	// Sibling forms were rejected and the post is off the market.
	sibling, err := donations.GetAdoptionForm(ctx, formB.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AdoptionRejected, sibling.Status)

	got, err := donations.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.False(t, got.IsAvailable)

	// A second accept on the same post conflicts.
	_, err = donations.AcceptAdoptionForm(ctx, formB.ID)
	require.ErrorIs(t, err, domain.ErrPostUnavailable)
}

func TestDeleteDonationCascades(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	donations := NewDonationRepository(pool)
	comments := NewCommentRepository(pool)

	owner := createTestUser(t, pool, "dhaka", "mirpur")
	visitor := createTestUser(t, pool, "dhaka", "mirpur")
	post := createTestDonation(t, pool, owner.ID)

	require.NoError(t, donations.Upvote(ctx, post.ID, visitor.ID))
	require.NoError(t, comments.Create(ctx, &domain.Comment{
		ID:       uuid.NewString(),
		PostKind: domain.PostKindDonation,
		PostID:   post.ID,
		AuthorID: visitor.ID,
		Body:     "What a cutie",
	}))
	require.NoError(t, donations.SubmitAdoptionForm(ctx, &domain.AdoptionForm{
		ID:             uuid.NewString(),
		DonationPostID: post.ID,
		ApplicantID:    visitor.ID,
		Status:         domain.AdoptionPending,
	}))

	require.NoError(t, donations.Delete(ctx, post.ID))

	_, err := donations.GetByID(ctx, post.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	for _, table := range []string{"upvotes", "adoption_forms"} {
		var count int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM `+table+` WHERE donation_post_id = $1`, post.ID).Scan(&count))
		require.Zerof(t, count, "%s rows survived the cascade", table)
	}
	left, err := comments.ListByPost(ctx, domain.PostKindDonation, post.ID)
	require.NoError(t, err)
	require.Empty(t, left)
}

func TestJobLifecycle(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	jobs := NewJobRepository(pool)
	caregivers := NewCaregiverRepository(pool)

	owner := createTestUser(t, pool, "dhaka", "mirpur")
	carer := createTestUser(t, pool, "dhaka", "mirpur")

	cg := &domain.Caregiver{ID: uuid.NewString(), UserID: carer.ID, HourlyRate: 50, City: "dhaka"}
	require.NoError(t, caregivers.Create(ctx, cg))
	require.ErrorIs(t, caregivers.Create(ctx, &domain.Caregiver{
		ID: uuid.NewString(), UserID: carer.ID, HourlyRate: 60, City: "dhaka",
	}), domain.ErrDuplicateOperation)

	job := &domain.JobPost{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		Title:     "Cat sitting",
		Tags:      []string{"cat", "weekend"},
		Location:  domain.Location{Country: "bd", City: "dhaka", Area: "mirpur"},
		PriceLow:  100,
		PriceHigh: 500,
		StartDate: time.Now(),
		EndDate:   time.Now().Add(72 * time.Hour),
		Status:    domain.JobOpen,
	}
	require.NoError(t, jobs.Create(ctx, job))

	app := &domain.Application{
		ID:          uuid.NewString(),
		JobPostID:   job.ID,
		CaregiverID: cg.ID,
		Proposal:    "I love cats",
		Amount:      250,
		Status:      domain.ApplicationPending,
	}
	require.NoError(t, jobs.Apply(ctx, app))
	require.ErrorIs(t, jobs.Apply(ctx, &domain.Application{
		ID: uuid.NewString(), JobPostID: job.ID, CaregiverID: cg.ID, Amount: 300,
		Status: domain.ApplicationPending,
	}), domain.ErrAlreadyApplied)

	accepted, err := jobs.SelectCaregiver(ctx, job.ID, app.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ApplicationAccepted, accepted.Status)

	got, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobOngoing, got.Status)
	require.NotNil(t, got.SelectedCaregiverID)
	require.Equal(t, cg.ID, *got.SelectedCaregiverID)

	// Applying to a non-OPEN job fails.
	require.ErrorIs(t, jobs.Apply(ctx, &domain.Application{
		ID: uuid.NewString(), JobPostID: job.ID, CaregiverID: uuid.NewString(), Amount: 200,
		Status: domain.ApplicationPending,
	}), domain.ErrInvalidTransition)

	review := &domain.Review{
		ID:          uuid.NewString(),
		JobPostID:   job.ID,
		CaregiverID: cg.ID,
		ReviewerID:  owner.ID,
		Rating:      5,
		Body:        "Flawless",
	}
	require.NoError(t, jobs.EndJob(ctx, job.ID, review))

	got, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobClosed, got.Status)

	// Ending an already CLOSED job conflicts.
	require.ErrorIs(t, jobs.EndJob(ctx, job.ID, nil), domain.ErrInvalidTransition)

	// The review feeds the caregiver's rating aggregate.
	ratedCg, err := caregivers.GetByID(ctx, cg.ID)
	require.NoError(t, err)
	require.Equal(t, 1, ratedCg.RatingCount)
	require.InDelta(t, 5.0, ratedCg.RatingAvg, 0.001)
}

func TestNotificationsLifecycle(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	notifications := NewNotificationRepository(pool)

	recipient := createTestUser(t, pool, "dhaka", "mirpur")
	other := createTestUser(t, pool, "dhaka", "mirpur")

	rows := []domain.Notification{
		{ID: uuid.NewString(), RecipientID: recipient.ID, Type: domain.NotificationNewComment, Message: "one"},
		{ID: uuid.NewString(), RecipientID: recipient.ID, Type: domain.NotificationNewPostInArea, Message: "two"},
	}
	require.NoError(t, notifications.CreateMany(ctx, rows))
	require.NoError(t, notifications.CreateMany(ctx, nil))

	list, err := notifications.ListByRecipient(ctx, recipient.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Another user cannot mark someone else's notification as read.
	require.ErrorIs(t, notifications.MarkRead(ctx, rows[0].ID, other.ID), domain.ErrNotFound)
	require.NoError(t, notifications.MarkRead(ctx, rows[0].ID, recipient.ID))

	purged, err := notifications.PurgeReadBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.GreaterOrEqual(t, purged, int64(1))
}
