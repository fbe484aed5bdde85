package notify

import (
	"context"
	"testing"

	"server/internal/domain"
)

type stubUsers struct {
	domain.UserRepository
	areaIDs []string
}

func (s *stubUsers) ListIDsByArea(ctx context.Context, city, area, excludeID string) ([]string, error) {
	out := make([]string, 0, len(s.areaIDs))
	for _, id := range s.areaIDs {
		if id != excludeID {
			out = append(out, id)
		}
	}
	return out, nil
}

type stubNotifications struct {
	domain.NotificationRepository
	rows []domain.Notification
}

func (s *stubNotifications) CreateMany(ctx context.Context, notifications []domain.Notification) error {
	s.rows = append(s.rows, notifications...)
	return nil
}

func TestDonationPostCreatedExcludesAuthor(t *testing.T) {
	users := &stubUsers{areaIDs: []string{"author", "n1", "n2"}}
	sink := &stubNotifications{}
	n := New(users, sink)

	post := &domain.DonationPost{
		ID:       "p1",
		OwnerID:  "author",
		Title:    "Tabby",
		Location: domain.Location{City: "dhaka", Area: "mirpur"},
	}
	if err := n.DonationPostCreated(context.Background(), post); err != nil {
		t.Fatalf("DonationPostCreated: %v", err)
	}
	if len(sink.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sink.rows))
	}
	for _, row := range sink.rows {
		if row.RecipientID == "author" {
			t.Error("author must be excluded from area fan-out")
		}
		if row.PostID == nil || *row.PostID != "p1" {
			t.Errorf("row post id = %v, want p1", row.PostID)
		}
	}
}

func TestCommentAddedSkipsSelfComment(t *testing.T) {
	sink := &stubNotifications{}
	n := New(&stubUsers{}, sink)

	comment := &domain.Comment{ID: "c1", PostID: "p1", AuthorID: "owner"}
	if err := n.CommentAdded(context.Background(), "owner", "Tabby", comment); err != nil {
		t.Fatalf("CommentAdded: %v", err)
	}
	if len(sink.rows) != 0 {
		t.Errorf("rows = %d, want 0 for self comment", len(sink.rows))
	}

	comment.AuthorID = "visitor"
	if err := n.CommentAdded(context.Background(), "owner", "Tabby", comment); err != nil {
		t.Fatalf("CommentAdded: %v", err)
	}
	if len(sink.rows) != 1 || sink.rows[0].RecipientID != "owner" {
		t.Errorf("rows = %+v, want a single row for the owner", sink.rows)
	}
}

func TestEmptyRecipientsIsNoOp(t *testing.T) {
	sink := &stubNotifications{}
	n := New(&stubUsers{areaIDs: []string{"author"}}, sink)

	post := &domain.DonationPost{ID: "p1", OwnerID: "author", Title: "Tabby"}
	if err := n.DonationPostCreated(context.Background(), post); err != nil {
		t.Fatalf("DonationPostCreated: %v", err)
	}
	if len(sink.rows) != 0 {
		t.Errorf("rows = %d, want 0", len(sink.rows))
	}
}
