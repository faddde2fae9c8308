package store

import (
	"context"
	"testing"
	"time"
)

func TestUpsertInsight(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	snap, err := db.EnsureRelationship(ctx, "user-1", "char-1", now)
	if err != nil {
		t.Fatalf("EnsureRelationship: %v", err)
	}

	// First observation creates.
	if err := db.UpsertInsight(ctx, snap.ID, "anxious_reassure", "user seeks reassurance when anxious", 0.2, 0.1, now); err != nil {
		t.Fatalf("UpsertInsight: %v", err)
	}

	in, err := db.GetInsight(ctx, snap.ID, "anxious_reassure")
	if err != nil {
		t.Fatalf("GetInsight: %v", err)
	}
	if in == nil {
		t.Fatal("expected insight")
	}
	if in.Confidence != 0.2 {
		t.Errorf("confidence = %v, want 0.2", in.Confidence)
	}
	if in.TimesObserved != 1 {
		t.Errorf("times_observed = %d, want 1", in.TimesObserved)
	}

	// Second observation bumps in place — never a second row.
	later := now + 1000
	if err := db.UpsertInsight(ctx, snap.ID, "anxious_reassure", "user seeks reassurance when anxious", 0.2, 0.1, later); err != nil {
		t.Fatalf("UpsertInsight again: %v", err)
	}

	in, _ = db.GetInsight(ctx, snap.ID, "anxious_reassure")
	if got, want := in.Confidence, 0.2+0.1; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("confidence = %v, want %v", got, want)
	}
	if in.TimesObserved != 2 {
		t.Errorf("times_observed = %d, want 2", in.TimesObserved)
	}
	if in.LastObservedAt != later {
		t.Errorf("last_observed_at = %d, want %d", in.LastObservedAt, later)
	}

	all, err := db.ListInsights(ctx, snap.ID)
	if err != nil {
		t.Fatalf("ListInsights: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("insights = %d, want 1", len(all))
	}
}

func TestUpsertInsightConfidenceClamped(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	snap, _ := db.EnsureRelationship(ctx, "user-1", "char-1", now)

	for i := 0; i < 20; i++ {
		if err := db.UpsertInsight(ctx, snap.ID, "happy_banter", "", 0.2, 0.1, now+int64(i)); err != nil {
			t.Fatalf("UpsertInsight: %v", err)
		}
	}

	in, _ := db.GetInsight(ctx, snap.ID, "happy_banter")
	if in.Confidence > 1 {
		t.Errorf("confidence = %v, must stay within [0, 1]", in.Confidence)
	}
	if in.TimesObserved != 20 {
		t.Errorf("times_observed = %d, want 20", in.TimesObserved)
	}
}

func TestInsightsSeparateKeys(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	snap, _ := db.EnsureRelationship(ctx, "user-1", "char-1", now)

	db.UpsertInsight(ctx, snap.ID, "sad_comfort", "", 0.2, 0.1, now)
	db.UpsertInsight(ctx, snap.ID, "happy_banter", "", 0.2, 0.1, now)

	all, err := db.ListInsights(ctx, snap.ID)
	if err != nil {
		t.Fatalf("ListInsights: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("insights = %d, want 2", len(all))
	}
}
