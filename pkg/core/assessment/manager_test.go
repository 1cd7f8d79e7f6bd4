package assessment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carboncredit/pkg/core/catalog"
)

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	return NewManager(catalog.Default(), store), store
}

func TestStart_GeneratesSessionID(t *testing.T) {
	m, _ := newTestManager(t)

	sess, err := m.Start(context.Background(), "")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if sess.SessionID == "" {
		t.Fatal("expected generated session id")
	}
	if sess.Cursor != 0 || sess.Complete {
		t.Errorf("new session should be at cursor 0 and active, got %+v", sess)
	}

	q, err := m.CurrentQuestion(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("current question failed: %v", err)
	}
	if q == nil || q.ID != "facility_name" {
		t.Errorf("expected first catalog question, got %+v", q)
	}
}

func TestStart_DuplicateSessionID(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Start(ctx, "abc"); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	_, err := m.Start(ctx, "abc")
	if !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("expected ErrDuplicateSession, got %v", err)
	}
}

func TestSubmitAnswer_UnknownSession(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.SubmitAnswer(context.Background(), "nope", "facility_name", "x")
	if !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession, got %v", err)
	}
	if _, err := m.Progress(context.Background(), "nope"); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession from progress, got %v", err)
	}
}

func TestSubmitAnswer_WalksToCompletion(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	cat := catalog.Default()

	sess, _ := m.Start(ctx, "")

	answers := map[string]interface{}{
		"facility_name":                 "Plant A",
		"location_city":                 "Midland",
		"location_state":                "TX",
		"facility_type":                 "Direct air capture facility",
		"ownership":                     "You (the taxpayer)",
		"technology_ownership":          "You (the taxpayer)",
		"capture_method":                "Direct air capture",
		"annual_co2_captured":           "100000",
		"capture_efficiency":            "90",
		"facility_construction_date":    "2024-01-01",
		"carbon_capture_operation_date": "2025-01-01",
		"sequestration_method":          "Geologic storage (underground injection)",
		"sequestration_location":        "Permian Basin",
		"domestic_content":              "75",
		"energy_community":              true,
	}

	lastProgress := -1.0
	for i, q := range cat.Questions() {
		res, err := m.SubmitAnswer(ctx, sess.SessionID, q.ID, answers[q.ID])
		if err != nil {
			t.Fatalf("submit %s failed: %v", q.ID, err)
		}

		// Progress is monotonically non-decreasing and only hits 1.0 at the end.
		if res.Progress < lastProgress {
			t.Fatalf("progress decreased at %s: %f < %f", q.ID, res.Progress, lastProgress)
		}
		lastProgress = res.Progress

		if i < cat.Len()-1 {
			if res.IsComplete || res.Progress >= 1.0 {
				t.Fatalf("completed early at question %d", i)
			}
			if res.NextQuestion == nil {
				t.Fatalf("expected next question after %s", q.ID)
			}
		} else {
			if !res.IsComplete || res.Progress != 1.0 {
				t.Fatalf("expected completion on last answer, got %+v", res)
			}
			if res.Verdict == nil || !res.Verdict.IsEligible {
				t.Fatalf("expected eligible verdict, got %+v", res.Verdict)
			}
			// DAC 85 with both 10% bonuses.
			if res.Verdict.EstimatedCreditRate != 102.0 {
				t.Errorf("expected estimated rate 102, got %f", res.Verdict.EstimatedCreditRate)
			}
		}
	}

	// COMPLETE is terminal: another submit returns the stored verdict and
	// changes nothing.
	res, err := m.SubmitAnswer(ctx, sess.SessionID, "facility_name", "again")
	if err != nil {
		t.Fatalf("submit after completion failed: %v", err)
	}
	if !res.IsComplete || res.Verdict == nil {
		t.Fatalf("expected terminal verdict, got %+v", res)
	}
	snap, _ := m.Progress(ctx, sess.SessionID)
	if snap.CurrentQuestionIndex != cat.Len() {
		t.Errorf("cursor must stay at catalog length, got %d", snap.CurrentQuestionIndex)
	}
}

func TestSubmitAnswer_PositionalProgression(t *testing.T) {
	// The protocol is strictly sequential: the submitted question id is
	// recorded but the cursor advances regardless of which id was passed.
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, _ := m.Start(ctx, "")
	res, err := m.SubmitAnswer(ctx, sess.SessionID, "sequestration_method", "Geologic storage (underground injection)")
	if err != nil {
		t.Fatalf("out-of-order submit failed: %v", err)
	}
	if res.NextQuestion == nil || res.NextQuestion.ID != "location_city" {
		t.Errorf("cursor should advance positionally, got next %+v", res.NextQuestion)
	}

	stored, _ := m.Session(ctx, sess.SessionID)
	if stored.Answers["sequestration_method"] != "Geologic storage (underground injection)" {
		t.Errorf("answer should be stored under the submitted id, got %v", stored.Answers)
	}
}

func TestSubmitAnswer_OverwritesPriorValue(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, _ := m.Start(ctx, "")
	m.SubmitAnswer(ctx, sess.SessionID, "facility_name", "first")
	m.SubmitAnswer(ctx, sess.SessionID, "facility_name", "second")

	stored, _ := m.Session(ctx, sess.SessionID)
	if stored.Answers["facility_name"] != "second" {
		t.Errorf("later submission should overwrite, got %v", stored.Answers["facility_name"])
	}
	if stored.Cursor != 2 {
		t.Errorf("both submissions advance the cursor, got %d", stored.Cursor)
	}
}

func TestProgress_Idempotent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, _ := m.Start(ctx, "")
	m.SubmitAnswer(ctx, sess.SessionID, "facility_name", "Plant A")

	first, err := m.Progress(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	second, _ := m.Progress(ctx, sess.SessionID)

	if *first != *second {
		t.Errorf("progress must be idempotent: %+v vs %+v", first, second)
	}
	if first.AnswersProvided != 1 || first.CurrentQuestionIndex != 1 {
		t.Errorf("unexpected snapshot: %+v", first)
	}
}

func TestSubmitAnswer_ConcurrentSubmissionsConsumeOneEach(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	sess, _ := m.Start(ctx, "")

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			m.SubmitAnswer(ctx, sess.SessionID, "facility_name", "x")
		}()
	}
	wg.Wait()

	snap, _ := m.Progress(ctx, sess.SessionID)
	if snap.CurrentQuestionIndex != workers {
		t.Errorf("expected exactly %d answers consumed, cursor at %d", workers, snap.CurrentQuestionIndex)
	}
}

func TestMemoryStore_EvictsIdleSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	store.Create(ctx, &Session{SessionID: "stale", Answers: map[string]interface{}{}})
	if store.Len() != 1 {
		t.Fatal("expected one live session")
	}

	store.evictExpired(time.Now().Add(2 * time.Minute))
	if store.Len() != 0 {
		t.Error("idle session should have been evicted")
	}
	if _, err := store.Get(ctx, "stale"); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("expected ErrUnknownSession after eviction, got %v", err)
	}
}
