package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"noticedesk_backend/internal/funnel/domain"
	"noticedesk_backend/platform/apperr"
	"noticedesk_backend/platform/logger"
)

func newTestStore(ttl time.Duration) *Store {
	return NewStore(ttl, logger.New("test"))
}

func storedSession() domain.FormSession {
	return domain.NewSession(
		uuid.New(), "notice-draft", "Legal Notice Drafting", "",
		domain.NewPricing(499), domain.Offers{DiscountPrice: 299}, time.Now(),
	)
}

func TestPutAndGet(t *testing.T) {
	store := newTestStore(time.Hour)
	sess := storedSession()
	store.Put(sess)

	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != sess.ID || got.PlanCode != sess.PlanCode {
		t.Fatalf("Get returned %+v, want %+v", got, sess)
	}
}

func TestGetUnknownSession(t *testing.T) {
	store := newTestStore(time.Hour)

	_, err := store.Get(uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestExpiredSessionIsGone(t *testing.T) {
	store := newTestStore(time.Hour)
	sess := storedSession()
	store.Put(sess)

	now := time.Now()
	store.now = func() time.Time { return now.Add(2 * time.Hour) }

	_, err := store.Get(sess.ID)
	if !apperr.Is(err, apperr.KindGone) {
		t.Fatalf("err = %v, want gone", err)
	}

	// The expired entry is removed on access.
	if store.Len() != 0 {
		t.Fatalf("Len() = %d after expiry, want 0", store.Len())
	}
}

func TestUpdateReplacesOnlyOnSuccess(t *testing.T) {
	store := newTestStore(time.Hour)
	sess := storedSession()
	store.Put(sess)

	_, err := store.Update(sess.ID, func(cur domain.FormSession) (domain.FormSession, error) {
		cur.Source = "should-not-stick"
		return cur, apperr.Conflict("nope")
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Source != "" {
		t.Fatalf("failed update leaked: Source = %q", got.Source)
	}

	updated, err := store.Update(sess.ID, func(cur domain.FormSession) (domain.FormSession, error) {
		cur.Source = "ad-campaign"
		return cur, nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Source != "ad-campaign" {
		t.Fatalf("Source = %q", updated.Source)
	}
	if !updated.UpdatedAt.After(sess.UpdatedAt) {
		t.Fatal("UpdatedAt not refreshed")
	}
}

func TestUpdateIsAtomicPerSession(t *testing.T) {
	store := newTestStore(time.Hour)
	sess := storedSession()
	sess.CurrentStep = domain.StepPayment
	leadID := uuid.New()
	sess.LeadID = &leadID
	store.Put(sess)

	// Many goroutines race to claim the in-flight order slot; the reducer
	// guard under the per-session lock must let exactly one through.
	const attempts = 32
	var wg sync.WaitGroup
	claims := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(sess.ID, func(cur domain.FormSession) (domain.FormSession, error) {
				return domain.Apply(cur, domain.CheckoutStarted{})
			})
			if err == nil {
				claims <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(claims)

	if got := len(claims); got != 1 {
		t.Fatalf("%d goroutines claimed the order slot, want exactly 1", got)
	}
}

func TestExpiryHookReceivesRemovedSessions(t *testing.T) {
	store := newTestStore(time.Hour)
	var expired []domain.FormSession
	store.OnExpire(func(sess domain.FormSession) {
		expired = append(expired, sess)
	})

	viaSweep := storedSession()
	viaGet := storedSession()
	store.Put(viaSweep)
	store.Put(viaGet)

	now := time.Now()
	store.now = func() time.Time { return now.Add(2 * time.Hour) }

	if _, err := store.Get(viaGet.ID); !apperr.Is(err, apperr.KindGone) {
		t.Fatalf("err = %v, want gone", err)
	}
	store.sweep()

	if len(expired) != 2 {
		t.Fatalf("expiry hook fired %d times, want 2", len(expired))
	}
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	store := newTestStore(time.Hour)
	keep := storedSession()
	drop := storedSession()
	store.Put(drop)

	now := time.Now()
	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	store.Put(keep) // stored with the shifted clock, so not yet expired

	store.sweep()

	if store.Len() != 1 {
		t.Fatalf("Len() = %d after sweep, want 1", store.Len())
	}
	if _, err := store.Get(keep.ID); err != nil {
		t.Fatalf("live session swept: %v", err)
	}
}
