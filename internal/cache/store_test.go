package cache

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/potluck/internal/guest"
)

func ids(records []guest.Guest) []guest.ID {
	out := make([]guest.ID, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestStore_ReplaceAllAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.ReplaceAll([]guest.Guest{
		{ID: "a", Name: "Dara", Categories: []guest.Category{guest.CategoryDessert}},
		{ID: "b", Name: "Kiri"},
	})

	snap := s.Snapshot()
	if got := ids(snap.Records); !reflect.DeepEqual(got, []guest.ID{"a", "b"}) {
		t.Fatalf("records = %v, want [a b]", got)
	}
	if !snap.Loaded {
		t.Fatalf("Loaded = false, want true")
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Records[0].Name = "changed"
	snap.Records[0].Categories[0] = guest.CategoryMain
	again := s.Snapshot()
	if again.Records[0].Name != "Dara" || again.Records[0].Categories[0] != guest.CategoryDessert {
		t.Fatalf("Snapshot should deep-clone records; got %#v", again.Records[0])
	}
}

func TestStore_ReplaceAllDropsDuplicateIDs(t *testing.T) {
	var s Store
	s.ReplaceAll([]guest.Guest{{ID: "a", Name: "first"}, {ID: "a", Name: "second"}})

	snap := s.Snapshot()
	if len(snap.Records) != 1 || snap.Records[0].Name != "first" {
		t.Fatalf("records = %#v, want single first record", snap.Records)
	}
}

func TestStore_RecordFailureKeepsRecords(t *testing.T) {
	var s Store
	s.ReplaceAll([]guest.Guest{{ID: "a"}})
	prev := s.Snapshot()

	origErr := errors.New("boom")
	s.RecordFailure(origErr)
	s.RecordFailure(origErr)

	snap := s.Snapshot()
	if !reflect.DeepEqual(ids(snap.Records), ids(prev.Records)) {
		t.Fatalf("records changed on failure: got %v want %v", ids(snap.Records), ids(prev.Records))
	}
	if snap.Version != prev.Version {
		t.Fatalf("Version = %d, want %d", snap.Version, prev.Version)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !snap.IsOffline() {
		t.Fatalf("IsOffline() = false after two failures")
	}

	s.ReplaceAll(nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("success should reset failures; got %d %v", snap.ConsecutiveFailures, snap.LastError)
	}
}

func TestStore_InsertRejectsExistingID(t *testing.T) {
	var s Store
	if !s.Insert(guest.Guest{ID: "a", Name: "Dara"}) {
		t.Fatalf("Insert into empty store = false, want true")
	}
	if s.Insert(guest.Guest{ID: "a", Name: "Other"}) {
		t.Fatalf("Insert with existing id = true, want false")
	}
	if g, _ := s.Get("a"); g.Name != "Dara" {
		t.Fatalf("Get(a).Name = %q, want Dara", g.Name)
	}
}

func TestStore_PatchAndRemove(t *testing.T) {
	var s Store
	s.ReplaceAll([]guest.Guest{{ID: "a", RSVP: guest.RSVPYes}, {ID: "b"}, {ID: "c"}})

	updated, ok := s.Patch("a", guest.Patch{}.WithRSVP(guest.RSVPNo))
	if !ok || updated.RSVP != guest.RSVPNo {
		t.Fatalf("Patch = %#v, %v; want rsvp=no", updated, ok)
	}
	if _, ok := s.Patch("missing", guest.Patch{}); ok {
		t.Fatalf("Patch on missing id = true, want false")
	}

	removed, pos, ok := s.Remove("b")
	if !ok || removed.ID != "b" || pos != 1 {
		t.Fatalf("Remove(b) = %v, %d, %v", removed.ID, pos, ok)
	}
	if got := ids(s.Snapshot().Records); !reflect.DeepEqual(got, []guest.ID{"a", "c"}) {
		t.Fatalf("records = %v, want [a c]", got)
	}
	if _, ok := s.Get("c"); !ok {
		t.Fatalf("index not rebuilt after Remove")
	}

	if !s.InsertAt(pos, removed) {
		t.Fatalf("InsertAt returned false")
	}
	if got := ids(s.Snapshot().Records); !reflect.DeepEqual(got, []guest.ID{"a", "b", "c"}) {
		t.Fatalf("records = %v, want [a b c]", got)
	}
}

func TestStore_RestoreReinstatesCapturedRecords(t *testing.T) {
	var s Store
	s.ReplaceAll([]guest.Guest{{ID: "a"}, {ID: "b"}})
	captured := s.Snapshot()

	s.Remove("a")
	s.Insert(guest.Guest{ID: "z"})
	s.Restore(captured)

	snap := s.Snapshot()
	if !reflect.DeepEqual(snap.Records, captured.Records) {
		t.Fatalf("Restore = %v, want %v", ids(snap.Records), ids(captured.Records))
	}
	if snap.Version <= captured.Version {
		t.Fatalf("Version = %d, want > %d", snap.Version, captured.Version)
	}
}

func TestStore_NameTakenTracksWrites(t *testing.T) {
	var s Store
	s.Insert(guest.Guest{ID: "a", Name: "Dara"})

	if !s.NameTaken(" DARA ", "") {
		t.Fatalf("NameTaken(DARA) = false, want true")
	}
	if s.NameTaken("dara", "a") {
		t.Fatalf("NameTaken should ignore the record being renamed")
	}

	s.Patch("a", guest.Patch{}.WithName("Mo"))
	if s.NameTaken("Dara", "") {
		t.Fatalf("old name still taken after rename")
	}
	if !s.NameTaken("mo", "") {
		t.Fatalf("new name not taken after rename")
	}

	s.Remove("a")
	if s.NameTaken("Mo", "") {
		t.Fatalf("name still taken after Remove")
	}
}
