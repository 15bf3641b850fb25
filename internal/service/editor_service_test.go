package service

import (
	"testing"

	"github.com/avatarforge/api/internal/model"
	"github.com/avatarforge/api/internal/store"
)

func f(v float64) *float64 { return &v }

func i(v int) *int { return &v }

func TestCreateSessionSeedsDefaultVariation(t *testing.T) {
	svc := NewEditorService(0, 0)

	sess, err := svc.CreateSession()
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if sess.Variations.Len() != 1 {
		t.Errorf("expected one seeded variation, got %d", sess.Variations.Len())
	}
	if sess.Variations.ActiveIndex() != 0 {
		t.Errorf("expected active index 0, got %d", sess.Variations.ActiveIndex())
	}
	if sess.Working() != model.DefaultCharacter() {
		t.Errorf("working state should be the default character")
	}

	if _, err := svc.Session("missing"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionCap(t *testing.T) {
	svc := NewEditorService(0, 2)

	for i := 0; i < 2; i++ {
		if _, err := svc.CreateSession(); err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
	}
	if _, err := svc.CreateSession(); err != ErrTooManySessions {
		t.Errorf("expected ErrTooManySessions, got %v", err)
	}
}

func TestUpdateCharacterWritesBackToActiveSlot(t *testing.T) {
	svc := NewEditorService(0, 0)
	sess, _ := svc.CreateSession()

	state, err := svc.UpdateCharacter(sess.ID, &model.UpdateCharacterRequest{
		CharacterPatch: model.CharacterPatch{Height: f(99)},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if state.Height != 2.5 {
		t.Errorf("expected clamped height 2.5, got %g", state.Height)
	}

	stored, _ := sess.Variations.Get(0)
	if stored.Height != 2.5 {
		t.Error("edit must be written back into the active variation slot")
	}
	if sess.Working().Height != 2.5 {
		t.Error("edit must update the working state")
	}
}

func TestUpdateCharacterStaleBaseIndex(t *testing.T) {
	svc := NewEditorService(0, 0)
	sess, _ := svc.CreateSession()
	sess.Variations.Append(model.DefaultCharacter())
	sess.Variations.SetActive(1)

	_, err := svc.UpdateCharacter(sess.ID, &model.UpdateCharacterRequest{
		BaseIndex:      i(0),
		CharacterPatch: model.CharacterPatch{Height: f(2.0)},
	})
	if err != store.ErrStaleEdit {
		t.Fatalf("expected ErrStaleEdit, got %v", err)
	}

	stored, _ := sess.Variations.Get(0)
	if stored.Height != 1.0 {
		t.Error("stale edit must not be applied to the old slot")
	}
}

func TestSelectVariationCopiesSnapshot(t *testing.T) {
	svc := NewEditorService(0, 0)
	sess, _ := svc.CreateSession()

	other := model.DefaultCharacter()
	other.Name = "Second"
	sess.Variations.Append(other)

	state, err := svc.SelectVariation(sess.ID, 1)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if state.Name != "Second" {
		t.Errorf("expected snapshot copy, got %+v", state)
	}
	if sess.Variations.ActiveIndex() != 1 {
		t.Error("selection must move the active index")
	}

	// Editing the working copy must not leak into the stored snapshot
	// except through an explicit store write.
	if _, err := svc.UpdateCharacter(sess.ID, &model.UpdateCharacterRequest{
		CharacterPatch: model.CharacterPatch{MuscleMass: f(0.9)},
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	first, _ := sess.Variations.Get(0)
	if first.MuscleMass != 0.2 {
		t.Error("edit leaked into a non-active snapshot")
	}

	if _, err := svc.SelectVariation(sess.ID, 7); err != store.ErrIndexOutOfRange {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if sess.Variations.ActiveIndex() != 1 {
		t.Error("failed selection must keep the prior active index")
	}
}

func TestGeometryTracksWorkingState(t *testing.T) {
	svc := NewEditorService(0, 0)
	sess, _ := svc.CreateSession()

	desc, err := svc.Geometry(sess.ID)
	if err != nil {
		t.Fatalf("geometry failed: %v", err)
	}
	if len(desc.Primitives) != 6 {
		t.Errorf("expected 6 primitives, got %d", len(desc.Primitives))
	}

	show := true
	if _, err := svc.UpdateCharacter(sess.ID, &model.UpdateCharacterRequest{
		CharacterPatch: model.CharacterPatch{ShowSkeleton: &show},
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	desc, _ = svc.Geometry(sess.ID)
	if desc.SkeletonCount() != 3 {
		t.Errorf("expected 3 skeleton primitives, got %d", desc.SkeletonCount())
	}
}
