package board

import (
	"errors"
	"testing"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/models"
)

func addImage(t *testing.T, e *Editor, id string, f models.Filters) {
	t.Helper()
	err := e.InsertElement(&models.Element{
		ID: id, Type: models.TypeImage, Width: 100, Height: 100,
		Src: "/api/images/a.png", Filters: f,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestFilterEditorRequiresImage(t *testing.T) {
	e, _ := newEditor(t)
	addRect(t, e, "r", 0, 0, 10, 10)

	if err := e.OpenFilterEditor("r"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
	if err := e.OpenFilterEditor("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if e.FilterEditorOpen() {
		t.Error("session open after rejected target")
	}
}

func TestPreviewMutatesWithoutHistoryOrSave(t *testing.T) {
	e, saver := newEditor(t)
	addImage(t, e, "i", nil)
	depth := e.History.Depth()
	saves := saver.n

	if err := e.OpenFilterEditor("i"); err != nil {
		t.Fatal(err)
	}
	if err := e.PreviewFilter("blur", 5); err != nil {
		t.Fatal(err)
	}
	if got := e.Scene.Get("i").Filters["blur"]; got != 5 {
		t.Errorf("blur = %g", got)
	}
	if e.History.Depth() != depth {
		t.Error("preview recorded history")
	}
	if saver.n != saves {
		t.Error("preview scheduled a save")
	}
}

func TestPreviewClampsAndIgnoresUnknown(t *testing.T) {
	e, _ := newEditor(t)
	addImage(t, e, "i", nil)
	if err := e.OpenFilterEditor("i"); err != nil {
		t.Fatal(err)
	}

	if err := e.PreviewFilter("blur", 999); err != nil {
		t.Fatal(err)
	}
	if got := e.Scene.Get("i").Filters["blur"]; got != 20 {
		t.Errorf("blur = %g, want clamped to 20", got)
	}

	if err := e.PreviewFilter("vignette", 50); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Scene.Get("i").Filters["vignette"]; ok {
		t.Error("unknown key stored")
	}
}

func TestCancelRestoresOriginalFilters(t *testing.T) {
	e, _ := newEditor(t)
	addImage(t, e, "i", models.Filters{"grayscale": 40})
	depth := e.History.Depth()

	if err := e.OpenFilterEditor("i"); err != nil {
		t.Fatal(err)
	}
	_ = e.PreviewFilter("grayscale", 100)
	_ = e.PreviewFilter("blur", 10)

	if err := e.CancelFilterEditor(); err != nil {
		t.Fatal(err)
	}
	f := e.Scene.Get("i").Filters
	if f["grayscale"] != 40 {
		t.Errorf("grayscale = %g after cancel", f["grayscale"])
	}
	if _, ok := f["blur"]; ok {
		t.Error("previewed blur survived cancel")
	}
	if e.FilterEditorOpen() {
		t.Error("session still open")
	}
	if e.History.Depth() != depth {
		t.Error("cancelled session left a history entry")
	}
}

func TestApplyNormalizesAndRecordsHistory(t *testing.T) {
	e, _ := newEditor(t)
	addImage(t, e, "i", nil)
	if err := e.OpenFilterEditor("i"); err != nil {
		t.Fatal(err)
	}
	_ = e.PreviewFilter("grayscale", 40)
	_ = e.PreviewFilter("brightness", 100) // default, elided on commit

	if err := e.ApplyFilterEditor(); err != nil {
		t.Fatal(err)
	}
	f := e.Scene.Get("i").Filters
	if f["grayscale"] != 40 {
		t.Errorf("grayscale = %g", f["grayscale"])
	}
	if _, ok := f["brightness"]; ok {
		t.Error("default value stored")
	}

	// Undo restores the pre-open record, not an intermediate preview.
	if !e.Undo() {
		t.Fatal("undo failed")
	}
	if e.Scene.Get("i").Filters != nil {
		t.Errorf("filters = %v after undo", e.Scene.Get("i").Filters)
	}
}

func TestApplyAllDefaultsStoresNil(t *testing.T) {
	e, _ := newEditor(t)
	addImage(t, e, "i", models.Filters{"blur": 3})

	if err := e.OpenFilterEditor("i"); err != nil {
		t.Fatal(err)
	}
	_ = e.PreviewFilter("blur", 0)
	if err := e.ApplyFilterEditor(); err != nil {
		t.Fatal(err)
	}
	if e.Scene.Get("i").Filters != nil {
		t.Errorf("filters = %v, want nil", e.Scene.Get("i").Filters)
	}
}

func TestApplyUnchangedLeavesNoHistory(t *testing.T) {
	e, _ := newEditor(t)
	addImage(t, e, "i", models.Filters{"sepia": 30})
	depth := e.History.Depth()

	if err := e.OpenFilterEditor("i"); err != nil {
		t.Fatal(err)
	}
	if err := e.ApplyFilterEditor(); err != nil {
		t.Fatal(err)
	}
	if e.History.Depth() != depth {
		t.Error("unchanged apply recorded history")
	}
}

func TestPreviewPreset(t *testing.T) {
	e, _ := newEditor(t)
	addImage(t, e, "i", nil)
	if err := e.OpenFilterEditor("i"); err != nil {
		t.Fatal(err)
	}

	if err := e.PreviewPreset("BW"); err != nil {
		t.Fatal(err)
	}
	f := e.Scene.Get("i").Filters
	if f["grayscale"] != 100 || f["contrast"] != 110 {
		t.Errorf("preset record = %v", f)
	}

	if err := e.PreviewPreset("Nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestPreviewWithoutSessionRejected(t *testing.T) {
	e, _ := newEditor(t)
	addImage(t, e, "i", nil)
	if err := e.PreviewFilter("blur", 5); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
	if err := e.ApplyFilterEditor(); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}
