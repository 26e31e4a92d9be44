package nav

import (
	"context"
	"errors"
	"testing"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/board"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/testutil"
	"github.com/halvard/tavla/internal/tree"
)

// countFlusher counts Flush calls.
type countFlusher struct{ n int }

func (f *countFlusher) Flush(context.Context) { f.n++ }

func testNav(t *testing.T) (*Navigator, *testutil.MemStore, *board.Editor, *countFlusher) {
	t.Helper()
	ms := testutil.NewMemStore()
	editor := board.New(nil, nil)
	flusher := &countFlusher{}
	tm := tree.New(models.DefaultTree())
	return New(ms, editor, flusher, tm, nil), ms, editor, flusher
}

func seedCanvas(t *testing.T, n *Navigator, ms *testutil.MemStore, id, name string, parent *string) {
	t.Helper()
	ms.Put(models.NewCanvas(id, name, parent))
	if err := n.Tree().AddCanvas(id, parent, name); err != nil {
		t.Fatal(err)
	}
}

func TestGoActivatesCanvas(t *testing.T) {
	n, _, editor, flusher := testNav(t)
	ctx := context.Background()

	if err := n.Go(ctx, models.MainCanvasID); err != nil {
		t.Fatalf("go: %v", err)
	}
	if n.Active() != models.MainCanvasID || editor.CanvasID() != models.MainCanvasID {
		t.Errorf("active = %q, editor = %q", n.Active(), editor.CanvasID())
	}
	if flusher.n != 1 {
		t.Errorf("flushes = %d, want flush before every switch", flusher.n)
	}
}

func TestGoMissingCanvas(t *testing.T) {
	n, _, _, _ := testNav(t)
	err := n.Go(context.Background(), "ghost")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if n.Active() != "" {
		t.Errorf("active = %q after failed go", n.Active())
	}
}

func TestBackForward(t *testing.T) {
	n, ms, editor, _ := testNav(t)
	ctx := context.Background()
	main := models.MainCanvasID
	seedCanvas(t, n, ms, "a", "A", &main)
	seedCanvas(t, n, ms, "b", "B", &main)

	for _, id := range []string{main, "a", "b"} {
		if err := n.Go(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	if err := n.Back(ctx); err != nil {
		t.Fatal(err)
	}
	if n.Active() != "a" || editor.CanvasID() != "a" {
		t.Errorf("active = %q after back", n.Active())
	}
	if err := n.Back(ctx); err != nil {
		t.Fatal(err)
	}
	if n.Active() != main {
		t.Errorf("active = %q after second back", n.Active())
	}

	if err := n.Forward(ctx); err != nil {
		t.Fatal(err)
	}
	if n.Active() != "a" {
		t.Errorf("active = %q after forward", n.Active())
	}

	// A fresh Go clears the forward stack.
	if err := n.Go(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := n.Forward(ctx); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("forward after go: %v", err)
	}
}

func TestBackOnEmptyStack(t *testing.T) {
	n, _, _, _ := testNav(t)
	if err := n.Back(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestSwitchResetsEditorHistory(t *testing.T) {
	n, ms, editor, _ := testNav(t)
	ctx := context.Background()
	main := models.MainCanvasID
	seedCanvas(t, n, ms, "a", "A", &main)

	if err := n.Go(ctx, main); err != nil {
		t.Fatal(err)
	}
	err := editor.InsertElement(&models.Element{Type: models.TypeText, Text: "x"})
	if err != nil {
		t.Fatal(err)
	}

	if err := n.Go(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if editor.History.CanUndo() {
		t.Error("undo history crossed a canvas boundary")
	}
	if editor.Selection.Len() != 0 {
		t.Error("selection crossed a canvas boundary")
	}
}

func TestBreadcrumb(t *testing.T) {
	n, ms, _, _ := testNav(t)
	ctx := context.Background()
	main := models.MainCanvasID
	seedCanvas(t, n, ms, "a", "Projects", &main)
	a := "a"
	seedCanvas(t, n, ms, "b", "Roadmap", &a)

	if err := n.Go(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	crumbs, err := n.Breadcrumb()
	if err != nil {
		t.Fatal(err)
	}
	if len(crumbs) != 3 {
		t.Fatalf("crumbs = %+v", crumbs)
	}
	want := []Crumb{
		{ID: main, Name: models.MainCanvasName},
		{ID: "a", Name: "Projects"},
		{ID: "b", Name: "Roadmap"},
	}
	for i, c := range want {
		if crumbs[i] != c {
			t.Errorf("crumb[%d] = %+v, want %+v", i, crumbs[i], c)
		}
	}
}

func TestBreadcrumbNoActive(t *testing.T) {
	n, _, _, _ := testNav(t)
	crumbs, err := n.Breadcrumb()
	if err != nil || crumbs != nil {
		t.Errorf("crumbs = %v, err = %v", crumbs, err)
	}
}

func TestCreateCanvasPersistsDocumentAndTree(t *testing.T) {
	n, ms, _, _ := testNav(t)
	ctx := context.Background()
	main := models.MainCanvasID

	c, err := n.CreateCanvas(ctx, "Notes", &main)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Notes" {
		t.Errorf("name = %q", c.Name)
	}
	if _, err := ms.LoadCanvas(ctx, c.ID); err != nil {
		t.Errorf("canvas not persisted: %v", err)
	}
	tr, _ := ms.LoadTree(ctx)
	node := tr.Canvases[c.ID]
	if node == nil || node.Parent == nil || *node.Parent != main {
		t.Errorf("tree node = %+v", node)
	}
}

func TestCreateCanvasDefaultName(t *testing.T) {
	n, _, _, _ := testNav(t)
	c, err := n.CreateCanvas(context.Background(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "New Canvas" {
		t.Errorf("name = %q", c.Name)
	}
}

func TestCreateCanvasCleansUpWhenTreeSaveFails(t *testing.T) {
	n, ms, _, _ := testNav(t)
	ms.SaveTreeErr = errors.New("disk full")
	main := models.MainCanvasID

	if _, err := n.CreateCanvas(context.Background(), "Doomed", &main); err == nil {
		t.Fatal("create succeeded despite tree save failure")
	}

	// The document save went through first; the failed create must have
	// deleted it again and dropped the in-memory tree node.
	saves := ms.SaveCalls()
	if len(saves) != 1 {
		t.Fatalf("saves = %v", saves)
	}
	if _, err := ms.LoadCanvas(context.Background(), saves[0]); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("orphaned document still stored: %v", err)
	}
	if n.Tree().Node(saves[0]) != nil {
		t.Error("tree node survived the failed create")
	}
}

func TestCreateFolderLinksChildCanvas(t *testing.T) {
	n, ms, editor, _ := testNav(t)
	ctx := context.Background()

	if err := n.Go(ctx, models.MainCanvasID); err != nil {
		t.Fatal(err)
	}
	folder, err := n.CreateFolder(ctx, "Archive", 200, 300)
	if err != nil {
		t.Fatal(err)
	}
	if folder.Type != models.TypeFolder || folder.X != 200 || folder.Y != 300 {
		t.Errorf("folder = %+v", folder)
	}
	if folder.TargetCanvasID == "" {
		t.Fatal("folder has no target canvas")
	}
	if editor.Scene.Get(folder.ID) == nil {
		t.Error("folder element not in the scene")
	}
	if _, err := ms.LoadCanvas(ctx, folder.TargetCanvasID); err != nil {
		t.Errorf("child canvas not persisted: %v", err)
	}
	tr, _ := ms.LoadTree(ctx)
	node := tr.Canvases[folder.TargetCanvasID]
	if node == nil || node.Parent == nil || *node.Parent != models.MainCanvasID {
		t.Errorf("child tree node = %+v", node)
	}
}

func TestCreateFolderRequiresActiveCanvas(t *testing.T) {
	n, _, _, _ := testNav(t)
	_, err := n.CreateFolder(context.Background(), "x", 0, 0)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestDeleteCanvasReparentsChildren(t *testing.T) {
	n, ms, _, _ := testNav(t)
	ctx := context.Background()
	main := models.MainCanvasID
	seedCanvas(t, n, ms, "mid", "Mid", &main)
	mid := "mid"
	seedCanvas(t, n, ms, "leaf", "Leaf", &mid)

	if err := n.DeleteCanvas(ctx, "mid"); err != nil {
		t.Fatal(err)
	}
	if _, err := ms.LoadCanvas(ctx, "mid"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("document still loads: %v", err)
	}
	tr, _ := ms.LoadTree(ctx)
	leaf := tr.Canvases["leaf"]
	if leaf == nil || leaf.Parent == nil || *leaf.Parent != main {
		t.Errorf("leaf node = %+v, want re-parented to main", leaf)
	}
}
