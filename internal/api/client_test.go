package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/store"
)

// The HTTP client half of the Store interface is exercised against the
// real router, so both ends of the wire format are covered together.
func TestStoreClientRoundTrip(t *testing.T) {
	_, router := testEnv(t, "")
	root := chi.NewRouter()
	root.Mount("/api", router)
	srv := httptest.NewServer(root)
	defer srv.Close()

	client := store.NewClient(srv.URL, "")
	ctx := context.Background()

	main, err := client.LoadCanvas(ctx, models.MainCanvasID)
	if err != nil {
		t.Fatalf("load main: %v", err)
	}
	if main.Name != models.MainCanvasName {
		t.Errorf("name = %q", main.Name)
	}

	parent := models.MainCanvasID
	created, err := client.CreateCanvas(ctx, "Remote", &parent)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Elements = append(created.Elements, &models.Element{
		ID: "t1", Type: models.TypeText, Text: "over the wire", Width: 80, Height: 20,
	})
	saved, err := client.SaveCanvas(ctx, created)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Modified == created.Modified {
		t.Error("server did not stamp modified")
	}

	back, err := client.LoadCanvas(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(back.Elements) != 1 || back.Elements[0].Text != "over the wire" {
		t.Errorf("elements = %+v", back.Elements)
	}

	tr, err := client.LoadTree(ctx)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if tr.Canvases[created.ID] == nil {
		t.Error("created canvas missing from tree")
	}
	if err := client.SaveTree(ctx, tr); err != nil {
		t.Fatalf("save tree: %v", err)
	}

	up, err := client.UploadImage(ctx, "drop.png", []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if up.URL == "" || up.Size != 4 {
		t.Errorf("upload = %+v", up)
	}

	if err := client.DeleteCanvas(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := client.LoadCanvas(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v after delete", err)
	}
}

func TestStoreClientErrorMapping(t *testing.T) {
	_, router := testEnv(t, "")
	root := chi.NewRouter()
	root.Mount("/api", router)
	srv := httptest.NewServer(root)
	defer srv.Close()

	client := store.NewClient(srv.URL, "")
	ctx := context.Background()

	if _, err := client.LoadCanvas(ctx, "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing canvas err = %v", err)
	}
	if err := client.DeleteCanvas(ctx, models.MainCanvasID); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("delete main err = %v", err)
	}

	unreachable := store.NewClient("http://127.0.0.1:1", "")
	if _, err := unreachable.LoadTree(ctx); !errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Errorf("unreachable err = %v", err)
	}
}
