package config

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/asklet/pkg/asklet/internalerr"
	"github.com/cognicore/asklet/pkg/asklet/oracle/domain"
	"github.com/cognicore/asklet/pkg/asklet/oracle/matrix"
	"github.com/cognicore/asklet/pkg/asklet/store/sqlite"
)

const testMatrix = `apple:
  red: 3
banana:
  yellow: 4
`

func writeMatrix(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matrix.yaml")
	if err := os.WriteFile(path, []byte(testMatrix), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoaderMatrix(t *testing.T) {
	ctx := context.Background()
	cfg := Default()
	cfg.Matrix = writeMatrix(t)
	cfg.Seed = 9

	comp, err := (&Loader{Config: cfg}).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer comp.Close()

	if err := comp.Oracle.SetTarget(ctx, "apple"); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	b, err := comp.Oracle.Ask(ctx, "red")
	if err != nil || b != 3 {
		t.Errorf("Ask = %v, %v", b, err)
	}
	if comp.Oracle.Round() == "" {
		t.Error("expected a round ID after SetTarget")
	}
}

func TestLoaderDomain(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "domain.db")

	m, err := matrix.Load(writeMatrix(t), matrix.Options{})
	if err != nil {
		t.Fatal(err)
	}
	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := domain.Import(ctx, st, m); err != nil {
		t.Fatal(err)
	}
	st.Close()

	cfg := Default()
	cfg.Source = SourceDomain
	cfg.Database = dbPath

	comp, err := (&Loader{Config: cfg}).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer comp.Close()

	if comp.Store == nil {
		t.Fatal("expected the store to be kept for Close")
	}
	if err := comp.Oracle.ChooseSecret(ctx); err != nil {
		t.Fatalf("ChooseSecret: %v", err)
	}
	ok, err := comp.Oracle.Confirm(ctx, comp.Oracle.Target())
	if err != nil || !ok {
		t.Errorf("Confirm = %v, %v", ok, err)
	}
}

func TestLoaderEmptyDomain(t *testing.T) {
	cfg := Default()
	cfg.Source = SourceDomain
	cfg.Database = filepath.Join(t.TempDir(), "empty.db")

	_, err := (&Loader{Config: cfg}).Load(context.Background())
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoaderShell(t *testing.T) {
	ctx := context.Background()
	cfg := Default()
	cfg.Source = SourceShell
	cfg.SessionFile = filepath.Join(t.TempDir(), "asklet_user")

	out := &bytes.Buffer{}
	comp, err := (&Loader{Config: cfg, In: strings.NewReader("robot\n"), Out: out}).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Shell == nil || len(comp.Shell.ID()) != 32 {
		t.Fatal("expected a shell oracle with a session identity")
	}
	if err := comp.Oracle.ChooseSecret(ctx); err != nil {
		t.Fatalf("ChooseSecret: %v", err)
	}
	if comp.Oracle.Target() != "robot" {
		t.Errorf("unexpected target %q", comp.Oracle.Target())
	}
	if !errors.Is(comp.Oracle.SetTarget(ctx, "cat"), internalerr.ErrNotPermitted) {
		t.Error("expected shell SetTarget to be refused")
	}
}

func TestLoaderInvalidConfig(t *testing.T) {
	_, err := (&Loader{Config: Default()}).Load(context.Background())
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
