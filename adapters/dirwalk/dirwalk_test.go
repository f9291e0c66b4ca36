/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package dirwalk_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/corepb/corepb/adapters/dirwalk"
)

func TestNewPoolAndOpen(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.bin", "b.bin", "sub/c.bin"} {
		full := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(full, []byte(name), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	pool, st := dirwalk.NewPool(root)
	if !st.OK() {
		t.Fatalf("NewPool: %v", st)
	}
	if pool.Len() != 3 {
		t.Fatalf("want 3 discovered files, got %d", pool.Len())
	}

	out, errs := pool.Open(context.Background(), 2)
	var got int
	for src := range out {
		got++
		src.Close()
	}
	if got != 3 {
		t.Fatalf("want 3 opened sources, got %d", got)
	}
	if !errs.Empty() {
		t.Fatalf("unexpected open errors: %v", errs.Error())
	}
}
