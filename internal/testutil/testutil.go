// Package testutil provides shared test helpers for building fixture docs
// trees.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/dagaz/internal/storage"
)

// Logger returns a logger that discards output.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriteDoc writes one file under root, creating parent directories.
func WriteDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestDocs creates a temporary docs tree exercising the interesting cases:
// nested categories, relative and root-relative and title references, a
// broken reference written twice, an unlinked document, and a file without
// frontmatter. Returns the root directory and a storage provider over it.
func TestDocs(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()

	WriteDoc(t, root, "index.md", `---
title: Documentation Index
status: active
created: 2025-01-01
updated: 2026-02-01
---
# Documentation Index

- [[active/architecture/core-concepts]]
- [Endpoints](active/api/endpoints.md)
`)

	WriteDoc(t, root, "active/architecture/core-concepts.md", `---
title: Core Concepts
tags:
  - architecture
  - core
status: active
created: 2025-06-01
updated: 2026-01-15
cadence: 90d
---
# Core Concepts

Builds on the [[active/architecture/execution-engine]].
History in [the original design](../../archive/2025/old-design.md).
`)

	WriteDoc(t, root, "active/architecture/execution-engine.md", `---
title: Execution Engine
tags:
  - architecture
status: active
created: 2025-03-01
updated: 2026-02-01
related:
  - active/architecture/core-concepts.md
---
# Execution Engine
`)

	WriteDoc(t, root, "active/api/endpoints.md", `---
title: API Endpoints
status: active
created: 2025-04-01
updated: 2025-09-15
---
# API Endpoints
`)

	WriteDoc(t, root, "research/survey.md", `---
title: Research Survey
status: draft
created: 2026-02-10
---
# Research Survey

Background in [[Core Concepts]].
Details moved to [the old notes](missing/gone.md).
As discussed in [those notes](missing/gone.md), twice.
`)

	WriteDoc(t, root, "archive/2025/old-design.md", `---
title: Original Design
status: archived
created: 2024-05-01
updated: 2025-01-10
---
# Original Design
`)

	WriteDoc(t, root, "misc/bare.md", "# Just a heading\nNo frontmatter here.\n")

	store, err := storage.NewFS(root, ".md")
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}
