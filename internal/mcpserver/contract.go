package mcpserver

// DocFormatContract describes the canonical Markdown document format that
// LLM consumers should follow when creating or updating documents.
const DocFormatContract = `# Dagaz Document Format Contract

Every Markdown document stored in dagaz MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED – used in listings, search, graph
tags:                               # OPTIONAL – YAML list; used for filtering
  - tag-one
  - tag-two
category: design                    # OPTIONAL – inferred from path when omitted
status: draft                       # OPTIONAL – draft | active | stale | archived
created: 2025-01-15                 # OPTIONAL – YYYY-MM-DD
updated: 2025-06-01                 # OPTIONAL – YYYY-MM-DD
cadence: 90d                        # OPTIONAL – review cadence: Nd, Nw, or Go duration
related:                            # OPTIONAL – extra references, repo-relative paths
  - design/other-doc.md
---

Body text in standard Markdown.

Use [[wikilinks]] or [inline links](design/other-doc.md) to reference other
documents. References resolve relative to this file first, then from the
repository root.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `title` + "`" + ` field is required.** It is the primary display name everywhere.
3. **Status** defaults to ` + "`" + `draft` + "`" + ` when omitted. Archived documents are
   exempt from staleness and orphan checks.
4. **Dates** use ` + "`" + `YYYY-MM-DD` + "`" + `. The staleness check compares the most
   recent of ` + "`" + `updated` + "`" + ` and ` + "`" + `created` + "`" + ` against the review cadence.
5. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `query-planner` + "`" + `, ` + "`" + `adr` + "`" + `).
6. **References** may omit the ` + "`" + `.md` + "`" + ` extension. Unresolvable references are
   reported as broken links, so prefer full repo-relative paths.
7. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
8. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
title: Query Planner Overview
tags:
  - query-planner
  - architecture
status: active
created: 2025-01-20
updated: 2025-06-12
cadence: 90d
---

# Query Planner Overview

The planner consumes the output of the [[design/binder]] stage and emits a
physical plan consumed by the [execution engine](design/execution-engine.md).
` + "```" + `
`
