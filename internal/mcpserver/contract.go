package mcpserver

// NoteFormatContract describes the canonical org note format that LLM
// consumers should understand when reading or referencing notes.
const NoteFormatContract = `# Ansuz Note Format Contract

Every note stored in an Ansuz vault follows this structure.

## Filename

` + "```" + `
20250115T093000--human-readable-title__tag1_tag2.org
` + "```" + `

- A creation timestamp (` + "`" + `YYYYMMDDTHHMMSS` + "`" + `), two dashes, a lowercase
  hyphenated title slug, optionally two underscores and underscore-separated
  tags, then the extension.
- Filenames are generated by the store. Never invent them by hand; use the
  create_note tool with a title and tags.

## Identifier block

Notes that participate in linking start with a property drawer at the very
first byte of the file:

` + "```" + `org
:PROPERTIES:
:ID: 9f3c1c8e-0b2f-4f55-8d51-d2c1a3b4e5f6
:END:
` + "```" + `

- The drawer is REQUIRED for a note to appear in the graph index.
- The identifier is assigned by the store (create_note) or repaired with
  ensure_identifier. Never write or edit the drawer manually.
- Notes without the drawer are reported by audit_unlinked.

## Keyword header

After the drawer come org keywords:

` + "```" + `org
#+title: Human-readable title
#+date: [2025-01-15 Wed 09:30]
#+filetags: :tag1:tag2:
` + "```" + `

## References

Notes reference each other by identifier, never by path:

` + "```" + `org
See [[id:9f3c1c8e-0b2f-4f55-8d51-d2c1a3b4e5f6][display text]] for details.
` + "```" + `

- The target is the identifier of another note.
- The description in the second bracket pair is the display text.
- Use get_backrefs to find every note referencing a given identifier.

## Rules

1. **Tags** are lowercase (e.g. ` + "`" + `project` + "`" + `, ` + "`" + `meetings` + "`" + `); they live in the
   filename and the ` + "`" + `#+filetags:` + "`" + ` keyword.
2. **Encoding** is UTF-8 with a trailing newline.
3. **Excluded category:** notes tagged with the configured excluded tag
   (e.g. journal entries) carry no identifier and never appear in the index.
`
