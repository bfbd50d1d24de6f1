package mcpserver

// FarmFormatContract describes the Markdown farm file format read from the
// catalog directory.
const FarmFormatContract = `# Harvest Farm Format Contract

Every farm in a Harvest catalog directory is one Markdown file.

## Structure

` + "```" + `markdown
---
name: Green Valley Farm              # REQUIRED – unique display name
description: Organic vegetables      # OPTIONAL – falls back to the body text
distance: 2.5 miles                  # OPTIONAL – display label, not parsed
rating: 4.5                          # OPTIONAL – number between 0 and 5
image: https://example.com/farm.jpg  # OPTIONAL – image URL
tags:                                # OPTIONAL – YAML list; used for filtering
  - Organic
  - Local Delivery
location: 1200 Valley Road           # OPTIONAL
contact: (503) 555-0142              # OPTIONAL – phone or email
delivery_areas:                      # OPTIONAL – YAML list
  - Hillsboro
---

# Green Valley Farm

Organic vegetables and fruits.
` + "```" + `

## Rules

1. **` + "`" + `name` + "`" + ` is required.** ` + "`" + `title` + "`" + ` or the first ` + "`" + `# Heading` + "`" + ` are accepted instead.
   Names are unique within a catalog, compared case-insensitively.
2. **Tags** are matched exactly, including case. Prefer the vocabulary returned
   by ` + "`" + `list_tags` + "`" + `: Organic, Free Range, Local Delivery, Grass Fed, Pick Your Own, Farm Stand.
3. **Rating** outside 0–5 makes the file malformed; malformed files are skipped.
4. **File names** follow the name in kebab case (` + "`" + `green-valley-farm.md` + "`" + `), as written by ` + "`" + `harvest seed` + "`" + `.
5. **Encoding** is UTF-8. Hidden files and directories are ignored.
`
