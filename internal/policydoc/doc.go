// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package policydoc turns policy Markdown into the HTML shown in the portal
// and extracts the table of contents that links into it.
//
// Two pieces cooperate and must agree on heading ids:
//
//   - Headings scans raw text for level-2 and level-3 headings and derives
//     an anchor for each with slug.Anchor.
//   - Annotator renders raw text: typed callouts (> [!NOTE] ...), inline
//     badges (**Simple:**, **Live Example:**, **Punishment:**), base
//     Markdown through an injected converter, then id injection on every
//     rendered <h2>/<h3>.
//
// Rendered output is not sanitized unless WithSanitizer is supplied. Policy
// authors can therefore embed raw HTML and SVG, which makes them trusted
// with respect to every reader of the portal.
//
// Known gaps in heading alignment. The extractor works line by line and
// does not model container blocks, so rendered and extracted ids diverge
// for:
//
//   - setext headings and headings indented by one to three spaces
//   - headings inside list items (- ## X) or plain blockquotes (> ## X),
//     which render with ids but are not listed
//   - ## lines inside raw HTML blocks, which are listed but render as HTML
//   - heading text containing a link, an image or a named entity such as
//     &eacute;, whose rendered text differs from the raw text
//
// Headings inside callouts are rendered without ids and are not listed.
package policydoc

// MarkupVersion identifies the generated markup. Bump it whenever callout,
// badge or heading output changes so cached fragments are not reused.
const MarkupVersion = 1
