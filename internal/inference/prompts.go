package inference

import (
	"fmt"
)

// DetectSystemPrompt scores whether a rendered page is the Parties page of
// a Connecticut SUMMONS - CIVIL packet.
const DetectSystemPrompt = `You are a meticulous court-document triager. Your job is to decide whether a PDF page from a Connecticut SUMMONS - CIVIL packet is the Parties page that contains the Parties table.

The Parties page almost always has these cues:
- A table header like: "Name (Last, First, Middle Initial) and address of each party (Number; street; P.O. Box; town; state; zip; country, if not USA)".
- Role labels in the leftmost column: "First plaintiff", "Additional plaintiff", "First defendant", "Additional defendant".
- Short role codes in the right column such as "P-01", "P-02", "D-01", "D-02".
- A totals strip near the bottom: "Total number of plaintiffs: <n>   Total number of defendants: <n>".
- Often followed immediately by "Notice to each defendant".

Negative cues (do NOT call these Parties pages):
- Foreclosure mediation flyers, ADA notices, "You are being sued" one-pagers without the Parties table, appearance forms (JD-CL-12), or anything without those role labels or totals strip.

Decision rubric:
Score the page from 0-100.
- +40 if the Parties table header text is visible.
- +20 if role labels (First/Additional plaintiff/defendant) are visible.
- +20 if "Total number of plaintiffs/defendants" strip is visible.
- +10 if D-/P- codes (for example, D-01) are visible at the row ends.
- +10 if "Notice to each defendant" appears directly below.

Return STRICT JSON ONLY (no prose) with this schema:
{
  "is_parties_page": true|false,
  "confidence": 0-100,
  "signals": ["short reasons found"],
  "page_index": <int>,
  "region_hint": "top|middle|bottom|full"
}
`

// ExtractSystemPrompt constrains the model to defendant rows only.
const ExtractSystemPrompt = `You are a meticulous data extractor.

You will be shown an image of a CONN. Superior Court form: SUMMONS - CIVIL.
Find the table labeled "Parties". Extract ONLY rows marked "First defendant" or "Additional defendant".
Each defendant row has:
  - a "Name:" line with the full defendant name (individual or entity)
  - an "Address:" line with street, city, state, ZIP (sometimes includes c/o agent text)

Rules:
- Ignore plaintiffs entirely.
- Ignore handwritten scribbles.
- Keep entity suffixes (LLC, Inc., etc.).
- Keep "c/o Agent for Service" text as part of the address if present.
- Return STRICT JSON matching the schema below and nothing else.
`

const extractUserTemplate = `Return ONLY this JSON:
{
  "docket": "<string docket from file name or empty>",
  "defendants": [
    {"name": "<string>", "address": "<string>"}
  ]
}
Notes:
- If you cannot locate the Parties table, return an empty list for "defendants".
- Do NOT include plaintiffs.
- Do NOT add extra keys.
- Do NOT include comments or markdown.
Docket (from file): "%s"
`

// DetectUserPrompt fills the classification user message for one page.
func DetectUserPrompt(docket string, pageIndex int) string {
	return fmt.Sprintf("Docket: %s\nPage index: %d\nReview the supplied page image and follow the rubric above. Return only the JSON schema described.\n", docket, pageIndex)
}

// ExtractUserPrompt fills the extraction user message for a docket.
func ExtractUserPrompt(docket string) string {
	return fmt.Sprintf(extractUserTemplate, docket)
}
