package ingestion_engine

const classificationPrompt = `You classify construction-related PDFs using strict rule-based logic.
Follow the priority order below and answer deterministically.

A. FUNCTIONAL CATEGORY (pick exactly one)
Allowed values: construction_costing, project_schedule, construction_approval, ura_circular, other

A1. Costing override (highest priority). If the document shows cost keywords
(rate, unit rate, cost, quantity, qty, item no, amount, total, estimate, BOQ,
bill of quantities), currency markers (Rs., INR, $, EUR, AED, SGD, yen, Rp),
rows of several numbers per line, or material units (sqm, m2, m3, cum, kg, mt,
nos, ltr), choose construction_costing.

A2. Choose project_schedule only when no costing signal exists and most of the
content is durations, timelines, start/finish dates, dependencies, milestones,
task sequences, phases of work or gantt-like bars.

A3. construction_approval covers approval stages, authority workflows,
submission requirements, permits, NOC steps, forms and compliance procedures.
ura_circular covers regulatory circulars, official notices, policies,
statutory rules, definitions and clause-formatted guidelines.
Otherwise choose other.

B. LAYOUT TYPE (pick the one that dominates most pages)
text_pdf, table_pdf, flowchart_pdf, gantt_chart_pdf, image_pdf, mixed_pdf

C. STRUCTURAL FLAGS (true/false)
contains_text, contains_images, contains_flowchart, contains_tables,
contains_gantt, contains_other_charts, requires_ocr (scanned, faint or mostly image-based)

D. OUTPUT
Return only this JSON object, without markdown or comments:
{
  "pdf_type": "<category>",
  "layout_type": "<layout>",
  "flags": {
    "contains_text": true,
    "contains_images": false,
    "contains_flowchart": false,
    "contains_tables": false,
    "contains_gantt": false,
    "contains_other_charts": false,
    "requires_ocr": false
  },
  "reason": "<short explanation of the category and layout>"
}

CONTENT TO ANALYZE:
{{CONTENT}}
`

const costingPagePrompt = `You are a construction cost extraction engine.
You receive ONE page (text and tables) of a civil engineering costing document.

Extract every cost line where all of these appear on this page:
quantity, unit of measure, unit price and total cost in the same currency.
Mark each line as local or foreign cost when the page says so.

Return only valid JSON with this schema:
[
  {
    "page_number": <int>,
    "page_text_snippet": "<short snippet from the source>",
    "items": [
      {
        "item_name": "<string>",
        "quantity": <number>,
        "unit_of_measure": "<string>",
        "currency": "<string>",
        "unit_price": <number>,
        "total_cost": <number>,
        "cost_type": "local cost" | "foreign cost" | "unspecified"
      }
    ]
  }
]
If the page has no valid cost line return [].

PAGE NUMBER: {{PAGE_NUMBER}}

PAGE TEXT:
{{PAGE_TEXT}}

PAGE TABLES:
{{PAGE_TABLES}}
`

const schedulePrompt = `You are a senior project scheduler.
You receive one page of a construction schedule (gantt text, milestones,
timelines or irregular formatting). Identify every task or activity.

Return only a JSON array:
[
  {
    "task_name": "string",
    "duration_days": 0,
    "start_date": "YYYY-MM-DD or null",
    "finish_date": "YYYY-MM-DD or null"
  }
]

Rules:
- Merge multi-line task names into one clean string.
- Convert clearly stated durations ("10 days", "3 months") to whole days, otherwise null.
- Use ISO dates; a missing or ambiguous date is null. Never invent dates.
- Ignore decorative timelines and non-task text.`

const approvalPrompt = `You interpret construction approval workflows: flowcharts,
multi-column layouts, stepped diagrams and OCR-converted process text.

Identify each approval step in its original order, merge wrapped lines into
one description, and drop OCR noise, arrows and page numbers.

Return only a JSON array:
[
  {"step_number": 1, "description": "Clean step description"}
]`

const regulatoryPrompt = `You are a regulatory compliance analyst for building
regulations (URA circulars, GFA definitions, building codes).

Extract each distinct rule on the page. Return only a JSON array:
[
  {
    "rule_summary": "string",
    "measurement_basis": "string or null"
  }
]

rule_summary is a short, precise statement of the rule. measurement_basis is
set only when the rule explains how something is measured (area computation,
what is included or excluded, thresholds, qualifying conditions); otherwise null.
Ignore headers, footers and page numbers.`

