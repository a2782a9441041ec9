package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/grocer/ai"
)

const enrichResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "category": {"type": "string"},
    "storage_advice": {"type": ["string", "null"]},
    "shelf_life_days_min": {"type": ["integer", "null"], "minimum": 0},
    "shelf_life_days_max": {"type": ["integer", "null"], "minimum": 0}
  },
  "required": ["category", "storage_advice", "shelf_life_days_min", "shelf_life_days_max"],
  "additionalProperties": false
}`

const enrichPromptTemplate = `You are a grocery expert. Given the name of one grocery item, return the store aisle
it belongs in, short storage advice, and how many days it keeps once bought.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- category must be exactly one of: %s.
- storage_advice is one sentence a shopper can act on. Use null if storage does not matter.
- shelf_life_days_min and shelf_life_days_max are whole days under the advised storage. Use null when unknown.
- shelf_life_days_min must not exceed shelf_life_days_max.
- Non-food items get null storage_advice and null shelf life.

Example:
Input: "greek yogurt"
Output:
{"category":"dairy","storage_advice":"Refrigerate and keep sealed.","shelf_life_days_min":7,"shelf_life_days_max":14}

Example:
Input: "paper towels"
Output:
{"category":"household","storage_advice":null,"shelf_life_days_min":null,"shelf_life_days_max":null}`

const parseResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "quantity": {"type": ["string", "null"]}
        },
        "required": ["name", "quantity"],
        "additionalProperties": false
      }
    }
  },
  "required": ["items"],
  "additionalProperties": false
}`

const parsePromptTemplate = `Split the given shopping text into individual grocery items and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- name is the item only, lowercase, without amounts or filler words.
- quantity is the amount exactly as written, including its unit. Use null when none was given.
- Keep the order the items appear in the text.
- If no items can be identified, return "items": [].

Example:
Input: "grab me a couple pounds of ground beef plus 3 cans of diced tomatoes"
Output:
{"items":[{"name":"ground beef","quantity":"a couple pounds"},{"name":"diced tomatoes","quantity":"3 cans"}]}

Example (voice transcript):
Input: "uh we need milk um and like two dozen eggs"
Output:
{"items":[{"name":"milk","quantity":null},{"name":"eggs","quantity":"two dozen"}]}`

// buildEnrichPrompt creates the enrichment system prompt with the category list embedded.
func buildEnrichPrompt() string {
	return fmt.Sprintf(enrichPromptTemplate,
		enrichResponseSchema,
		strings.Join(ai.CategoryNames(), ", "))
}

// buildParsePrompt creates the free-form parsing system prompt.
func buildParsePrompt() string {
	return fmt.Sprintf(parsePromptTemplate, parseResponseSchema)
}
