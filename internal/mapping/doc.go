// Package mapping provides the schema mapping definition, its JSON/YAML
// loaders, validation and the Box field path parser.
//
// A schema mapping pins Conga tags to Box DocGen fields. It is the
// authoritative, human-reviewed part of a conversion; the query context and
// fuzzy matching only fill in what it leaves open.
//
// # Schema Overview
//
//	{
//	  "direct_mappings": {
//	    "{{Opportunity_Name}}": "opportunity.name",
//	    "{{Today}}": "{{current_date}}"
//	  },
//	  "type_rules": {
//	    "currency": "format_currency",
//	    "date": "format_date"
//	  },
//	  "nested_paths": {
//	    "line_items": {
//	      "source_path": "TableStart:LineItems",
//	      "fields": {
//	        "{{Product_Name}}": "items[].name",
//	        "{{Quantity}}": "items[].quantity"
//	      }
//	    }
//	  }
//	}
//
// The same structure is accepted as YAML when the file ends in .yaml or .yml.
//
// # Keys
//
// Keys of direct_mappings and of nested fields are full Conga tags. A bare
// key such as "Account_Name" is normalized to "{{Account_Name}}" on load, and
// whitespace inside the braces is trimmed.
//
// # Path Syntax
//
// Box targets support:
//   - Simple fields: "current_date"
//   - Nested fields: "opportunity.owner.name"
//   - Array elements: "items[]"
//   - Array element fields: "items[].name"
//
// A target may also be given already wrapped in braces ("{{current_date}}").
package mapping
