// Package querycontext reads the query context that accompanies a Conga
// template: either a CSV table relating Conga fields to Box fields, or the
// SQL query whose SELECT list names the fields available to the template.
//
// # CSV layout
//
//	CongaField,RelatedBoxField,DataType,SourceTable
//	{{Opportunity_Name}},opportunity.name,string,Opportunity
//	{{Amount}},opportunity.amount,currency,Opportunity
//
// CongaField is required on every row; empty cells in the other columns are
// treated as absent. Column order does not matter and unknown columns are
// ignored.
//
// # SQL
//
// Every SELECT statement in the file contributes its select-list names: the
// alias when present, otherwise the column name without its qualifier.
// Names are de-duplicated in first-seen order.
package querycontext
