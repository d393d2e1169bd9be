// Package template reads Conga templates and writes converted ones back.
//
// A Conga template is a .docx whose text carries double-brace tags:
//
//	{{OpportunityName}}            merge field
//	{{TableStart:LineItems}}       control tag (type:parameter)
//	{{TableEnd:LineItems}}
//	{{IF:ShowDetails}} ... {{ENDIF}}
//
// Word frequently splits a single tag across several runs, so tags are
// scanned on the concatenated text of each paragraph, never per run.
//
// # Element stream
//
// Reading a document yields a flat element stream in document order:
// tags and non-blank text segments of each paragraph, a "\n" after every
// body paragraph, a "\t" after every table cell and a "\n" after every
// table row. The converter consumes that stream.
//
// # Rewriting
//
// Document.Write copies the original archive and replaces the text of
// paragraphs that held tags. The converted paragraph text goes into the
// first w:t of the paragraph and the remaining w:t elements are emptied,
// which keeps the formatting of the first run.
package template
