package convert

//go:generate go tool stringer -type=Method -linecomment -output=method_string.go

// Method records how a template tag was converted.
type Method int

const (
	MethodUnmapped         Method = iota // Unmapped
	MethodManualOverride                 // Manual Override
	MethodNestedPath                     // Nested Path (Schema)
	MethodDirect                         // Direct Mapping (Schema)
	MethodCSV                            // Query Context (CSV)
	MethodSQL                            // Query Context (SQL)
	MethodFuzzy                          // Fuzzy Match
	MethodAmbiguous                      // Ambiguous (Review Required)
	MethodTableStart                     // TableStart to Box Table Section Start
	MethodIfStart                        // IF to Box Conditional Block Start
	MethodTableEnd                       // TableEnd to Box Block End
	MethodEndIf                          // ENDIF to Box Block End
	MethodElse                           // ELSE to Box Inverted Section
	MethodControlUnhandled               // Control Tag (Unhandled)
	MethodUnknownElement                 // Unknown Element Type
)

// MarshalText renders the method by its report name.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Resolved reports whether a merge field converted with m got a Box field.
func (m Method) Resolved() bool {
	switch m {
	case MethodManualOverride, MethodNestedPath, MethodDirect, MethodCSV, MethodSQL, MethodFuzzy:
		return true
	default:
		return false
	}
}
