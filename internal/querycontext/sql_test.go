package querycontext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/errors"
)

func TestParseSQL(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{
			name:     "empty",
			sql:      "  \n\t",
			expected: []string{},
		},
		{
			name:     "alias and qualifier",
			sql:      "SELECT Id, Name, Account.Name AS AccountName FROM Opportunity WHERE StageName = 'Closed Won';",
			expected: []string{"Id", "Name", "AccountName"},
		},
		{
			name:     "qualified column without alias",
			sql:      "SELECT o.Amount, a.Industry FROM Opportunity o JOIN Account a ON a.Id = o.AccountId",
			expected: []string{"o.Amount", "a.Industry"},
		},
		{
			name:     "qualified and plain names stay distinct",
			sql:      "SELECT Id, Name, Account.Name FROM Opportunity",
			expected: []string{"Id", "Name", "Account.Name"},
		},
		{
			name:     "star and unnamed expressions are skipped",
			sql:      "SELECT *, COUNT(Id), SUM(Amount) AS TotalAmount FROM Opportunity",
			expected: []string{"TotalAmount"},
		},
		{
			name: "multiple statements deduplicated in order",
			sql: `SELECT Id, Name FROM Account;
SELECT Name, Phone FROM Contact;`,
			expected: []string{"Id", "Name", "Phone"},
		},
		{
			name:     "union",
			sql:      "SELECT Email FROM Contact UNION SELECT Phone FROM Lead",
			expected: []string{"Email", "Phone"},
		},
		{
			name: "non-select statements ignored",
			sql: `UPDATE Account SET Name = 'x' WHERE Id = 1;
SELECT Industry FROM Account`,
			expected: []string{"Industry"},
		},
		{
			name:     "trailing comment",
			sql:      "SELECT Id FROM Account; -- done",
			expected: []string{"Id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := ParseSQL([]byte(tt.sql))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ctx.SelectedFields)
		})
	}
}

func TestParseSQL_LenientSelectList(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{
			name:     "deep relationship path",
			sql:      "SELECT Id, Owner.Manager.Account.Name FROM Opportunity",
			expected: []string{"Id", "Owner.Manager.Account.Name"},
		},
		{
			name:     "placeholder in where clause",
			sql:      "SELECT Id, Name AS OpportunityName FROM Opportunity WHERE Id = {pv0}",
			expected: []string{"Id", "OpportunityName"},
		},
		{
			name:     "soql date literal",
			sql:      "SELECT Amount, CloseDate FROM Opportunity WHERE CloseDate = LAST_N_DAYS:30",
			expected: []string{"Amount", "CloseDate"},
		},
		{
			name: "subquery, expressions and implicit alias",
			sql: `SELECT DISTINCT Account.Name, COUNT(Id), Amount total,
	(SELECT Name FROM Contacts) AS ContactNames, * FROM Opportunity WHERE Id = {pv0}`,
			expected: []string{"Account.Name", "total", "ContactNames"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := ParseSQL([]byte(tt.sql))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ctx.SelectedFields)

			warnings := ctx.Diagnostics.ByCode(diagnostic.CodeLenientSQL)
			require.Len(t, warnings, 1)
			assert.Equal(t, diagnostic.DiagnosticWarning, warnings[0].Severity)
		})
	}
}

func TestParseSQL_LenientKeepsParsedStatements(t *testing.T) {
	ctx, err := ParseSQL([]byte(`SELECT Id, Name FROM Account;
SELECT Name, Owner.Manager.Email FROM Opportunity WHERE OwnerId = {pv1}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Id", "Name", "Owner.Manager.Email"}, ctx.SelectedFields)
	assert.Len(t, ctx.Diagnostics.Warnings, 1)
}

func TestParseSQL_Malformed(t *testing.T) {
	_, err := ParseSQL([]byte("SELEC Id FROM Account"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestLoadSQL(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "query.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT Id AS OpportunityId FROM Opportunity"), 0o644))

	ctx, err := LoadSQL(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"OpportunityId"}, ctx.SelectedFields)

	_, err = LoadSQL(filepath.Join(dir, "missing.sql"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
