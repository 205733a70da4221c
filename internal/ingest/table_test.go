package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/hospital-sync/internal/domain"
)

func TestReadTable(t *testing.T) {
	t.Parallel()

	content := "Facility ID,Facility Name,State\n010001,\"SOUTHEAST HEALTH, INC\",AL\n010005,MARSHALL MEDICAL,AL\n"

	table, err := ReadTable(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"Facility ID", "Facility Name", "State"}, table.Columns)
	assert.Equal(t, [][]string{
		{"010001", "SOUTHEAST HEALTH, INC", "AL"},
		{"010005", "MARSHALL MEDICAL", "AL"},
	}, table.Rows)
}

func TestReadTable_Lenient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    [][]string
	}{
		{
			name:    "short row padded",
			content: "a,b,c\n1\n2,3\n",
			want:    [][]string{{"1", "", ""}, {"2", "3", ""}},
		},
		{
			name:    "bare quote in unquoted field",
			content: "a,b\n1,x\"y\n",
			want:    [][]string{{"1", "x\"y"}},
		},
		{
			name:    "stray quote inside quoted field",
			content: "a,b\n1,\"x\"y\"\n",
			want:    [][]string{{"1", "x\"y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, err := ReadTable(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Rows)
		})
	}
}

func TestReadTable_StripsBOM(t *testing.T) {
	t.Parallel()

	table, err := ReadTable(strings.NewReader("\uFEFFName,Score\nA,1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Score"}, table.Columns)
}

func TestReadTable_HeaderOnly(t *testing.T) {
	t.Parallel()

	table, err := ReadTable(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestReadTable_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		is      error
	}{
		{name: "empty", content: "", is: ErrEmptyTable},
		{name: "row wider than header", content: "a,b\n1,2,3\n", is: ErrTooManyFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ReadTable(strings.NewReader(tt.content))
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is))
			}
		})
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteTable(&buf, &domain.Table{
		Columns: []string{"facility_name", "score"},
		Rows:    [][]string{{"ST. MARY'S, INC", "4"}, {"GENERAL", ""}},
	})
	require.NoError(t, err)
	assert.Equal(t, "facility_name,score\n\"ST. MARY'S, INC\",4\nGENERAL,\n", buf.String())
}
