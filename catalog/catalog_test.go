package catalog_test

import (
	"errors"
	"testing"

	"aethelred/catalog"
	"github.com/stretchr/testify/require"
)

func TestDefault_BuiltinTemplates(t *testing.T) {
	c := catalog.Default()
	list := c.List()
	require.Len(t, list, 3)
	require.Equal(t, "nda", list[0].ID)
	require.Equal(t, "consulting", list[1].ID)
	require.Equal(t, "cease-and-desist", list[2].ID)

	nda, err := c.Get("nda")
	require.NoError(t, err)
	require.Equal(t, "Non-Disclosure Agreement", nda.Name)

	keys := make([]string, 0, len(nda.Fields))
	for _, f := range nda.Fields {
		keys = append(keys, f.Key)
	}
	require.Equal(t, []string{"disclosingParty", "receivingParty", "effectiveDate", "purpose"}, keys)

	purpose, ok := nda.Field("purpose")
	require.True(t, ok)
	require.Equal(t, catalog.KindMultiLine, purpose.Kind)
}

func TestGet_Unknown(t *testing.T) {
	_, err := catalog.Default().Get("lease")
	require.ErrorIs(t, err, catalog.ErrTemplateNotFound)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: "templates: []"},
		{name: "missing id", yaml: "templates:\n  - name: X\n    inputs:\n      a: {label: A}\n"},
		{name: "no inputs", yaml: "templates:\n  - id: x\n    name: X\n"},
		{name: "bad kind", yaml: "templates:\n  - id: x\n    inputs:\n      a: {label: A, kind: dropdown}\n"},
		{name: "duplicate id", yaml: "templates:\n  - id: x\n    inputs:\n      a: {label: A}\n  - id: x\n    inputs:\n      b: {label: B}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	c, err := catalog.Parse([]byte("templates:\n  - id: memo\n    name: Memo\n    inputs:\n      to: {}\n      body: {label: Body, kind: multi-line}\n"))
	require.NoError(t, err)
	memo, err := c.Get("memo")
	require.NoError(t, err)
	require.Equal(t, "Memo", memo.DisplayName)
	require.Equal(t, catalog.Field{Key: "to", Label: "to", Kind: catalog.KindSingleLine}, memo.Fields[0])
	require.Equal(t, catalog.KindMultiLine, memo.Fields[1].Kind)
}

func TestValidate(t *testing.T) {
	nda, err := catalog.Default().Get("nda")
	require.NoError(t, err)

	full := map[string]string{
		"disclosingParty": "Acme",
		"receivingParty":  "Globex",
		"effectiveDate":   "June 1, 2024",
		"purpose":         "Evaluate a merger.",
		"notes":           "ignored",
	}
	require.NoError(t, nda.Validate(full))

	err = nda.Validate(map[string]string{
		"disclosingParty": "Acme",
		"receivingParty":  "   ",
	})
	require.ErrorIs(t, err, catalog.ErrInvalidInputs)

	var ve *catalog.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "nda", ve.TemplateID)
	require.Len(t, ve.Fields, 3)
	require.Equal(t, "Receiving Party Name is required", ve.Fields["receivingParty"])
	require.Equal(t, "Effective Date is required", ve.Fields["effectiveDate"])
	require.Contains(t, ve.Fields, "purpose")
	require.NotContains(t, ve.Fields, "disclosingParty")
}

func TestLabeled_FieldOrder(t *testing.T) {
	nda, err := catalog.Default().Get("nda")
	require.NoError(t, err)

	got := nda.Labeled(map[string]string{
		"purpose":         " Evaluate ",
		"disclosingParty": "Acme",
		"extra":           "dropped",
	})
	require.Equal(t, []catalog.LabeledInput{
		{Label: "Disclosing Party Name", Value: "Acme"},
		{Label: "Purpose of Disclosure", Value: "Evaluate"},
	}, got)
}
