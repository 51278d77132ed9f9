package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    FlexDecimal
		wantErr bool
	}{
		{in: `"49.99"`, want: FlexDecimal{Value: "49.99", Valid: true}},
		{in: `" 79.99 "`, want: FlexDecimal{Value: "79.99", Valid: true}},
		{in: `49.99`, want: FlexDecimal{Value: "49.99", Valid: true}},
		{in: `50`, want: FlexDecimal{Value: "50", Valid: true}},
		{in: `null`, want: FlexDecimal{}},
		{in: `""`, want: FlexDecimal{}},
		{in: `"$49.99"`, wantErr: true},
		{in: `"cheap"`, wantErr: true},
		{in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got FlexDecimal
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlexFloatAndInt(t *testing.T) {
	var fields WPAffiliateFields
	require.NoError(t, json.Unmarshal([]byte(`{"rating":"4.5","reviewCount":120}`), &fields))
	assert.Equal(t, FlexFloat{Value: 4.5, Valid: true}, fields.Rating)
	assert.Equal(t, FlexInt{Value: 120, Valid: true}, fields.ReviewCount)

	require.NoError(t, json.Unmarshal([]byte(`{"rating":null,"reviewCount":""}`), &fields))
	assert.False(t, fields.Rating.Valid)
	assert.False(t, fields.ReviewCount.Valid)

	var n FlexInt
	assert.Error(t, json.Unmarshal([]byte(`12.5`), &n))
	assert.Error(t, json.Unmarshal([]byte(`"many"`), &n))

	var f FlexFloat
	assert.Error(t, json.Unmarshal([]byte(`"high"`), &f))
}

func TestRepeaterList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "null", in: `null`, want: []string{}},
		{name: "strings", in: `["Fast", "", "Quiet"]`, want: []string{"Fast", "Quiet"}},
		{name: "acf rows", in: `[{"feature":"Fast"},{"feature":" Quiet "},{"feature":null}]`, want: []string{"Fast", "Quiet"}},
		{name: "pro rows", in: `[{"pro":"Cheap"}]`, want: []string{"Cheap"}},
		{name: "textarea", in: `"Fast\n\nQuiet\n"`, want: []string{"Fast", "Quiet"}},
		{name: "empty array", in: `[]`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got RepeaterList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, []string(got))
		})
	}

	var bad RepeaterList
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestConnectionDecoding(t *testing.T) {
	var data SlugsData
	require.NoError(t, json.Unmarshal([]byte(`{"products":{"nodes":[{"slug":"a"}],"pageInfo":{"hasNextPage":true,"endCursor":"YXJyYXk6MA=="}}}`), &data))

	require.NotNil(t, data.Products)
	assert.Equal(t, "a", data.Products.Nodes[0].Slug)
	assert.True(t, data.Products.PageInfo.HasNextPage)
	assert.Equal(t, "YXJyYXk6MA==", data.Products.PageInfo.EndCursor)
}
